package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List generated library entries",
	RunE:  runRecordsCmd,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Drop records whose save directory no longer exists",
	RunE:  runSweepCmd,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(sweepCmd)
}

func runRecordsCmd(cmd *cobra.Command, args []string) error {
	res, err := NewClient(serverURL).Records()
	if err != nil {
		return fmt.Errorf("records failed: %w", err)
	}

	if jsonOutput {
		printJSON(res)
		return nil
	}

	if len(res.List) == 0 {
		fmt.Println("No records")
		return nil
	}
	fmt.Printf("  %-30s │ %-6s │ %-10s │ %s\n", "NAME", "TYPE", "LINK", "UPDATED")
	for _, rec := range res.List {
		name := rec.Name
		if len([]rune(name)) > 30 {
			name = string([]rune(name)[:30])
		}
		fmt.Printf("  %-30s │ %-6s │ %-10s │ %s\n", name, rec.Type, rec.LinkKind, rec.UpdatedAt)
	}
	return nil
}

func runSweepCmd(cmd *cobra.Command, args []string) error {
	res, err := NewClient(serverURL).Sweep()
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	if jsonOutput {
		printJSON(res)
		return nil
	}
	fmt.Printf("Removed %d stale record(s)\n", res.Deleted)
	return nil
}
