package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <keyword>...",
	Short: "Search every configured source",
	Long: `Search every configured source concurrently.

Examples:
  strmarr search 长津湖
  strmarr search --json "The Matrix"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	keyword := strings.Join(args, " ")

	client := NewClient(serverURL)
	results, err := client.Search(keyword)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if jsonOutput {
		printJSON(results)
		return nil
	}

	if len(results.List) == 0 {
		fmt.Println("No results found")
		return nil
	}

	fmt.Printf("Found %d result(s) for %q:\n\n", len(results.List), keyword)
	fmt.Printf("  %3s │ %-30s │ %-12s │ %4s │ %s\n", "SRC", "NAME", "TYPE", "YEAR", "ID")
	for _, item := range results.List {
		name := item.Name
		if len([]rune(name)) > 30 {
			name = string([]rune(name)[:30])
		}
		fmt.Printf("  %3d │ %-30s │ %-12s │ %4s │ %s\n",
			item.SourceIndex, name, item.TypeName, item.Year, item.ID)
	}
	return nil
}
