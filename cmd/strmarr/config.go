package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/strmarr/strmarr/internal/library"
)

var (
	cfgSources      []string
	cfgPlayerScheme string
	cfgTMDBKey      string
	cfgAntiThrottle string
	cfgImgProxy     string
	cfgDedupKey     string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update server settings",
	Long: `Without flags, prints the current server settings.
Any flag that is set updates that setting and leaves the rest unchanged.`,
	RunE: runConfigCmd,
}

func init() {
	configCmd.Flags().StringSliceVar(&cfgSources, "sources", nil, "replace the aggregator source list")
	configCmd.Flags().StringVar(&cfgPlayerScheme, "player-scheme", "", "player URL scheme template")
	configCmd.Flags().StringVar(&cfgTMDBKey, "tmdb-key", "", "TMDB API key")
	configCmd.Flags().StringVar(&cfgAntiThrottle, "anti-throttle", "", "enable request jitter (true/false)")
	configCmd.Flags().StringVar(&cfgImgProxy, "img-proxy", "", "proxy poster images through the server (true/false)")
	configCmd.Flags().StringVar(&cfgDedupKey, "dedup-key", "", "record dedup policy (name or name_year)")
	rootCmd.AddCommand(configCmd)
}

func runConfigCmd(cmd *cobra.Command, args []string) error {
	client := NewClient(serverURL)
	st, err := client.Settings()
	if err != nil {
		return fmt.Errorf("config fetch failed: %w", err)
	}

	changed := false
	if cmd.Flags().Changed("sources") {
		st.Sources = cfgSources
		changed = true
	}
	if cmd.Flags().Changed("player-scheme") {
		st.PlayerScheme = cfgPlayerScheme
		changed = true
	}
	if cmd.Flags().Changed("tmdb-key") {
		st.TMDBAPIKey = cfgTMDBKey
		changed = true
	}
	if cmd.Flags().Changed("anti-throttle") {
		st.AntiThrottle = parseBoolFlag(cfgAntiThrottle)
		changed = true
	}
	if cmd.Flags().Changed("img-proxy") {
		st.UseImageProxy = parseBoolFlag(cfgImgProxy)
		changed = true
	}
	if cmd.Flags().Changed("dedup-key") {
		if cfgDedupKey != "name" && cfgDedupKey != "name_year" {
			return fmt.Errorf("invalid dedup-key %q: must be name or name_year", cfgDedupKey)
		}
		st.DedupKey = library.DedupPolicy(cfgDedupKey)
		changed = true
	}

	if changed {
		if err := client.SaveSettings(st); err != nil {
			return fmt.Errorf("config save failed: %w", err)
		}
	}

	if jsonOutput {
		printJSON(st)
		return nil
	}
	fmt.Printf("sources:        %s\n", strings.Join(st.Sources, ", "))
	fmt.Printf("player scheme:  %s\n", st.PlayerScheme)
	fmt.Printf("tmdb key:       %s\n", maskKey(st.TMDBAPIKey))
	fmt.Printf("anti-throttle:  %v\n", st.AntiThrottle)
	fmt.Printf("image proxy:    %v\n", st.UseImageProxy)
	fmt.Printf("dedup key:      %s\n", st.DedupKey)
	return nil
}

func parseBoolFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func maskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 6 {
		return "******"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
