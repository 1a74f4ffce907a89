package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Report missing credentials and the effective search settings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		out := cmd.OutOrStdout()

		missing := cfg.MissingCredentials()
		if len(missing) == 0 {
			fmt.Fprintln(out, "All API keys are configured.")
		} else {
			fmt.Fprintln(out, "Missing API keys:")
			for _, key := range missing {
				fmt.Fprintf(out, "   - %s\n", key)
			}
			fmt.Fprintln(out, "The app will run with limited functionality.")
		}

		fmt.Fprintf(out, "\nOracle provider: %s\n", cfg.OracleProvider)
		fmt.Fprintf(out, "DuckDuckGo enabled: %t\n", cfg.DuckDuckGoEnabled)
		fmt.Fprintf(out, "Max requests per minute: %d\n", cfg.MaxRequestsPerMinute)
		fmt.Fprintf(out, "Discovery attempts: %d\n", cfg.MaxAttempts)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of vendorfinder",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vendorfinder %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(configCmd, versionCmd)
}
