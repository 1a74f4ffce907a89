package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	mcpadapter "github.com/kirillkom/vendor-finder/internal/adapters/mcp"
	"github.com/kirillkom/vendor-finder/internal/bootstrap"
	"github.com/kirillkom/vendor-finder/internal/observability/logging"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the find_vendors tool over MCP stdio",
	Long: `mcp runs a Model Context Protocol server on stdin/stdout exposing the
find_vendors tool. Logs are written to stderr so stdout carries only protocol
messages.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig()
		logger := logging.NewJSONLoggerTo(os.Stderr, "vendorfinder-mcp", cfg.LogLevel)
		slog.SetDefault(logger)

		app, err := bootstrap.New(cmd.Context(), cfg, bootstrap.Options{Role: bootstrap.RoleCLI})
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		defer app.Close()

		server := mcpadapter.NewServer(app.Discovery, version)
		return server.ServeStdio(cmd.Context(), os.Stdin, os.Stdout, logger)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
