// Package main is the vendorfinder CLI: one-off searches, exports and an MCP stdio server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kirillkom/vendor-finder/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "vendorfinder",
	Short: "Find local vendors with WhatsApp and Instagram contacts",
	Long: `vendorfinder searches the web for small businesses offering a service in a
location, extracts their contact details and ranks them by confidence.

Credentials come from the environment or a .env file (GOOGLE_API_KEY,
GOOGLE_SEARCH_ENGINE_ID, BING_API_KEY, GOOGLE_MAPS_API_KEY, OPENAI_API_KEY).
Search defaults can be set in vendorfinder.yaml or VENDORFINDER_* variables.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./vendorfinder.yaml or ~/.config/vendorfinder/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level written to stderr (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("oracle", "", "advisory model provider (openai, ollama, none)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("oracle_provider", rootCmd.PersistentFlags().Lookup("oracle"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("vendorfinder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "vendorfinder"))
		}
	}

	viper.SetEnvPrefix("VENDORFINDER")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig layers CLI flags, VENDORFINDER_* variables and the config file over config.Load().
func loadConfig() config.Config {
	cfg := config.Load()
	if v := strings.TrimSpace(viper.GetString("log_level")); v != "" {
		cfg.LogLevel = v
	} else if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
	if v := strings.TrimSpace(viper.GetString("oracle_provider")); v != "" {
		cfg.OracleProvider = strings.ToLower(v)
	}
	cfg.DiscoveryDispatch = config.DispatchInline
	return cfg
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
