package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kirillkom/vendor-finder/internal/bootstrap"
	"github.com/kirillkom/vendor-finder/internal/core/domain"
	"github.com/kirillkom/vendor-finder/internal/infrastructure/export"
	"github.com/kirillkom/vendor-finder/internal/observability/logging"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search for vendors offering a service in a location",
	Long: `Search runs up to two discovery attempts for the service and location,
prints the qualified vendors and optionally exports them. The export format
follows the file extension: .json, .yaml/.yml or .xlsx.`,
	Example: `  vendorfinder search --service cake --location Lagos
  vendorfinder search --service plumber --location Abuja --platform twitter --export plumbers.xlsx`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("service", "", "service or product, e.g. \"cake baker\"")
	searchCmd.Flags().String("location", "", "city or area, e.g. \"Lekki, Lagos\"")
	searchCmd.Flags().String("platform", "", "preferred social platform (instagram, twitter)")
	searchCmd.Flags().Int("max-results", domain.DefaultMaxResults, "maximum vendors to return (1-20)")
	searchCmd.Flags().Float64("min-confidence", domain.DefaultMinConfidence, "minimum confidence score (0.1-1.5)")
	searchCmd.Flags().Bool("json", false, "print the full result as JSON")
	searchCmd.Flags().String("export", "", "write vendors to a .json, .yaml or .xlsx file")
	_ = searchCmd.MarkFlagRequired("service")
	_ = searchCmd.MarkFlagRequired("location")

	_ = viper.BindPFlag("platform", searchCmd.Flags().Lookup("platform"))
	_ = viper.BindPFlag("max_results", searchCmd.Flags().Lookup("max-results"))
	_ = viper.BindPFlag("min_confidence", searchCmd.Flags().Lookup("min-confidence"))

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	slog.SetDefault(logging.NewJSONLoggerTo(cmd.ErrOrStderr(), "vendorfinder", cfg.LogLevel))

	service, _ := cmd.Flags().GetString("service")
	location, _ := cmd.Flags().GetString("location")
	asJSON, _ := cmd.Flags().GetBool("json")
	exportPath, _ := cmd.Flags().GetString("export")
	if exportPath != "" {
		if _, err := export.FormatFromPath(exportPath); err != nil {
			return err
		}
	}

	app, err := bootstrap.New(cmd.Context(), cfg, bootstrap.Options{Role: bootstrap.RoleCLI})
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer app.Close()

	result, err := app.Discovery.FindVendors(cmd.Context(), searchRequest(viper.GetViper(), service, location))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	} else if err := writeReport(out, result); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if exportPath != "" {
		if err := export.WriteFile(exportPath, result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Results saved to %s\n", exportPath)
	}
	return nil
}

// searchRequest always carries both limits; flag defaults stand in for unset values.
func searchRequest(v *viper.Viper, service, location string) domain.DiscoveryRequest {
	return domain.DiscoveryRequest{
		Service:       service,
		Location:      location,
		Platform:      v.GetString("platform"),
		MaxResults:    domain.Ptr(v.GetInt("max_results")),
		MinConfidence: domain.Ptr(v.GetFloat64("min_confidence")),
	}
}
