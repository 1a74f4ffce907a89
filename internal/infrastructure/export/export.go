package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", domain.WrapError(domain.ErrInvalidInput, "export",
			fmt.Errorf("unsupported export extension %q (want .json, .yaml, .yml or .xlsx)", filepath.Ext(path)))
	}
}

// VendorRow is the flattened vendor shape shared by the YAML and XLSX exports.
type VendorRow struct {
	Name       string   `json:"name" yaml:"name"`
	URL        string   `json:"url" yaml:"url"`
	Source     string   `json:"source" yaml:"source"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
	WhatsApp   []string `json:"whatsapp" yaml:"whatsapp"`
	Instagram  []string `json:"instagram" yaml:"instagram"`
	Location   string   `json:"location" yaml:"location"`
	Address    string   `json:"address,omitempty" yaml:"address,omitempty"`
	Rating     *float64 `json:"rating,omitempty" yaml:"rating,omitempty"`
}

type document struct {
	Query        domain.QueryEcho `yaml:"query"`
	TotalVendors int              `yaml:"total_vendors"`
	Vendors      []VendorRow      `yaml:"vendors"`
	Analysis     domain.Analysis  `yaml:"analysis"`
	Reasoning    []string         `yaml:"agent_reasoning"`
	Attempts     int              `yaml:"attempts"`
	StopReason   string           `yaml:"stop_reason"`
}

func Rows(result *domain.AgentResult) []VendorRow {
	rows := make([]VendorRow, 0, len(result.Vendors))
	for _, v := range result.Vendors {
		row := VendorRow{
			Name:       v.Identity.Name,
			URL:        v.Identity.URL,
			Source:     v.Identity.SourceProvider,
			Confidence: v.ConfidenceScore,
			WhatsApp:   nonNil(v.Contacts.WhatsAppNumbers),
			Instagram:  nonNil(v.Social.InstagramLinks),
			Location:   v.Location.ResolvedText,
		}
		if row.Location == "" {
			row.Location = v.Location.RawText
		}
		if v.Location.Enrichment != nil {
			row.Address = v.Location.Enrichment.Address
			row.Rating = v.Location.Enrichment.Rating
		}
		rows = append(rows, row)
	}
	return rows
}

func Write(w io.Writer, format Format, result *domain.AgentResult) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode json export: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		doc := document{
			Query:        result.Query,
			TotalVendors: result.TotalVendors,
			Vendors:      Rows(result),
			Analysis:     result.Analysis,
			Reasoning:    nonNil(result.Reasoning),
			Attempts:     result.Attempts,
			StopReason:   result.StopReason,
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml export: %w", err)
		}
		return enc.Close()
	case FormatXLSX:
		return writeXLSX(w, Rows(result))
	default:
		return domain.WrapError(domain.ErrInvalidInput, "export", fmt.Errorf("unknown format %q", format))
	}
}

// WriteFile creates path (truncating it) in the format implied by its extension.
func WriteFile(path string, result *domain.AgentResult) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := Write(file, format, result); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
