package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kirillkom/vendor-finder/internal/core/domain"
)

const notFound = "Not found"

// writeReport renders a discovery result for a terminal.
func writeReport(w io.Writer, result *domain.AgentResult) error {
	bw := bufio.NewWriter(w)

	if len(result.Vendors) == 0 {
		fmt.Fprintln(bw, "\nNo qualified vendors found.")
	} else {
		rule := strings.Repeat("=", 90)
		fmt.Fprintln(bw, rule)
		fmt.Fprintf(bw, "FOUND %d QUALIFIED VENDORS\n", len(result.Vendors))
		fmt.Fprintln(bw, rule)
		for i, vendor := range result.Vendors {
			writeVendor(bw, i+1, vendor)
		}
	}

	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "Result quality: %s\n", result.Analysis.ResultQuality)
	if result.Analysis.Explanation != "" {
		fmt.Fprintf(bw, "Analysis: %s\n", result.Analysis.Explanation)
	}
	if result.Analysis.ClarifyingQuestion != "" {
		fmt.Fprintf(bw, "Question: %s\n", result.Analysis.ClarifyingQuestion)
	}
	fmt.Fprintf(bw, "Attempts: %d (%s)\n", result.Attempts, result.StopReason)
	for _, line := range result.Reasoning {
		fmt.Fprintf(bw, "  - %s\n", line)
	}
	return bw.Flush()
}

func writeVendor(w io.Writer, index int, vendor domain.VendorCandidate) {
	fmt.Fprintf(w, "\nVendor #%d\n", index)
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "Name: %s\n", orDefault(vendor.Identity.Name, "N/A"))
	fmt.Fprintf(w, "Source: %s\n", vendor.Identity.SourceProvider)
	fmt.Fprintf(w, "URL: %s\n", vendor.Identity.URL)
	fmt.Fprintf(w, "Confidence Score: %s\n", strconv.FormatFloat(vendor.ConfidenceScore, 'f', -1, 64))
	fmt.Fprintf(w, "WhatsApp: %s\n", joinOrNotFound(vendor.Contacts.WhatsAppNumbers))
	fmt.Fprintf(w, "Instagram: %s\n", joinOrNotFound(vendor.Social.InstagramLinks))

	if vendor.Location.ResolvedText != "" {
		fmt.Fprintf(w, "Location: %s\n", vendor.Location.ResolvedText)
	}
	if e := vendor.Location.Enrichment; e != nil {
		fmt.Fprintf(w, "Address: %s\n", e.Address)
		if e.Rating != nil {
			fmt.Fprintf(w, "Rating: %s\n", strconv.FormatFloat(*e.Rating, 'f', -1, 64))
		}
	}
}

func joinOrNotFound(values []string) string {
	if len(values) == 0 {
		return notFound
	}
	return strings.Join(values, ", ")
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
