// Package cli provides CLI output utilities for Kiji.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kiji/internal/models"
)

// OutputFormat is the format for search result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputCompact is one result per line.
	OutputCompact OutputFormat = "compact"
)

// ParseOutputFormat validates a format flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON, OutputCompact:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResponse writes a search response to w in the given format.
func WriteSearchResponse(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%d\t%.4f\t%.2f\t%s\n", r.ID, r.Score, r.CombinedScore, r.Title)
		}
		return nil
	default:
		writeSearchResponseText(w, response)
		return nil
	}
}

func writeSearchResponseText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms (mode: %s, query: %q)\n\n",
		response.Total, response.QueryTime, response.Mode, response.Query)
	for _, result := range response.Results {
		WriteResult(w, result)
	}
}

// WriteResult writes one search result in text format.
func WriteResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "ID: %d | Score: %.4f | Combined: %.2f\n", result.ID, result.Score, result.CombinedScore)
	fmt.Fprintf(w, "Title: %s\n", result.Title)
	if result.Subtitle != "" {
		fmt.Fprintf(w, "Subtitle: %s\n", result.Subtitle)
	}
	if len(result.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(result.Tags, ", "))
	}
	if result.PostDate != "" {
		fmt.Fprintf(w, "Posted: %s\n", result.PostDate)
	}
	if result.Snippet != "" {
		fmt.Fprintf(w, "\n%s\n", result.Snippet)
	}
	fmt.Fprintln(w)
}

// WriteResults writes a list of results (similar, trending) in the given format.
func WriteResults(w io.Writer, results []*models.SearchResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case OutputCompact:
		for _, r := range results {
			fmt.Fprintf(w, "%d\t%.4f\t%.2f\t%s\n", r.ID, r.Score, r.CombinedScore, r.Title)
		}
		return nil
	default:
		for _, r := range results {
			WriteResult(w, r)
		}
		return nil
	}
}

// WriteIngestReport writes a batch ingestion report in the given format.
func WriteIngestReport(w io.Writer, report *models.IngestReport, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(w, "run %s: %d articles in %dms\n", report.RunID, report.Total, report.ElapsedMillis)
	fmt.Fprintf(w, "  admitted:               %d\n", report.Admitted)
	fmt.Fprintf(w, "  skipped (duplicate id):  %d\n", report.DuplicateIDs)
	fmt.Fprintf(w, "  skipped (duplicate hash): %d\n", report.DuplicateHash)
	fmt.Fprintf(w, "  errors:                 %d\n", report.Errors)
	for _, o := range report.Outcomes {
		if o.Status == models.OutcomeError {
			fmt.Fprintf(w, "  article %d: %s\n", o.ID, o.Error)
		}
	}
	return nil
}
