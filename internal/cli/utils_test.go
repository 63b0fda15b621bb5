package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/kiji/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	for _, valid := range []string{"text", "json", "compact"} {
		if _, err := ParseOutputFormat(valid); err != nil {
			t.Errorf("ParseOutputFormat(%q) failed: %v", valid, err)
		}
	}
	if _, err := ParseOutputFormat("xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestWriteSearchResponse_Text(t *testing.T) {
	var buf bytes.Buffer
	resp := &models.SearchResponse{
		Total: 1,
		Mode:  "full_text",
		Query: "agents",
		Results: []*models.SearchResult{
			{ID: 3, Score: 1.5, Title: "Agents weekly", Tags: []string{"AI"}, CombinedScore: 42.5},
		},
	}
	if err := WriteSearchResponse(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Found 1 results", "Agents weekly", "AI", "42.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResponse_JSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	resp := &models.SearchResponse{Total: 2, Query: "x"}
	if err := WriteSearchResponse(&buf, resp, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.SearchResponse
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Total != 2 || decoded.Query != "x" {
		t.Errorf("round trip wrong: %+v", decoded)
	}
}

func TestWriteIngestReport_TextShowsErrors(t *testing.T) {
	var buf bytes.Buffer
	report := &models.IngestReport{
		RunID: "run-1",
		Outcomes: []models.IngestionOutcome{
			{ID: 1, Status: models.OutcomeAdmitted},
			{ID: 2, Status: models.OutcomeError, Error: "empty title"},
		},
	}
	report.Tally()
	if err := WriteIngestReport(&buf, report, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "run-1") || !strings.Contains(out, "empty title") {
		t.Errorf("report output missing fields:\n%s", out)
	}
}

func TestWriteResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	results := []*models.SearchResult{
		{ID: 1, Score: 0.5, CombinedScore: 10, Title: "A"},
		{ID: 2, Score: 0.25, CombinedScore: 5, Title: "B"},
	}
	if err := WriteResults(&buf, results, OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("compact output should be one line per result:\n%s", buf.String())
	}
}
