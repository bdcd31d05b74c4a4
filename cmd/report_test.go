package cmd

import (
	"path/filepath"
	"testing"

	"github.com/zalepa/fleetkpi/kpi"
)

func TestRenderPDF(t *testing.T) {
	tests := []struct {
		name  string
		d     kpi.Dashboard
		pages int
	}{
		{"mock", kpi.Mock(), 1 + 3},
		{"no weekly rows", kpi.Dashboard{Source: kpi.SourceFlat, Summary: kpi.Mock().Summary}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "report.pdf")
			if err := renderPDF(path, tt.d); err != nil {
				t.Fatalf("renderPDF: %v", err)
			}
			info, err := inspectPDF(path)
			if err != nil {
				t.Fatalf("inspectPDF: %v", err)
			}
			if info.pages != tt.pages {
				t.Errorf("pages = %d, want %d", info.pages, tt.pages)
			}
			if len(info.textOps) == 0 || info.textOps[0] == 0 {
				t.Errorf("summary page has no text: %v", info.textOps)
			}
		})
	}
}

func TestSummaryLines(t *testing.T) {
	lines := summaryLines(kpi.Mock().Summary)
	want := map[string]string{
		"Total revenue":    "$88,102,290",
		"Total trips":      "2,500,000",
		"Revenue per mile": "$10.50",
		"Avg fare":         "$39.00",
	}
	for _, kv := range lines {
		if w, ok := want[kv[0]]; ok && kv[1] != w {
			t.Errorf("%s = %q, want %q", kv[0], kv[1], w)
		}
	}
	if len(lines) != 8 {
		t.Errorf("got %d lines, want 8", len(lines))
	}
}

func TestInspectPDFMissing(t *testing.T) {
	if _, err := inspectPDF(filepath.Join(t.TempDir(), "nope.pdf")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCountTextOps(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"BT 72 700 Td (NYC Taxi Weekly KPIs)Tj ET", 1},
		{"BT (a) Tj ET BT (b)Tj ET", 2},
		{"BT [(A) -120 (B)]TJ ET", 1},
		{"BT <004E0059>Tj ET", 1},
		{"0 0 m 10 10 l S", 0},
		{"BT (Tj inside a string)Tj ET", 1},
	}
	for _, tt := range tests {
		if got := countTextOps([]byte(tt.in)); got != tt.want {
			t.Errorf("countTextOps(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
