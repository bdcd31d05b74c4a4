package cmd

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/zalepa/fleetkpi/kpi"
)

func TestFormatNum(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{2500000, "2,500,000"},
		{-1234567, "-1,234,567"},
		{3.26, "3.3"},
		{1234.5, "1,234.5"},
		{math.NaN(), "- -"},
	}
	for _, tt := range tests {
		if got := formatNum(tt.in); got != tt.want {
			t.Errorf("formatNum(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{500, "500"},
		{12000, "12k"},
		{2500000, "2.5M"},
	}
	for _, tt := range tests {
		if got := formatCompact(tt.in); got != tt.want {
			t.Errorf("formatCompact(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSparkline(t *testing.T) {
	tests := []struct {
		in   []float64
		want string
	}{
		{[]float64{1, 2, 3}, "▁▄█"},
		{[]float64{5, 5}, "▅▅"},
		{[]float64{1, math.NaN(), 8}, "▁ █"},
		{[]float64{math.NaN(), math.NaN()}, "  "},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := sparkline(tt.in); got != tt.want {
			t.Errorf("sparkline(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLatestValue(t *testing.T) {
	if got := latestValue([]float64{1, 2, math.NaN()}); got != 2 {
		t.Errorf("latestValue = %v, want 2", got)
	}
	if got := latestValue([]float64{math.NaN()}); !math.IsNaN(got) {
		t.Errorf("latestValue(all NaN) = %v, want NaN", got)
	}
}

func TestAlignValues(t *testing.T) {
	got := alignValues([]dataPoint{{"2025-01-13", 3}, {"2024-12-30", 1}, {"2099-01-01", 9}},
		[]string{"2024-12-30", "2025-01-06", "2025-01-13"})
	if len(got) != 3 || got[0] != 1 || !math.IsNaN(got[1]) || got[2] != 3 {
		t.Errorf("alignValues = %v, want [1 NaN 3]", got)
	}
}

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"data", "--pdf", "out.pdf"}, []string{"--pdf", "out.pdf", "data"}},
		{[]string{"--pdf=out.pdf", "data"}, []string{"--pdf=out.pdf", "data"}},
		{[]string{"--", "-odd"}, []string{"-odd"}},
		{[]string{"data", "--dir"}, []string{"--dir", "data"}},
		{[]string{"--addr", ":8080", "data", "--", "extra"}, []string{"--addr", ":8080", "data", "extra"}},
	}
	for _, tt := range tests {
		if got := reorderArgs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("reorderArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBoroughSeries(t *testing.T) {
	rows := []kpi.WeeklyBorough{
		{WeekStart: "2025-01-06", Borough: "Queens", TripVolume: 10},
		{WeekStart: "2024-12-30", Borough: "Queens", TripVolume: 5},
		{WeekStart: "2025-01-06", Borough: "Queens", TripVolume: 2},
		{WeekStart: "2025-01-06", Borough: "", TripVolume: 1},
	}
	series, weeks := boroughSeries(rows)

	want := []dataPoint{{"2024-12-30", 5}, {"2025-01-06", 12}}
	if !reflect.DeepEqual(series["Queens"], want) {
		t.Errorf("Queens = %v, want %v", series["Queens"], want)
	}
	if _, ok := series[blankBorough]; !ok {
		t.Errorf("blank borough missing from %v", series)
	}
	if got := sortWeeks(weeks); !reflect.DeepEqual(got, []string{"2024-12-30", "2025-01-06"}) {
		t.Errorf("weeks = %v", got)
	}

	total := citywide(series, sortWeeks(weeks))
	if len(total) != 2 || total[1].value != 13 {
		t.Errorf("citywide = %v", total)
	}
}

func TestPrintSummaryMock(t *testing.T) {
	d := kpi.Mock()
	var buf bytes.Buffer
	printSummary(&buf, d)
	series, weeks := boroughSeries(d.WeeklyByBorough)
	renderTable(&buf, "Weekly Trip Volume by Borough", series, sortWeeks(weeks))

	out := buf.String()
	for _, want := range []string{
		"source: mock",
		"$88,102,290",
		"2,500,000",
		"27.8 mi",
		"26.1%",
		"$39.00",
		"2024-12-30 to 2025-01-13 (3 weeks)",
		"CITYWIDE",
		"Manhattan",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

type seriesFixture struct {
	series map[string][]dataPoint
	weeks  []string
}

func mockSeries() seriesFixture {
	series, weeks := boroughSeries(kpi.Mock().WeeklyByBorough)
	return seriesFixture{series: series, weeks: sortWeeks(weeks)}
}
