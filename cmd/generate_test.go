package cmd

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/zalepa/fleetkpi/kpi"
)

func TestGenerateRecordsDeterministic(t *testing.T) {
	a, b := generateRecords(42), generateRecords(42)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different records")
	}
	if reflect.DeepEqual(a, generateRecords(43)) {
		t.Error("different seeds produced identical records")
	}
	if len(a) != len(generatedWeeks)*len(generatedBoroughs) {
		t.Errorf("got %d records", len(a))
	}
	for _, r := range a {
		if r.TripCount <= 0 || r.NightTrips < 0 || r.NightTrips > r.TripCount {
			t.Errorf("implausible record %+v", r)
		}
	}
}

func TestWriteGenerated(t *testing.T) {
	tests := []struct {
		format string
		files  []string
	}{
		{"csv", []string{"gold_kpi_weekly.csv"}},
		{"parquet", []string{"gold_kpi_weekly.parquet"}},
		{"both", []string{"gold_kpi_weekly.csv", "gold_kpi_weekly.parquet"}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			dir := t.TempDir()
			paths, err := writeGenerated(dir, tt.format, 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(paths) != len(tt.files) {
				t.Fatalf("paths = %v, want %v", paths, tt.files)
			}
			for _, name := range tt.files {
				if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
					t.Error(err)
				}
			}

			d := kpi.NewAggregator(kpi.DefaultOptions(dir), nil).Aggregate(context.Background())
			if d.Source != kpi.SourceColumnar {
				t.Fatalf("source = %q, want columnar", d.Source)
			}
			if len(d.WeeklyByBorough) != len(generatedWeeks)*len(generatedBoroughs) {
				t.Errorf("weekly rows = %d", len(d.WeeklyByBorough))
			}
			var trips int64
			for _, r := range generateRecords(1) {
				trips += r.TripCount
			}
			if d.Summary.TotalTrips != float64(trips) {
				t.Errorf("total trips = %v, want %d", d.Summary.TotalTrips, trips)
			}
		})
	}
}

func TestWriteGeneratedUnknownFormat(t *testing.T) {
	if _, err := writeGenerated(t.TempDir(), "xlsx", 1); err == nil {
		t.Error("expected error for unknown format")
	}
}
