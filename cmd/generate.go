package cmd

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/parquet-go/parquet-go"
	"github.com/zalepa/fleetkpi/kpi"
)

const generatedBase = "gold_kpi_weekly"

var generatedWeeks = []string{"2024-12-30", "2025-01-06", "2025-01-13", "2025-01-20"}

// boroughProfile is the baseline a generated week is jittered around.
type boroughProfile struct {
	name     string
	trips    float64
	miles    float64 // average trip distance
	fare     float64 // average fare
	nightPct float64
}

var generatedBoroughs = []boroughProfile{
	{"Bronx", 31000, 4.9, 24.5, 31},
	{"Brooklyn", 108000, 4.1, 22.0, 28},
	{"EWR", 600, 17.2, 88.0, 22},
	{"Manhattan", 605000, 2.4, 17.5, 24},
	{"Queens", 111000, 8.3, 41.0, 21},
	{"Staten Island", 1900, 9.7, 39.5, 18},
}

// Generate implements the "generate" subcommand: write a deterministic
// synthetic gold-layer dataset for the columnar source.
func Generate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	dir := fs.String("dir", "", "output directory (default $DATA_DIR)")
	format := fs.String("format", "csv", "output format: csv, parquet or both")
	seed := fs.Uint64("seed", 1, "random seed")
	envFile := fs.String("env", "", "env file to load before the environment")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fleetkpi generate [--dir data] [--format csv|parquet|both] [--seed N]\n\nWrite a synthetic weekly KPI dataset.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	cfg, log := setup(*envFile, os.Stderr)
	if *dir == "" {
		*dir = cfg.DataDir
	}

	paths, err := writeGenerated(*dir, *format, *seed)
	if err != nil {
		log.WithError(err).Error("generating dataset")
		os.Exit(1)
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
}

// writeGenerated writes the dataset in the requested format(s) and returns
// the written paths.
func writeGenerated(dir, format string, seed uint64) ([]string, error) {
	var csvOut, parquetOut bool
	switch format {
	case "csv":
		csvOut = true
	case "parquet":
		parquetOut = true
	case "both":
		csvOut, parquetOut = true, true
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	records := generateRecords(seed)

	var paths []string
	if csvOut {
		p := filepath.Join(dir, generatedBase+".csv")
		if err := writeRecordsCSV(p, records); err != nil {
			return nil, fmt.Errorf("writing %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	if parquetOut {
		p := filepath.Join(dir, generatedBase+".parquet")
		if err := parquet.WriteFile(p, records); err != nil {
			return nil, fmt.Errorf("writing %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// generateRecords returns one record per (week, borough), identical for the
// same seed.
func generateRecords(seed uint64) []kpi.ColumnarRecord {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	jitter := func(v, spread float64) float64 {
		return v * (1 + spread*(2*rng.Float64()-1))
	}

	records := make([]kpi.ColumnarRecord, 0, len(generatedWeeks)*len(generatedBoroughs))
	for _, week := range generatedWeeks {
		for _, b := range generatedBoroughs {
			trips := math.Round(jitter(b.trips, 0.05))
			miles := jitter(b.miles, 0.08)
			fare := round2(jitter(b.fare, 0.06))
			records = append(records, kpi.ColumnarRecord{
				WeekStart:    week,
				Borough:      b.name,
				TripCount:    int64(trips),
				TotalRevenue: round2(trips * fare * 1.18),
				TripDistance: round2(trips * miles),
				NightTrips:   int64(math.Round(trips * jitter(b.nightPct, 0.1) / 100)),
				FareAmount:   fare,
			})
		}
	}
	return records
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeRecordsCSV(path string, records []kpi.ColumnarRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(kpi.ColumnarHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.WeekStart,
			r.Borough,
			strconv.FormatInt(r.TripCount, 10),
			strconv.FormatFloat(r.TotalRevenue, 'f', 2, 64),
			strconv.FormatFloat(r.TripDistance, 'f', 2, 64),
			strconv.FormatInt(r.NightTrips, 10),
			strconv.FormatFloat(r.FareAmount, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
