package kpi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"
)

// ColumnarRecord is the schema of the gold-layer columnar files.
type ColumnarRecord struct {
	WeekStart    string  `parquet:"week_start" json:"week_start"`
	Borough      string  `parquet:"borough" json:"borough"`
	TripCount    int64   `parquet:"trip_count" json:"trip_count"`
	TotalRevenue float64 `parquet:"total_revenue" json:"total_revenue"`
	TripDistance float64 `parquet:"trip_distance" json:"trip_distance"`
	NightTrips   int64   `parquet:"night_trips" json:"night_trips"`
	FareAmount   float64 `parquet:"fare_amount" json:"fare_amount"`
}

// Row returns c in raw row form.
func (c ColumnarRecord) Row() Row {
	return Row{
		"week_start":    c.WeekStart,
		"borough":       c.Borough,
		"trip_count":    c.TripCount,
		"total_revenue": c.TotalRevenue,
		"trip_distance": c.TripDistance,
		"night_trips":   c.NightTrips,
		"fare_amount":   c.FareAmount,
	}
}

// ColumnarHeader is the column order of gold-layer CSV files.
var ColumnarHeader = []string{
	"week_start", "borough", "trip_count", "total_revenue",
	"trip_distance", "night_trips", "fare_amount",
}

var columnarExts = map[string]bool{
	".csv":     true,
	".parquet": true,
	".json":    true,
}

// ColumnarStore reads per-record files from Dir. The first file in directory
// order whose name contains Match and whose extension is .csv, .parquet or
// .json is used; files named in Skip are ignored.
type ColumnarStore struct {
	Dir   string
	Match string
	Skip  []string

	file string
}

func (s *ColumnarStore) Name() string { return SourceColumnar }
func (s *ColumnarStore) Path() string { return s.file }

func (s *ColumnarStore) Load(ctx context.Context) (Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return Dashboard{}, err
	}
	path, err := s.find()
	if err != nil {
		return Dashboard{}, err
	}
	s.file = path

	var rows []Row
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSVRows(path)
	case ".parquet":
		rows, err = readParquetRows(path)
	default:
		rows, err = readRows(path)
	}
	if err != nil {
		return Dashboard{}, err
	}
	if len(rows) == 0 {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	return buildColumnar(rows), nil
}

func (s *ColumnarStore) find() (string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, s.Dir)
		}
		return "", fmt.Errorf("listing %s: %w", s.Dir, err)
	}
	skip := make(map[string]bool, len(s.Skip))
	for _, name := range s.Skip {
		skip[name] = true
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || skip[name] {
			continue
		}
		if !strings.Contains(name, s.Match) || !columnarExts[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		return filepath.Join(s.Dir, name), nil
	}
	return "", fmt.Errorf("%w: no file matching %q in %s", ErrNotFound, s.Match, s.Dir)
}

func readCSVRows(path string) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, df.Err)
	}

	names := df.Names()
	cols := make([][]string, len(names))
	for i, name := range names {
		cols[i] = df.Col(name).Records()
	}
	rows := make([]Row, df.Nrow())
	for i := range rows {
		r := make(Row, len(names))
		for j, name := range names {
			r[name] = cols[j][i]
		}
		rows[i] = r
	}
	return rows, nil
}

func readParquetRows(path string) ([]Row, error) {
	records, err := parquet.ReadFile[ColumnarRecord](path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = rec.Row()
	}
	return rows, nil
}

func buildColumnar(rows []Row) Dashboard {
	var (
		revenue  = decimal.Zero
		fares    = decimal.Zero
		distance float64
		night    float64
		trips    float64
	)
	weekly := make([]WeeklyBorough, len(rows))
	for i, r := range rows {
		revenue = revenue.Add(decimal.NewFromFloat(r.Field("total_revenue").OrZero()))
		fares = fares.Add(decimal.NewFromFloat(r.Field("fare_amount").OrZero()))
		distance += r.Field("trip_distance").OrZero()
		night += r.Field("night_trips").OrZero()
		count := r.Field("trip_count")
		trips += count.OrZero()

		// Week and borough are passed through without defaults.
		week := r.Text("week_start")
		borough := r.Text("borough")
		weekly[i] = WeeklyBorough{WeekStart: week, Borough: borough, TripVolume: count.Count()}
	}

	total := finite(revenue.InexactFloat64())
	trips, distance, night = finite(trips), finite(distance), finite(night)
	kpis := emptyKPIs()
	kpis[KPIWeeklyTripVolume] = weeklyRows(weekly)

	return Dashboard{
		Source: SourceColumnar,
		Summary: Summary{
			TotalRevenue:      total,
			TotalTrips:        trips,
			AvgTripDistance:   ratio(distance, trips),
			AvgRevenuePerMile: ratio(total, distance),
			NightTripPct:      ratio(night*100, trips),
			AvgFare:           ratio(fares.InexactFloat64(), float64(len(rows))),
		},
		WeeklyByBorough: weekly,
		KPIs:            kpis,
	}
}
