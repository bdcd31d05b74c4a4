package kpi

import (
	"context"
	"io"
	"math"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Options locates the input files.
type Options struct {
	Dir              string
	ConsolidatedFile string
	WeeklyFile       string
	ColumnarMatch    string
}

// DefaultOptions returns the file names the gold-layer export produces.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:              dir,
		ConsolidatedFile: "gold_kpi_dashboard.json",
		WeeklyFile:       "gold_kpi_weekly.json",
		ColumnarMatch:    "gold",
	}
}

// Aggregator builds a Dashboard from the first usable source in Dir.
type Aggregator struct {
	opts Options
	log  logrus.FieldLogger
}

// NewAggregator returns an Aggregator reading from opts.Dir. A nil logger
// discards diagnostics.
func NewAggregator(opts Options, log logrus.FieldLogger) *Aggregator {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Aggregator{opts: opts, log: log}
}

// Sources returns the sources in priority order. A fresh set is built per
// call so nothing is shared between requests.
func (a *Aggregator) Sources() []Source {
	return []Source{
		ConsolidatedDocument{File: filepath.Join(a.opts.Dir, a.opts.ConsolidatedFile)},
		FlatDocument{File: filepath.Join(a.opts.Dir, a.opts.WeeklyFile)},
		&ColumnarStore{
			Dir:   a.opts.Dir,
			Match: a.opts.ColumnarMatch,
			Skip:  []string{a.opts.ConsolidatedFile, a.opts.WeeklyFile},
		},
	}
}

// Aggregate returns the dashboard built from the first source that loads
// successfully, or the mock dataset when none does. It never fails.
func (a *Aggregator) Aggregate(ctx context.Context) Dashboard {
	for _, src := range a.Sources() {
		d, err := src.Load(ctx)
		if err == nil {
			a.log.WithFields(logrus.Fields{
				"source": src.Name(),
				"path":   src.Path(),
				"rows":   len(d.WeeklyByBorough),
			}).Debug("kpi source loaded")
			return d
		}
		a.log.WithFields(logrus.Fields{
			"source": src.Name(),
			"path":   src.Path(),
			"error":  err.Error(),
		}).Warn("kpi source unavailable, falling back")
		if ctx.Err() != nil {
			break
		}
	}
	a.log.WithField("dir", a.opts.Dir).Warn("no kpi source available, using mock dataset")
	return Mock()
}

// sumField sums key across rows; values that fail coercion count as 0.
func sumField(rows []Row, key string) float64 {
	var total float64
	for _, r := range rows {
		total += r.Field(key).OrZero()
	}
	return finite(total)
}

func sumDecimal(rows []Row, key string) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(decimal.NewFromFloat(r.Field(key).OrZero()))
	}
	return total
}

// meanField averages key across rows. An empty list divides by 1, giving 0.
func meanField(rows []Row, key string) float64 {
	n := len(rows)
	if n == 0 {
		n = 1
	}
	return finite(sumField(rows, key) / float64(n))
}

// ratio returns num/den, or 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return finite(num / den)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
