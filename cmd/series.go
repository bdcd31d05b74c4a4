package cmd

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/zalepa/fleetkpi/kpi"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type dataPoint struct {
	week  string
	value float64
}

const blankBorough = "(blank)"

// boroughSeries groups weekly trip volume by borough. Rows repeating a
// (week, borough) pair are summed into one point.
func boroughSeries(rows []kpi.WeeklyBorough) (map[string][]dataPoint, map[string]bool) {
	totals := make(map[string]map[string]float64)
	weeks := make(map[string]bool)

	for _, r := range rows {
		name := r.Borough
		if name == "" {
			name = blankBorough
		}
		if totals[name] == nil {
			totals[name] = make(map[string]float64)
		}
		totals[name][r.WeekStart] += float64(r.TripVolume)
		weeks[r.WeekStart] = true
	}

	series := make(map[string][]dataPoint, len(totals))
	for name, byWeek := range totals {
		pts := make([]dataPoint, 0, len(byWeek))
		for w, v := range byWeek {
			pts = append(pts, dataPoint{week: w, value: v})
		}
		sort.Slice(pts, func(i, j int) bool { return pts[i].week < pts[j].week })
		series[name] = pts
	}
	return series, weeks
}

// citywide sums every borough per week.
func citywide(series map[string][]dataPoint, sortedWeeks []string) []dataPoint {
	agg := make(map[string]float64)
	for _, pts := range series {
		for _, p := range pts {
			agg[p.week] += p.value
		}
	}
	var out []dataPoint
	for _, w := range sortedWeeks {
		if v, ok := agg[w]; ok {
			out = append(out, dataPoint{week: w, value: v})
		}
	}
	return out
}

func printSummary(w io.Writer, d kpi.Dashboard) {
	fmt.Fprintf(w, "NYC Taxi Weekly KPIs (source: %s)\n\n", d.Source)
	for _, kv := range summaryLines(d.Summary) {
		fmt.Fprintf(w, "%-20s %14s\n", kv[0], kv[1])
	}
	fmt.Fprintln(w)
}

func renderTable(w io.Writer, title string, series map[string][]dataPoint, sortedWeeks []string) {
	names := sortedEntityNames(series)
	total := citywide(series, sortedWeeks)

	maxName := len("CITYWIDE")
	for _, n := range names {
		if len(n) > maxName {
			maxName = len(n)
		}
	}

	nPeriods := len(sortedWeeks)
	weekRange := "no data"
	if nPeriods > 0 {
		weekRange = fmt.Sprintf("%s to %s (%d weeks)", sortedWeeks[0], sortedWeeks[nPeriods-1], nPeriods)
	}

	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "Trend: %s\n\n", weekRange)

	rowFmt := fmt.Sprintf("%%-%ds  %%10s   %%s\n", maxName)
	rule := strings.Repeat("─", maxName+2+10+3+nPeriods)
	fmt.Fprintf(w, rowFmt, "Borough", "Latest", "Trend")
	fmt.Fprintln(w, rule)

	for _, name := range names {
		vals := alignValues(series[name], sortedWeeks)
		fmt.Fprintf(w, rowFmt, name, formatNum(latestValue(vals)), sparkline(vals))
	}

	if len(names) > 1 && len(total) > 0 {
		fmt.Fprintln(w, rule)
		vals := alignValues(total, sortedWeeks)
		fmt.Fprintf(w, rowFmt, "CITYWIDE", formatNum(latestValue(vals)), sparkline(vals))
	}
}

// alignValues lays pts out on sortedWeeks. Weeks with no point are NaN.
func alignValues(pts []dataPoint, sortedWeeks []string) []float64 {
	vals := make([]float64, len(sortedWeeks))
	pos := make(map[string]int, len(sortedWeeks))
	for i, w := range sortedWeeks {
		pos[w] = i
		vals[i] = math.NaN()
	}
	for _, p := range pts {
		if i, ok := pos[p.week]; ok {
			vals[i] = p.value
		}
	}
	return vals
}

// latestValue is the most recent non-NaN value, or NaN if there is none.
func latestValue(vals []float64) float64 {
	for i := len(vals) - 1; i >= 0; i-- {
		if v := vals[i]; !math.IsNaN(v) {
			return v
		}
	}
	return math.NaN()
}

// valueRange returns the smallest and largest non-NaN values. ok is false
// when every value is NaN.
func valueRange(vals []float64) (lo, hi float64, ok bool) {
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return lo, hi, ok
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// sparkline draws one block per value, scaled between the series' own
// minimum and maximum. A flat series sits mid-height; gaps are spaces.
func sparkline(vals []float64) string {
	out := []rune(strings.Repeat(" ", len(vals)))
	lo, hi, ok := valueRange(vals)
	if !ok {
		return string(out)
	}
	top := len(sparkBlocks) - 1
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		level := len(sparkBlocks) / 2
		if hi > lo {
			level = min(int((v-lo)/(hi-lo)*float64(top)), top)
		}
		out[i] = sparkBlocks[level]
	}
	return string(out)
}

func sortedEntityNames(series map[string][]dataPoint) []string {
	names := make([]string, 0, len(series))
	for k := range series {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func sortWeeks(weeks map[string]bool) []string {
	sorted := make([]string, 0, len(weeks))
	for w := range weeks {
		sorted = append(sorted, w)
	}
	sort.Strings(sorted)
	return sorted
}

var numPrinter = message.NewPrinter(language.English)

// formatNum groups thousands. Whole numbers print without a fraction, others
// with one decimal place.
func formatNum(v float64) string {
	switch {
	case math.IsNaN(v):
		return "- -"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return numPrinter.Sprintf("%d", int64(v))
	default:
		return numPrinter.Sprintf("%.1f", v)
	}
}

func formatFixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

var compactUnits = []struct {
	scale  float64
	suffix string
	prec   int
}{
	{1e6, "M", 1},
	{1e3, "k", 0},
}

// formatCompact shortens axis labels: 2500000 is "2.5M", 12000 is "12k".
func formatCompact(v float64) string {
	for _, u := range compactUnits {
		if math.Abs(v) >= u.scale {
			return strconv.FormatFloat(v/u.scale, 'f', u.prec, 64) + u.suffix
		}
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

// reorderArgs moves positional arguments behind the flags, since flag.Parse
// stops at the first positional. A flag written without "=" takes the next
// argument as its value unless that argument is itself a flag. Everything
// after "--" is positional.
func reorderArgs(args []string) []string {
	flags := make([]string, 0, len(args))
	var rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return append(append(flags, rest...), args[i+1:]...)
		case !strings.HasPrefix(a, "-"):
			rest = append(rest, a)
		case strings.Contains(a, "=") || i+1 == len(args) || strings.HasPrefix(args[i+1], "-"):
			flags = append(flags, a)
		default:
			flags = append(flags, a, args[i+1])
			i++
		}
	}
	return append(flags, rest...)
}
