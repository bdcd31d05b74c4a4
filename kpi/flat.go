package kpi

import (
	"context"
	"fmt"
	"strings"
)

// flatTotalRevenue is reported by the flat document, which carries no revenue
// at all. It is the mock dataset's figure, not something derived from the
// input.
// TODO: drop once the weekly export includes total_revenue and sum it instead.
const flatTotalRevenue = mockTotalRevenue

// FlatDocument reads a JSON array of weekly per-borough rows.
type FlatDocument struct {
	File string
}

func (s FlatDocument) Name() string { return SourceFlat }
func (s FlatDocument) Path() string { return s.File }

func (s FlatDocument) Load(ctx context.Context) (Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return Dashboard{}, err
	}
	rows, err := readRows(s.File)
	if err != nil {
		return Dashboard{}, err
	}
	if len(rows) == 0 {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrEmpty, s.File)
	}
	return buildFlat(rows), nil
}

func buildFlat(rows []Row) Dashboard {
	weekly := make([]WeeklyBorough, len(rows))
	var trips float64
	for i, r := range rows {
		weekly[i] = normalizeFlat(r)
		trips += float64(weekly[i].TripVolume)
	}

	kpis := emptyKPIs()
	kpis[KPIWeeklyTripVolume] = weeklyRows(weekly)

	return Dashboard{
		Source: SourceFlat,
		Summary: Summary{
			TotalRevenue:    flatTotalRevenue,
			TotalTrips:      trips,
			AvgTripDistance: defaultAvgTripDistance,
			NightTripPct:    defaultNightTripPct,
			AvgFare:         defaultAvgFare,
		},
		WeeklyByBorough: weekly,
		KPIs:            kpis,
	}
}

func normalizeFlat(r Row) WeeklyBorough {
	borough := firstString(r, "pickup_borough", "borough")
	if borough == "" {
		borough = "Unknown"
	}

	week, _ := r.Str("week_start_date")
	if i := strings.IndexByte(week, 'T'); i >= 0 {
		week = week[:i]
	}
	if week == "" {
		week, _ = r.Str("week_start")
	}

	return WeeklyBorough{
		WeekStart:  week,
		Borough:    borough,
		TripVolume: r.Field("trip_volume").Count(),
	}
}

// firstString returns the first non-empty string value among keys.
func firstString(r Row, keys ...string) string {
	for _, k := range keys {
		if s, ok := r.Str(k); ok && s != "" {
			return s
		}
	}
	return ""
}
