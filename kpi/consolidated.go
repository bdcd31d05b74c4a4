package kpi

import (
	"context"
	"fmt"
	"strings"
)

// Placeholders used where the consolidated and flat documents carry no data.
const (
	defaultAvgTripDistance = 3.2
	defaultAvgFare         = 35.0
	defaultNightTripPct    = 18.0
)

// consolidatedKeys maps document keys onto the KPI collection names.
var consolidatedKeys = []struct{ key, name string }{
	{"kpi1", KPIWeeklyTripVolume},
	{"kpi2", KPIPeakHour},
	{"kpi3", KPITripTimeDistance},
	{"kpi4", KPITotalTripsRevenue},
	{"kpi5", KPIRevenuePerMile},
	{"kpi6", KPINightTrips},
}

// ConsolidatedDocument reads a JSON object keyed kpi1..kpi6, each value a list
// of rows for one metric.
type ConsolidatedDocument struct {
	File string
}

func (s ConsolidatedDocument) Name() string { return SourceConsolidated }
func (s ConsolidatedDocument) Path() string { return s.File }

func (s ConsolidatedDocument) Load(ctx context.Context) (Dashboard, error) {
	if err := ctx.Err(); err != nil {
		return Dashboard{}, err
	}
	var raw map[string]any
	if err := readJSON(s.File, &raw); err != nil {
		return Dashboard{}, err
	}
	doc := make(map[string][]Row)
	for _, k := range consolidatedKeys {
		if v, ok := raw[k.key]; ok {
			doc[k.key] = toRows(v)
		}
	}
	if len(doc) == 0 {
		return Dashboard{}, fmt.Errorf("%w: %s has none of kpi1..kpi6", ErrEmpty, s.File)
	}
	return buildConsolidated(doc), nil
}

func buildConsolidated(doc map[string][]Row) Dashboard {
	kpis := emptyKPIs()
	for _, k := range consolidatedKeys {
		if rows := doc[k.key]; rows != nil {
			kpis[k.name] = rows
		}
	}

	weekly := make([]WeeklyBorough, 0, len(doc["kpi1"]))
	for _, r := range doc["kpi1"] {
		week, _ := r.Str("week_start_date")
		if i := strings.IndexByte(week, ' '); i >= 0 {
			week = week[:i]
		}
		borough, _ := r.Str("pickup_borough")
		weekly = append(weekly, WeeklyBorough{
			WeekStart:  week,
			Borough:    borough,
			TripVolume: r.Field("trip_volume").Count(),
		})
	}

	revenue := finite(sumDecimal(doc["kpi4"], "total_revenue").InexactFloat64())
	trips := sumField(doc["kpi4"], "total_trips")
	fare := defaultAvgFare
	if trips > 0 {
		fare = finite(revenue / trips)
	}

	return Dashboard{
		Source: SourceConsolidated,
		Summary: Summary{
			TotalRevenue:      revenue,
			TotalTrips:        trips,
			AvgTripDistance:   defaultAvgTripDistance,
			PeakHourTripPct:   meanField(doc["kpi2"], "peak_hour_trip_percentage"),
			AvgMinutesPerMile: meanField(doc["kpi3"], "avg_minutes_per_mile"),
			AvgRevenuePerMile: meanField(doc["kpi5"], "avg_revenue_per_mile"),
			NightTripPct:      meanField(doc["kpi6"], "night_trip_percentage"),
			AvgFare:           fare,
		},
		WeeklyByBorough: weekly,
		KPIs:            kpis,
	}
}
