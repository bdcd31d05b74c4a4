package kpi

import "encoding/json"

// Row is one raw record as read from a source. Its keys depend on the source
// format; see the normalizers in consolidated.go, flat.go and columnar.go.
type Row map[string]any

// KPI collection names exposed on Dashboard.KPIs.
const (
	KPIWeeklyTripVolume  = "kpi1_weeklyTripVolume"
	KPIPeakHour          = "kpi2_peakHour"
	KPITripTimeDistance  = "kpi3_tripTimeDistance"
	KPITotalTripsRevenue = "kpi4_totalTripsRevenue"
	KPIRevenuePerMile    = "kpi5_revenuePerMile"
	KPINightTrips        = "kpi6_nightTrips"
)

// KPINames lists the KPI collections in display order.
var KPINames = []string{
	KPIWeeklyTripVolume,
	KPIPeakHour,
	KPITripTimeDistance,
	KPITotalTripsRevenue,
	KPIRevenuePerMile,
	KPINightTrips,
}

// WeeklyBorough is the trip volume of one borough for one week. Duplicate
// (week, borough) pairs are kept as they appear in the source.
type WeeklyBorough struct {
	WeekStart  string `json:"weekStart"`
	Borough    string `json:"borough"`
	TripVolume int64  `json:"tripVolume"`
}

// Row returns w in the raw row shape used by Dashboard.KPIs.
func (w WeeklyBorough) Row() Row {
	return Row{
		"weekStart":  w.WeekStart,
		"borough":    w.Borough,
		"tripVolume": w.TripVolume,
	}
}

// Summary holds the headline statistics. Every field is always finite.
type Summary struct {
	TotalRevenue      float64 `json:"totalRevenue"`
	TotalTrips        float64 `json:"totalTrips"`
	AvgTripDistance   float64 `json:"avgTripDistance"`
	PeakHourTripPct   float64 `json:"peakHourTripPct"`
	AvgMinutesPerMile float64 `json:"avgMinutesPerMile"`
	AvgRevenuePerMile float64 `json:"avgRevenuePerMile"`
	NightTripPct      float64 `json:"nightTripPct"`
	AvgFare           float64 `json:"avgFare"`
}

// MarshalJSON also writes NightTripPct under "pctNightTrips", the key used by
// the columnar data set and its consumers.
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		PctNightTrips float64 `json:"pctNightTrips"`
	}{plain(s), s.NightTripPct})
}

// Dashboard is everything the dashboard renders for one request.
type Dashboard struct {
	Source          string           `json:"source"`
	Summary         Summary          `json:"summary"`
	WeeklyByBorough []WeeklyBorough  `json:"weeklyByBorough"`
	KPIs            map[string][]Row `json:"kpis"`
}

// Source names reported on Dashboard.Source.
const (
	SourceConsolidated = "consolidated"
	SourceFlat         = "flat"
	SourceColumnar     = "columnar"
	SourceMock         = "mock"
)

// emptyKPIs returns a KPI map with every known collection present and empty.
func emptyKPIs() map[string][]Row {
	m := make(map[string][]Row, len(KPINames))
	for _, name := range KPINames {
		m[name] = []Row{}
	}
	return m
}

// weeklyRows converts normalized records back into rows for the kpi1 slot.
func weeklyRows(records []WeeklyBorough) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}
