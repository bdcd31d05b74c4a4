package kpi

const mockTotalRevenue = 88102290.0

// Mock returns the fixed dataset shown when no source is readable.
func Mock() Dashboard {
	return Dashboard{
		Source: SourceMock,
		Summary: Summary{
			TotalRevenue:      mockTotalRevenue,
			TotalTrips:        2500000,
			AvgTripDistance:   27.8,
			PeakHourTripPct:   32.5,
			AvgMinutesPerMile: 8.4,
			AvgRevenuePerMile: 10.5,
			NightTripPct:      26.1,
			AvgFare:           39,
		},
		WeeklyByBorough: []WeeklyBorough{
			{WeekStart: "2024-12-30", Borough: "Manhattan", TripVolume: 612000},
			{WeekStart: "2024-12-30", Borough: "Brooklyn", TripVolume: 108500},
			{WeekStart: "2024-12-30", Borough: "Queens", TripVolume: 112400},
			{WeekStart: "2025-01-06", Borough: "Manhattan", TripVolume: 598300},
			{WeekStart: "2025-01-06", Borough: "Brooklyn", TripVolume: 104200},
			{WeekStart: "2025-01-06", Borough: "Queens", TripVolume: 109800},
			{WeekStart: "2025-01-13", Borough: "Manhattan", TripVolume: 631700},
			{WeekStart: "2025-01-13", Borough: "Brooklyn", TripVolume: 112900},
			{WeekStart: "2025-01-13", Borough: "Queens", TripVolume: 110200},
		},
		KPIs: emptyKPIs(),
	}
}
