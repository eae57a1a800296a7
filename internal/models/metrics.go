package models

import "time"

type MetricsBucket struct {
	Label     string    `json:"label"`
	Start     time.Time `json:"start"`
	Visits    int64     `json:"visits"`
	Checkins  int64     `json:"checkins"`
	Cancelled int64     `json:"cancelled"`
}

// Metrics summarizes bookings in a date range, optionally for one building.
type Metrics struct {
	BuildingID       int64           `json:"buildingId,omitempty"`
	DateRange        string          `json:"dateRange"`
	Preset           string          `json:"preset"`
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	Granularity      string          `json:"granularity"`
	TotalVisits      int64           `json:"totalVisits"`
	Confirmed        int64           `json:"confirmed"`
	Pending          int64           `json:"pending"`
	Cancelled        int64           `json:"cancelled"`
	Checkins         int64           `json:"checkins"`
	CancellationRate float64         `json:"cancellationRate"`
	NoShowRate       float64         `json:"noShowRate"`
	BookedHours      float64         `json:"bookedHours"`
	AvailableHours   float64         `json:"availableHours"`
	UtilizationRate  float64         `json:"utilizationRate"`
	Places           int64           `json:"places"`
	Buckets          []MetricsBucket `json:"buckets"`
}
