package storage

import "time"

// Run is one archived conversion of a blanket deployment: the window
// metadata, the instruments involved and the offsets that were applied.
type Run struct {
	ID             int64
	CreatedAt      time.Time
	Blanket        string
	Dive           string
	Deployment     string
	Latitude       float64
	Longitude      float64
	DeployedAt     time.Time
	RecoveredAt    time.Time
	TopLoggerID    string
	BottomLoggerID string
	TopOffset      float64
	BottomOffset   float64
}

// Record is one archived corrected measurement pair.
type Record struct {
	Timestamp         time.Time
	TopTemperature    float64
	BottomTemperature float64
	Differential      float64
}
