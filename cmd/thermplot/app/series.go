package app

import (
	"math"
	"time"

	"github.com/marinegeo/goldennugget/internal/storage"
)

// SeriesData accumulates the records of one run together with the value
// and time bounds the renderer scales its axes to.
type SeriesData struct {
	Run *storage.Run

	Records []storage.Record

	TimestampStart time.Time
	TimestampEnd   time.Time
	TempMin        float64
	TempMax        float64
}

func NewSeriesData(run *storage.Run) *SeriesData {
	return &SeriesData{
		Run:     run,
		TempMin: math.MaxFloat64,
		TempMax: -math.MaxFloat64,
	}
}

func (s *SeriesData) Update(r storage.Record) {
	if s.TimestampStart.IsZero() || s.TimestampStart.After(r.Timestamp) {
		s.TimestampStart = r.Timestamp
	}
	if s.TimestampEnd.IsZero() || s.TimestampEnd.Before(r.Timestamp) {
		s.TimestampEnd = r.Timestamp
	}

	for _, v := range []float64{r.TopTemperature, r.BottomTemperature, r.Differential} {
		s.TempMin = math.Min(s.TempMin, v)
		s.TempMax = math.Max(s.TempMax, v)
	}

	s.Records = append(s.Records, r)
}

// Span returns the plotted time span; at least one second to keep the
// axis scale finite for single-record runs.
func (s *SeriesData) Span() time.Duration {
	span := s.TimestampEnd.Sub(s.TimestampStart)
	if span <= 0 {
		return time.Second
	}
	return span
}

// Range returns the plotted temperature range, padded so the traces do
// not touch the plot frame.
func (s *SeriesData) Range() (min, max float64) {
	min, max = s.TempMin, s.TempMax
	pad := (max - min) * 0.05
	if pad == 0 {
		pad = 0.1
	}
	return min - pad, max + pad
}
