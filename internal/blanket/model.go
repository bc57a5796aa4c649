package blanket

import "time"

// Sample is a single thermistor measurement. Immutable once parsed.
type Sample struct {
	Timestamp   time.Time // UTC
	Raw         int64     // ADC counts
	Resistance  float64   // ohm
	Temperature float64   // degrees Celsius, uncorrected
}

// LoggerSeries is the ordered sample sequence read from one logger file,
// tagged with the identity of the instrument that produced it.
type LoggerSeries struct {
	LoggerID string
	Samples  []Sample
}

// CorrectedRecord pairs one top and one bottom sample at (or near) the
// same instant, with the calibration offset applied to each side and the
// top−bottom differential derived. The raw per-side samples are kept for
// the full-width report output.
type CorrectedRecord struct {
	Timestamp       time.Time
	Top             Sample
	Bottom          Sample
	TopCorrected    float64
	BottomCorrected float64
	Differential    float64
}

// WindowGroup is the corrected record sequence assigned to one deployment
// window, in ascending timestamp order.
type WindowGroup struct {
	Window  DeploymentWindow
	Records []CorrectedRecord
}

// Dataset is the output of the alignment engine for one blanket: the
// resolved instrument identities and offsets, the windowed record groups,
// and counts of samples that could not be used.
type Dataset struct {
	TopLoggerID    string
	BottomLoggerID string
	TopOffset      float64
	BottomOffset   float64

	Groups []WindowGroup

	UnmatchedTop    int // top samples with no bottom partner within tolerance
	UnmatchedBottom int // bottom samples with no top partner within tolerance
	OutOfWindow     int // paired records outside every deployment window
}

// Records returns the total number of windowed records in the dataset.
func (d *Dataset) Records() int {
	var n int
	for _, g := range d.Groups {
		n += len(g.Records)
	}
	return n
}
