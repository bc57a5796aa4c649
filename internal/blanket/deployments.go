package blanket

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DeploymentWindow is one dive of one blanket: the time interval and
// location during which the instrument was recording on the seafloor.
// The interval is closed: samples stamped exactly at DeployedAt or
// RecoveredAt belong to the window.
type DeploymentWindow struct {
	Blanket     string
	Dive        string
	Name        string
	Latitude    float64 // decimal degrees, north positive
	Longitude   float64 // decimal degrees west, positive
	DeployedAt  time.Time
	RecoveredAt time.Time
}

// Contains reports whether t falls inside the closed deployment interval.
func (w DeploymentWindow) Contains(t time.Time) bool {
	return !t.Before(w.DeployedAt) && !t.After(w.RecoveredAt)
}

// Label is the window's output file stem, <dive>_<blanket>_<name>.
func (w DeploymentWindow) Label() string {
	return fmt.Sprintf("%s_%s_%s", w.Dive, w.Blanket, w.Name)
}

// Deployment metadata column layout. One header row, then one row per
// dive. Times are (Julian day, hour, minute) triples; the year is not in
// the file and comes from the logger data.
const (
	colLatDeg = iota
	colLatMin
	colLonDeg
	colLonDecMin
	colBlanket
	colDive
	colDeployment
	colJdayDeployed
	colHourDeployed
	colMinDeployed
	colJdayRecovered
	colHourRecovered
	colMinRecovered
	deploymentColumns
)

// LoadDeployments reads the per-blanket deployment metadata file. year
// anchors the Julian-day timestamps to a calendar year.
func LoadDeployments(path string, year int) ([]DeploymentWindow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening deployment file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading deployment file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("deployment file %s is empty", path)
	}

	windows := make([]DeploymentWindow, 0, len(rows)-1)
	for i, row := range rows[1:] { // first row is the header
		line := i + 2
		window, err := parseWindow(row, path, line, year)
		if err != nil {
			return nil, err
		}
		windows = append(windows, window)
	}

	return windows, nil
}

func parseWindow(row []string, file string, line, year int) (DeploymentWindow, error) {
	if len(row) != deploymentColumns {
		return DeploymentWindow{}, &MalformedRecordError{
			File:  file,
			Line:  line,
			Field: "record",
			Cause: fmt.Errorf("expected %d columns, got %d", deploymentColumns, len(row)),
		}
	}

	floatCol := func(col int, name string) (float64, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return 0, &MalformedRecordError{File: file, Line: line, Field: name, Cause: err}
		}
		return v, nil
	}
	intCol := func(col int, name string) (int, error) {
		v, err := strconv.Atoi(strings.TrimSpace(row[col]))
		if err != nil {
			return 0, &MalformedRecordError{File: file, Line: line, Field: name, Cause: err}
		}
		return v, nil
	}

	latDeg, err := floatCol(colLatDeg, "latitude_degrees")
	if err != nil {
		return DeploymentWindow{}, err
	}
	latMin, err := floatCol(colLatMin, "latitude_minutes")
	if err != nil {
		return DeploymentWindow{}, err
	}
	lonDeg, err := floatCol(colLonDeg, "longitude_degrees")
	if err != nil {
		return DeploymentWindow{}, err
	}
	lonMin, err := floatCol(colLonDecMin, "longitude_decimal_minutes")
	if err != nil {
		return DeploymentWindow{}, err
	}

	jdayDep, err := intCol(colJdayDeployed, "julian_day_deployed")
	if err != nil {
		return DeploymentWindow{}, err
	}
	hourDep, err := intCol(colHourDeployed, "hour_deployed")
	if err != nil {
		return DeploymentWindow{}, err
	}
	minDep, err := intCol(colMinDeployed, "minute_deployed")
	if err != nil {
		return DeploymentWindow{}, err
	}
	jdayRec, err := intCol(colJdayRecovered, "julian_day_recovered")
	if err != nil {
		return DeploymentWindow{}, err
	}
	hourRec, err := intCol(colHourRecovered, "hour_recovered")
	if err != nil {
		return DeploymentWindow{}, err
	}
	minRec, err := intCol(colMinRecovered, "minute_recovered")
	if err != nil {
		return DeploymentWindow{}, err
	}

	window := DeploymentWindow{
		Blanket:     strings.TrimSpace(row[colBlanket]),
		Dive:        strings.TrimSpace(row[colDive]),
		Name:        strings.TrimSpace(row[colDeployment]),
		Latitude:    latDeg + latMin/60,
		Longitude:   lonDeg - lonMin/60, // west longitude, kept positive
		DeployedAt:  JulianTime(year, jdayDep, hourDep, minDep),
		RecoveredAt: JulianTime(year, jdayRec, hourRec, minRec),
	}

	if !window.RecoveredAt.After(window.DeployedAt) {
		return DeploymentWindow{}, &InvalidWindowError{File: file, Line: line, Name: window.Name}
	}

	return window, nil
}
