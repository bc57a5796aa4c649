package blanket

import "time"

// datenumEpoch is the MATLAB datenum value of 1970-01-01 00:00:00 UTC.
const datenumEpoch = 719529.0

// JulianTime rebuilds an absolute instant from the (Julian day, hour,
// minute) triple used by the deployment metadata format. Julian day 1 is
// January 1 of the given year. All instants are UTC.
func JulianTime(year, day, hour, min int) time.Time {
	return time.Date(year, time.January, 1, hour, min, 0, 0, time.UTC).AddDate(0, 0, day-1)
}

// Datenum converts an instant to the MATLAB datenum encoding (fractional
// days since year zero) used by the .mat export.
func Datenum(t time.Time) float64 {
	return datenumEpoch + float64(t.UnixMilli())/86400000.0
}
