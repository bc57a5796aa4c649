package blanket

import "fmt"

// MalformedRecordError reports a row in an input file that could not be
// decomposed into its expected fields. File, Line and Field locate the
// offending input for the operator.
type MalformedRecordError struct {
	File  string
	Line  int
	Field string
	Cause error
}

func (e *MalformedRecordError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s:%d: malformed record (field %q): %v", e.File, e.Line, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s:%d: malformed record (field %q)", e.File, e.Line, e.Field)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Cause
}

// UnknownLoggerIDError reports a logger ID found in a data file that has no
// entry in the offset table. Fatal: uncorrected data would silently bias
// the differential.
type UnknownLoggerIDError struct {
	LoggerID string
}

func (e *UnknownLoggerIDError) Error() string {
	return fmt.Sprintf("no calibration offset for logger %q", e.LoggerID)
}

// DuplicateLoggerIDError reports a logger ID that appears more than once in
// the offset table with conflicting values.
type DuplicateLoggerIDError struct {
	LoggerID string
	Existing float64
	Conflict float64
}

func (e *DuplicateLoggerIDError) Error() string {
	return fmt.Sprintf("duplicate offset for logger %q: %g conflicts with %g", e.LoggerID, e.Conflict, e.Existing)
}

// InvalidWindowError reports a deployment window whose recovery instant is
// not after its deployment instant.
type InvalidWindowError struct {
	File string
	Line int
	Name string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("%s:%d: deployment %q recovered before (or at) deployment time", e.File, e.Line, e.Name)
}

// OverlappingWindowError reports two deployment windows whose closed
// intervals intersect. Window intervals must partition the record stream.
type OverlappingWindowError struct {
	A string
	B string
}

func (e *OverlappingWindowError) Error() string {
	return fmt.Sprintf("deployment windows %q and %q overlap", e.A, e.B)
}
