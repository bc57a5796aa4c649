package blanket

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// OffsetTable maps a logger ID to its additive calibration offset in
// degrees Celsius. Built once per run and read-only afterwards.
type OffsetTable map[string]float64

// LoadOffsets reads the offset calibration file: CSV, two columns per row
// (logger ID, offset in degrees Celsius), no header row. A logger ID may
// repeat only with an identical value.
func LoadOffsets(path string) (OffsetTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening offset file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading offset file %s: %w", path, err)
	}

	table := make(OffsetTable, len(rows))
	for i, row := range rows {
		line := i + 1
		if len(row) != 2 {
			return nil, &MalformedRecordError{
				File:  path,
				Line:  line,
				Field: "record",
				Cause: fmt.Errorf("expected 2 columns, got %d", len(row)),
			}
		}

		id := NormalizeLoggerID(row[0])
		if id == "" {
			return nil, &MalformedRecordError{File: path, Line: line, Field: "logger_id"}
		}

		offset, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, &MalformedRecordError{File: path, Line: line, Field: "offset", Cause: err}
		}

		if existing, ok := table[id]; ok && existing != offset {
			return nil, &DuplicateLoggerIDError{LoggerID: id, Existing: existing, Conflict: offset}
		}
		table[id] = offset
	}

	return table, nil
}

// Offset resolves the calibration offset for a logger ID.
func (t OffsetTable) Offset(loggerID string) (float64, error) {
	offset, ok := t[NormalizeLoggerID(loggerID)]
	if !ok {
		return 0, &UnknownLoggerIDError{LoggerID: loggerID}
	}
	return offset, nil
}

// NormalizeLoggerID keeps the 7 significant characters of a logger ID.
// Some ANTARES units append a revision character to the identifier printed
// in the .dat header; the offset table is keyed without it.
func NormalizeLoggerID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 7 {
		id = id[:7]
	}
	return id
}
