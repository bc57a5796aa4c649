// Package antares reads the raw .dat files produced by the ANTARES
// temperature logger software. Each file starts with a banner line of 70
// '#' characters, followed by a 16-line header carrying the logger
// identity and calibration constants, followed by one sample per line:
//
//	2003 07 16 15 00 04    32114    45981.044       16.088
//
// (year month day hour minute second, raw ADC counts, thermistor
// resistance in ohm, temperature in degrees Celsius).
package antares

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/marinegeo/goldennugget/internal/blanket"
)

const (
	banner      = "######################################################################"
	headerLines = 16

	loggerIDPrefix = "## LoggerIdentifier"
)

// ParseFile reads and parses a logger .dat file. Each call re-reads the
// file from disk, so the sequence is restartable.
func ParseFile(path string) (*blanket.LoggerSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening logger file: %w", err)
	}
	defer f.Close()

	return Parse(f, path)
}

// Parse parses logger output from r. name is used in error messages only.
func Parse(r io.Reader, name string) (*blanket.LoggerSeries, error) {
	scanner := bufio.NewScanner(r)

	var series blanket.LoggerSeries
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()

		if line == 1 {
			if text != banner {
				return nil, fmt.Errorf("%s is not an ANTARES logger file: missing banner line", name)
			}
			continue
		}

		if line <= headerLines {
			if strings.HasPrefix(text, loggerIDPrefix) {
				series.LoggerID = blanket.NormalizeLoggerID(headerValue(text))
			}
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		sample, err := parseSample(text, name, line)
		if err != nil {
			return nil, err
		}
		series.Samples = append(series.Samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	if series.LoggerID == "" {
		return nil, fmt.Errorf("%s: header carries no LoggerIdentifier", name)
	}

	return &series, nil
}

// headerValue extracts the value part of a "## Key : value" header line.
func headerValue(text string) string {
	if i := strings.Index(text, ":"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

func parseSample(text, file string, line int) (blanket.Sample, error) {
	fields := strings.Fields(text)
	if len(fields) != 9 {
		return blanket.Sample{}, &blanket.MalformedRecordError{
			File:  file,
			Line:  line,
			Field: "record",
			Cause: fmt.Errorf("expected 9 fields, got %d", len(fields)),
		}
	}

	var parts [6]int
	names := [6]string{"year", "month", "day", "hour", "minute", "second"}
	for i := range parts {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return blanket.Sample{}, &blanket.MalformedRecordError{File: file, Line: line, Field: names[i], Cause: err}
		}
		parts[i] = v
	}

	raw, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return blanket.Sample{}, &blanket.MalformedRecordError{File: file, Line: line, Field: "raw", Cause: err}
	}

	resistance, err := strconv.ParseFloat(fields[7], 64)
	if err != nil {
		return blanket.Sample{}, &blanket.MalformedRecordError{File: file, Line: line, Field: "resistance", Cause: err}
	}

	temperature, err := strconv.ParseFloat(fields[8], 64)
	if err != nil {
		return blanket.Sample{}, &blanket.MalformedRecordError{File: file, Line: line, Field: "temperature", Cause: err}
	}

	return blanket.Sample{
		Timestamp:   time.Date(parts[0], time.Month(parts[1]), parts[2], parts[3], parts[4], parts[5], 0, time.UTC),
		Raw:         raw,
		Resistance:  resistance,
		Temperature: temperature,
	}, nil
}
