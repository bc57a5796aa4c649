// Package export serializes corrected, windowed blanket datasets to their
// output formats: CSV, the fixed-format Golden Nugget text report, and a
// MATLAB Level-5 MAT-file for array-analysis tools.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/marinegeo/goldennugget/internal/blanket"
)

const timestampLayout = "2006-01-02 15:04:05"

// WriteCSV writes one corrected record per row, joined with the window's
// identity and location. Output is deterministic: reruns over unchanged
// inputs produce byte-identical files. Any existing file is truncated.
func WriteCSV(path string, group blanket.WindowGroup) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"timestamp_utc",
		"top_temperature_c",
		"bottom_temperature_c",
		"differential_c",
		"latitude",
		"longitude",
		"blanket",
		"dive",
		"deployment",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	win := group.Window
	for _, r := range group.Records {
		row := []string{
			fmtTime(r.Timestamp),
			fmtFloat(r.TopCorrected),
			fmtFloat(r.BottomCorrected),
			fmtFloat(r.Differential),
			fmtFloat(win.Latitude),
			fmtFloat(win.Longitude),
			win.Blanket,
			win.Dive,
			win.Name,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
