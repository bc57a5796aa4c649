package export

import (
	"bufio"
	"fmt"
	"os"

	"github.com/marinegeo/goldennugget/internal/blanket"
)

// NuggetMeta carries the provenance written into a Golden Nugget header.
type NuggetMeta struct {
	TopLoggerID    string
	BottomLoggerID string
	TopFile        string
	BottomFile     string
	TopOffset      float64
	BottomOffset   float64
}

// WriteNugget writes the full-width Golden Nugget text report for one
// deployment: a header block with instrument provenance, location and
// deployment times, then one row per record with raw counts, resistance,
// and raw/corrected temperature for both sides.
func WriteNugget(path string, meta NuggetMeta, group blanket.WindowGroup) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating nugget output: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	win := group.Window

	fmt.Fprintln(w, "----------------------- Begin Header ---------------------")
	fmt.Fprintf(w, " Blanket Letter             : %s\n", win.Blanket)
	fmt.Fprintf(w, " Blanket Deployment         : %s\n", win.Label())
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Bottom Thermistor ID       : %s\n", meta.BottomLoggerID)
	fmt.Fprintf(w, " Bottom Thermistor Filename : %s\n", meta.BottomFile)
	fmt.Fprintf(w, " Bottom Thermistor Offset   : %1.4f [deg C]\n", meta.BottomOffset)
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Top Thermistor ID          : %s\n", meta.TopLoggerID)
	fmt.Fprintf(w, " Top Thermistor Filename    : %s\n", meta.TopFile)
	fmt.Fprintf(w, " Top Thermistor Offset      : %1.4f [deg C]\n", meta.TopOffset)
	fmt.Fprintln(w, "--------------------------------------------------------")
	fmt.Fprintln(w, " Deployment Location Information")
	fmt.Fprintf(w, " Lat [deg] : %1.6f\n", win.Latitude)
	fmt.Fprintf(w, " Lon [deg] : %1.6f\n", win.Longitude)
	fmt.Fprintln(w, "--------------------------------------------------------")
	fmt.Fprintln(w, " Deployment Time Information")
	fmt.Fprintf(w, " Date/Time Deployed  : %s\n", fmtTime(win.DeployedAt))
	fmt.Fprintf(w, " Date/Time Recovered : %s\n", fmtTime(win.RecoveredAt))
	fmt.Fprintln(w, "-------------------------- End Header -------------------")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Date-Time              Bottom   Bottom     Bottom   Bottom     Top      Top        Top      Top")
	fmt.Fprintln(w, "                         [raw]    [ohm]      T[C]     T(offset)  [raw]    [ohm]      T[C]     T(offset)")

	for _, r := range group.Records {
		fmt.Fprintf(w, "%s    %6d  %9.3f  %8.4f  %8.4f   %6d  %9.3f  %8.4f  %8.4f\n",
			r.Timestamp.UTC().Format("02-Jan-2006 15:04:05"),
			r.Bottom.Raw, r.Bottom.Resistance, r.Bottom.Temperature, r.BottomCorrected,
			r.Top.Raw, r.Top.Resistance, r.Top.Temperature, r.TopCorrected)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing nugget output: %w", err)
	}
	return nil
}
