package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteNugget(t *testing.T) {
	group := testGroup()
	meta := NuggetMeta{
		TopLoggerID:    "0000101",
		BottomLoggerID: "0000102",
		TopFile:        "top.dat",
		BottomFile:     "bottom.dat",
		TopOffset:      0.05,
		BottomOffset:   -0.03,
	}

	path := filepath.Join(t.TempDir(), "dep1.dat")
	require.NoError(t, WriteNugget(path, meta, group))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(string(raw), "\n")

	assert.Equal(t, "----------------------- Begin Header ---------------------", lines[0])
	assert.Contains(t, string(raw), " Blanket Letter             : A")
	assert.Contains(t, string(raw), " Blanket Deployment         : 4135_A_dep1")
	assert.Contains(t, string(raw), " Bottom Thermistor ID       : 0000102")
	assert.Contains(t, string(raw), " Bottom Thermistor Offset   : -0.0300 [deg C]")
	assert.Contains(t, string(raw), " Top Thermistor ID          : 0000101")
	assert.Contains(t, string(raw), " Top Thermistor Offset      : 0.0500 [deg C]")
	assert.Contains(t, string(raw), " Lat [deg] : 47.500000")
	assert.Contains(t, string(raw), " Lon [deg] : 128.750000")
	assert.Contains(t, string(raw), " Date/Time Deployed  : 2003-02-14 06:00:00")
	assert.Contains(t, string(raw), " Date/Time Recovered : 2003-02-15 18:00:00")

	// Fixed-width data rows, bottom columns before top.
	assert.Contains(t, string(raw),
		"14-Feb-2003 12:00:00      5120  10345.125    2.0800    2.0500     5100  10250.500    2.1000    2.1500")

	// Two records, two data rows after the two-line column header.
	var dataRows int
	for _, line := range lines {
		if strings.HasPrefix(line, "14-Feb-2003") {
			dataRows++
		}
	}
	assert.Equal(t, 2, dataRows)
}

func TestWriteNuggetBadPath(t *testing.T) {
	err := WriteNugget(filepath.Join(t.TempDir(), "missing", "out.dat"), NuggetMeta{}, testGroup())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating nugget output")
}
