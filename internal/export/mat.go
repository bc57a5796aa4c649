package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/marinegeo/goldennugget/internal/blanket"
)

// MATLAB Level-5 MAT-file constants. The format is a sequence of tagged
// data elements after a 128-byte header; each numeric variable is a
// miMATRIX element wrapping array flags, dimensions, name and data
// subelements, all padded to 8-byte boundaries.
const (
	miINT32  = 5
	miUINT32 = 6
	miINT8   = 1
	miDOUBLE = 9
	miMATRIX = 14

	mxDoubleClass = 6

	matHeaderText = "MATLAB 5.0 MAT-file, Created by: goldennugget"
)

// WriteMat writes the corrected dataset of one deployment window as a
// MATLAB Level-5 MAT-file. Time is encoded as MATLAB datenum so the
// variables load directly into array-analysis tools:
//
//	DateTime, Top, Bot, Differential  column vectors, one row per record
//	Latitude, Longitude               scalars, decimal degrees
//	DeployTime, RecoverTime           scalars, datenum
func WriteMat(path string, group blanket.WindowGroup) error {
	n := len(group.Records)
	datetimes := make([]float64, n)
	tops := make([]float64, n)
	bottoms := make([]float64, n)
	diffs := make([]float64, n)
	for i, r := range group.Records {
		datetimes[i] = blanket.Datenum(r.Timestamp)
		tops[i] = r.TopCorrected
		bottoms[i] = r.BottomCorrected
		diffs[i] = r.Differential
	}

	win := group.Window
	var buf bytes.Buffer
	writeMatHeader(&buf)

	variables := []struct {
		name string
		data []float64
	}{
		{"DateTime", datetimes},
		{"Top", tops},
		{"Bot", bottoms},
		{"Differential", diffs},
		{"Latitude", []float64{win.Latitude}},
		{"Longitude", []float64{win.Longitude}},
		{"DeployTime", []float64{blanket.Datenum(win.DeployedAt)}},
		{"RecoverTime", []float64{blanket.Datenum(win.RecoveredAt)}},
	}
	for _, v := range variables {
		writeMatrix(&buf, v.name, v.data)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing mat output: %w", err)
	}
	return nil
}

// writeMatHeader emits the 128-byte MAT-file header: 116 bytes of
// descriptive text, an empty subsystem offset, version 0x0100 and the
// little-endian indicator bytes "IM".
func writeMatHeader(buf *bytes.Buffer) {
	text := make([]byte, 116)
	for i := range text {
		text[i] = ' '
	}
	copy(text, matHeaderText)
	buf.Write(text)

	buf.Write(make([]byte, 8)) // subsystem data offset, unused

	binary.Write(buf, binary.LittleEndian, uint16(0x0100))
	buf.WriteByte('I')
	buf.WriteByte('M')
}

// writeMatrix emits one double-precision column vector as a miMATRIX
// element.
func writeMatrix(buf *bytes.Buffer, name string, data []float64) {
	namePadded := pad8(len(name))
	total := 16 + // array flags tag + data
		16 + // dimensions tag + data (2 × int32)
		8 + namePadded + // name tag + padded name
		8 + 8*len(data) // real part tag + doubles

	writeTag(buf, miMATRIX, total)

	// Array flags: class in the low byte, no complex/global/logical bits.
	writeTag(buf, miUINT32, 8)
	binary.Write(buf, binary.LittleEndian, uint32(mxDoubleClass))
	binary.Write(buf, binary.LittleEndian, uint32(0))

	// Dimensions: n×1 column vector.
	writeTag(buf, miINT32, 8)
	binary.Write(buf, binary.LittleEndian, int32(len(data)))
	binary.Write(buf, binary.LittleEndian, int32(1))

	// Array name, zero-padded to an 8-byte boundary.
	writeTag(buf, miINT8, len(name))
	buf.WriteString(name)
	buf.Write(make([]byte, namePadded-len(name)))

	// Real part.
	writeTag(buf, miDOUBLE, 8*len(data))
	for _, v := range data {
		binary.Write(buf, binary.LittleEndian, v)
	}
}

func writeTag(buf *bytes.Buffer, elementType, size int) {
	binary.Write(buf, binary.LittleEndian, uint32(elementType))
	binary.Write(buf, binary.LittleEndian, uint32(size))
}

// pad8 rounds n up to the next multiple of 8.
func pad8(n int) int {
	return (n + 7) &^ 7
}
