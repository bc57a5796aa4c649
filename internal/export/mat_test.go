package export

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marinegeo/goldennugget/internal/blanket"
)

type matVariable struct {
	name string
	rows int
	cols int
	data []float64
}

// readMatVariables decodes the little-endian miMATRIX elements following
// the 128-byte header, enough to verify what WriteMat produced.
func readMatVariables(t *testing.T, raw []byte) []matVariable {
	t.Helper()

	r := bytes.NewReader(raw[128:])
	var variables []matVariable

	readTag := func() (uint32, uint32) {
		var elementType, size uint32
		require.NoError(t, binary.Read(r, binary.LittleEndian, &elementType))
		require.NoError(t, binary.Read(r, binary.LittleEndian, &size))
		return elementType, size
	}

	for r.Len() > 0 {
		elementType, _ := readTag()
		require.EqualValues(t, miMATRIX, elementType)

		flagsType, flagsSize := readTag()
		require.EqualValues(t, miUINT32, flagsType)
		require.EqualValues(t, 8, flagsSize)
		var class, reserved uint32
		require.NoError(t, binary.Read(r, binary.LittleEndian, &class))
		require.NoError(t, binary.Read(r, binary.LittleEndian, &reserved))
		require.EqualValues(t, mxDoubleClass, class&0xff)

		dimsType, dimsSize := readTag()
		require.EqualValues(t, miINT32, dimsType)
		require.EqualValues(t, 8, dimsSize)
		var rows, cols int32
		require.NoError(t, binary.Read(r, binary.LittleEndian, &rows))
		require.NoError(t, binary.Read(r, binary.LittleEndian, &cols))

		nameType, nameSize := readTag()
		require.EqualValues(t, miINT8, nameType)
		name := make([]byte, pad8(int(nameSize)))
		_, err := r.Read(name)
		require.NoError(t, err)

		dataType, dataSize := readTag()
		require.EqualValues(t, miDOUBLE, dataType)
		data := make([]float64, dataSize/8)
		require.NoError(t, binary.Read(r, binary.LittleEndian, &data))

		variables = append(variables, matVariable{
			name: string(name[:nameSize]),
			rows: int(rows),
			cols: int(cols),
			data: data,
		})
	}

	return variables
}

func TestWriteMat(t *testing.T) {
	group := testGroup()
	path := filepath.Join(t.TempDir(), "dep1.mat")
	require.NoError(t, WriteMat(path, group))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 128)

	// Header: descriptive text, version 0x0100, little-endian marker.
	assert.True(t, bytes.HasPrefix(raw, []byte(matHeaderText)))
	assert.Equal(t, uint16(0x0100), binary.LittleEndian.Uint16(raw[124:126]))
	assert.Equal(t, byte('I'), raw[126])
	assert.Equal(t, byte('M'), raw[127])

	variables := readMatVariables(t, raw)
	require.Len(t, variables, 8)

	byName := make(map[string]matVariable, len(variables))
	var names []string
	for _, v := range variables {
		byName[v.name] = v
		names = append(names, v.name)
	}
	assert.Equal(t, []string{
		"DateTime", "Top", "Bot", "Differential",
		"Latitude", "Longitude", "DeployTime", "RecoverTime",
	}, names)

	for _, name := range []string{"DateTime", "Top", "Bot", "Differential"} {
		v := byName[name]
		assert.Equal(t, 2, v.rows, name)
		assert.Equal(t, 1, v.cols, name)
		assert.Len(t, v.data, 2, name)
	}
	for _, name := range []string{"Latitude", "Longitude", "DeployTime", "RecoverTime"} {
		v := byName[name]
		assert.Equal(t, 1, v.rows, name)
		assert.Equal(t, 1, v.cols, name)
	}

	first := group.Records[0]
	assert.InDelta(t, blanket.Datenum(first.Timestamp), byName["DateTime"].data[0], 1e-9)
	assert.InDelta(t, first.TopCorrected, byName["Top"].data[0], 1e-12)
	assert.InDelta(t, first.BottomCorrected, byName["Bot"].data[0], 1e-12)
	assert.InDelta(t, first.Differential, byName["Differential"].data[0], 1e-12)
	assert.InDelta(t, 47.5, byName["Latitude"].data[0], 1e-12)
	assert.InDelta(t, 128.75, byName["Longitude"].data[0], 1e-12)
	assert.InDelta(t, blanket.Datenum(group.Window.DeployedAt), byName["DeployTime"].data[0], 1e-9)
	assert.InDelta(t, blanket.Datenum(group.Window.RecoveredAt), byName["RecoverTime"].data[0], 1e-9)
}

func TestWriteMatEmptyGroup(t *testing.T) {
	group := testGroup()
	group.Records = nil

	path := filepath.Join(t.TempDir(), "empty.mat")
	require.NoError(t, WriteMat(path, group))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	variables := readMatVariables(t, raw)
	require.Len(t, variables, 8)
	assert.Equal(t, 0, variables[0].rows)
	assert.Empty(t, variables[0].data)
}
