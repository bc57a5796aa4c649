package blanket

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOffsets(t *testing.T) {
	t.Run("valid table", func(t *testing.T) {
		path := writeFixture(t, "offsets.csv", "0000014,0.0500\n0000015,-0.0300\n")

		table, err := LoadOffsets(path)
		require.NoError(t, err)
		require.Len(t, table, 2)

		offset, err := table.Offset("0000014")
		require.NoError(t, err)
		assert.InDelta(t, 0.05, offset, 1e-9)
	})

	t.Run("lookup normalizes the logger ID", func(t *testing.T) {
		path := writeFixture(t, "offsets.csv", "0000014,0.0500\n")

		table, err := LoadOffsets(path)
		require.NoError(t, err)

		offset, err := table.Offset("0000014A")
		require.NoError(t, err)
		assert.InDelta(t, 0.05, offset, 1e-9)
	})

	t.Run("unknown logger ID", func(t *testing.T) {
		path := writeFixture(t, "offsets.csv", "0000014,0.0500\n")

		table, err := LoadOffsets(path)
		require.NoError(t, err)

		_, err = table.Offset("9999999")
		var unknown *UnknownLoggerIDError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "9999999", unknown.LoggerID)
	})

	t.Run("duplicate with conflicting value", func(t *testing.T) {
		path := writeFixture(t, "offsets.csv", "0000014,0.0500\n0000014,0.0600\n")

		_, err := LoadOffsets(path)
		var dup *DuplicateLoggerIDError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "0000014", dup.LoggerID)
		assert.InDelta(t, 0.05, dup.Existing, 1e-9)
		assert.InDelta(t, 0.06, dup.Conflict, 1e-9)
	})

	t.Run("duplicate with identical value is tolerated", func(t *testing.T) {
		path := writeFixture(t, "offsets.csv", "0000014,0.0500\n0000014,0.0500\n")

		table, err := LoadOffsets(path)
		require.NoError(t, err)
		assert.Len(t, table, 1)
	})

	t.Run("non-numeric offset", func(t *testing.T) {
		path := writeFixture(t, "offsets.csv", "0000014,warm\n")

		_, err := LoadOffsets(path)
		var malformed *MalformedRecordError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, 1, malformed.Line)
		assert.Equal(t, "offset", malformed.Field)
	})

	t.Run("wrong column count", func(t *testing.T) {
		path := writeFixture(t, "offsets.csv", "0000014,0.05,extra\n")

		_, err := LoadOffsets(path)
		var malformed *MalformedRecordError
		require.ErrorAs(t, err, &malformed)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadOffsets(filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
	})
}
