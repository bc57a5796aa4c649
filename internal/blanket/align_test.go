package blanket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(t time.Time, temperature float64) Sample {
	return Sample{Timestamp: t, Temperature: temperature}
}

func windowOf(name string, from, to time.Time) DeploymentWindow {
	return DeploymentWindow{
		Blanket:     "A",
		Dive:        "4135",
		Name:        name,
		Latitude:    47.5,
		Longitude:   128.75,
		DeployedAt:  from,
		RecoveredAt: to,
	}
}

func TestAlign(t *testing.T) {
	noon := JulianTime(2003, 45, 12, 0)
	window := windowOf("dep1", JulianTime(2003, 45, 6, 0), JulianTime(2003, 46, 18, 0))
	offsets := OffsetTable{"101": 0.05, "102": -0.03}

	t.Run("correction and differential", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{sampleAt(noon, 2.10)}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{sampleAt(noon, 2.08)}}

		dataset, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 0)
		require.NoError(t, err)
		require.Len(t, dataset.Groups, 1)
		require.Len(t, dataset.Groups[0].Records, 1)

		rec := dataset.Groups[0].Records[0]
		assert.InDelta(t, 2.15, rec.TopCorrected, 1e-9)
		assert.InDelta(t, 2.05, rec.BottomCorrected, 1e-9)
		assert.InDelta(t, 0.10, rec.Differential, 1e-9)
		assert.Equal(t, noon, rec.Timestamp)
	})

	t.Run("samples outside every window are dropped", func(t *testing.T) {
		late := JulianTime(2003, 47, 0, 0)
		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{sampleAt(noon, 2.10), sampleAt(late, 2.20)}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{sampleAt(noon, 2.08), sampleAt(late, 2.06)}}

		dataset, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, dataset.Records())
		assert.Equal(t, 1, dataset.OutOfWindow)
	})

	t.Run("window boundaries are inclusive", func(t *testing.T) {
		for _, at := range []time.Time{window.DeployedAt, window.RecoveredAt} {
			top := &LoggerSeries{LoggerID: "101", Samples: []Sample{sampleAt(at, 2.10)}}
			bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{sampleAt(at, 2.08)}}

			dataset, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 0)
			require.NoError(t, err)
			assert.Equal(t, 1, dataset.Records())
			assert.Equal(t, 0, dataset.OutOfWindow)
		}
	})

	t.Run("unknown top logger", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "999", Samples: []Sample{sampleAt(noon, 2.10)}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{sampleAt(noon, 2.08)}}

		_, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 0)
		var unknown *UnknownLoggerIDError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "999", unknown.LoggerID)
	})

	t.Run("overlapping windows are rejected", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{sampleAt(noon, 2.10)}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{sampleAt(noon, 2.08)}}
		other := windowOf("dep2", JulianTime(2003, 46, 0, 0), JulianTime(2003, 47, 0, 0))

		_, err := Align(top, bottom, offsets, []DeploymentWindow{window, other}, 0)
		var overlap *OverlappingWindowError
		require.ErrorAs(t, err, &overlap)
	})

	t.Run("strict matching drops disagreeing clocks", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{sampleAt(noon, 2.10)}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{sampleAt(noon.Add(4*time.Second), 2.08)}}

		dataset, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 0)
		require.NoError(t, err)
		assert.Equal(t, 0, dataset.Records())
		assert.Equal(t, 1, dataset.UnmatchedTop)
		assert.Equal(t, 1, dataset.UnmatchedBottom)
	})

	t.Run("tolerance pairs nearest neighbours", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{sampleAt(noon, 2.10)}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{
			sampleAt(noon.Add(-8*time.Second), 1.00),
			sampleAt(noon.Add(2*time.Second), 2.08),
		}}

		dataset, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 10*time.Second)
		require.NoError(t, err)
		require.Equal(t, 1, dataset.Records())

		rec := dataset.Groups[0].Records[0]
		assert.InDelta(t, 2.05, rec.BottomCorrected, 1e-9)
		assert.Equal(t, 1, dataset.UnmatchedBottom)
	})

	t.Run("tolerance prefers the nearer top sample", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{
			sampleAt(noon.Add(-2*time.Second), 1.00),
			sampleAt(noon, 2.10),
		}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{sampleAt(noon, 2.08)}}

		dataset, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 5*time.Second)
		require.NoError(t, err)
		require.Equal(t, 1, dataset.Records())

		rec := dataset.Groups[0].Records[0]
		assert.Equal(t, noon, rec.Timestamp)
		assert.InDelta(t, 2.15, rec.TopCorrected, 1e-9)
		assert.Equal(t, 1, dataset.UnmatchedTop)
		assert.Equal(t, 0, dataset.UnmatchedBottom)
	})

	t.Run("pairs outside tolerance are counted", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{
			sampleAt(noon, 2.10),
			sampleAt(noon.Add(time.Minute), 2.11),
		}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{
			sampleAt(noon.Add(time.Minute), 2.08),
		}}

		dataset, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 5*time.Second)
		require.NoError(t, err)
		assert.Equal(t, 1, dataset.Records())
		assert.Equal(t, 1, dataset.UnmatchedTop)
		assert.Equal(t, 0, dataset.UnmatchedBottom)
	})

	t.Run("unsorted input is ordered by timestamp", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{
			sampleAt(noon.Add(time.Minute), 2.11),
			sampleAt(noon, 2.10),
		}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{
			sampleAt(noon, 2.08),
			sampleAt(noon.Add(time.Minute), 2.09),
		}}

		dataset, err := Align(top, bottom, offsets, []DeploymentWindow{window}, 0)
		require.NoError(t, err)
		require.Equal(t, 2, dataset.Records())

		records := dataset.Groups[0].Records
		assert.True(t, records[0].Timestamp.Before(records[1].Timestamp))
	})

	t.Run("records are grouped by window", func(t *testing.T) {
		second := windowOf("dep2", JulianTime(2003, 50, 0, 0), JulianTime(2003, 51, 0, 0))
		inSecond := JulianTime(2003, 50, 12, 0)

		top := &LoggerSeries{LoggerID: "101", Samples: []Sample{sampleAt(noon, 2.10), sampleAt(inSecond, 2.30)}}
		bottom := &LoggerSeries{LoggerID: "102", Samples: []Sample{sampleAt(noon, 2.08), sampleAt(inSecond, 2.28)}}

		dataset, err := Align(top, bottom, offsets, []DeploymentWindow{second, window}, 0)
		require.NoError(t, err)
		require.Len(t, dataset.Groups, 2)

		// Groups come back ordered by deployment time regardless of the
		// order windows were loaded in.
		assert.Equal(t, "dep1", dataset.Groups[0].Window.Name)
		assert.Equal(t, "dep2", dataset.Groups[1].Window.Name)
		assert.Len(t, dataset.Groups[0].Records, 1)
		assert.Len(t, dataset.Groups[1].Records, 1)
	})

	t.Run("negative tolerance is rejected", func(t *testing.T) {
		top := &LoggerSeries{LoggerID: "101"}
		bottom := &LoggerSeries{LoggerID: "102"}

		_, err := Align(top, bottom, offsets, []DeploymentWindow{window}, -time.Second)
		require.Error(t, err)
	})
}
