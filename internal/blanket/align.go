package blanket

import (
	"fmt"
	"slices"
	"time"
)

// Align merges the top and bottom thermistor series into offset-corrected,
// deployment-windowed records.
//
// Each side's calibration offset is resolved from the offset table by
// logger ID and added to every raw temperature. The two corrected streams
// are then sort-merged by timestamp: with tolerance zero only identical
// timestamps pair; with a positive tolerance each sample pairs with its
// nearest neighbour on the other side, at most once, when the clocks
// disagree by no more than the tolerance. Samples left without a partner
// are counted, not fatal.
//
// Paired records are assigned to the deployment window whose closed
// [DeployedAt, RecoveredAt] interval contains their timestamp. Windows
// must not overlap. Records outside every window are counted and dropped.
func Align(top, bottom *LoggerSeries, offsets OffsetTable, windows []DeploymentWindow, tolerance time.Duration) (*Dataset, error) {
	if tolerance < 0 {
		return nil, fmt.Errorf("pairing tolerance must not be negative, got %s", tolerance)
	}

	topOffset, err := offsets.Offset(top.LoggerID)
	if err != nil {
		return nil, fmt.Errorf("resolving top thermistor offset: %w", err)
	}
	bottomOffset, err := offsets.Offset(bottom.LoggerID)
	if err != nil {
		return nil, fmt.Errorf("resolving bottom thermistor offset: %w", err)
	}

	ordered, err := orderWindows(windows)
	if err != nil {
		return nil, err
	}

	dataset := Dataset{
		TopLoggerID:    top.LoggerID,
		BottomLoggerID: bottom.LoggerID,
		TopOffset:      topOffset,
		BottomOffset:   bottomOffset,
	}

	records := pair(&dataset, sortSamples(top.Samples), sortSamples(bottom.Samples), tolerance)

	dataset.Groups = make([]WindowGroup, len(ordered))
	for i, w := range ordered {
		dataset.Groups[i] = WindowGroup{Window: w}
	}

	// Both records and windows are in ascending time order, and windows do
	// not overlap, so a single forward scan assigns every record.
	wi := 0
	for _, rec := range records {
		for wi < len(ordered) && rec.Timestamp.After(ordered[wi].RecoveredAt) {
			wi++
		}
		if wi < len(ordered) && ordered[wi].Contains(rec.Timestamp) {
			dataset.Groups[wi].Records = append(dataset.Groups[wi].Records, rec)
			continue
		}
		dataset.OutOfWindow++
	}

	return &dataset, nil
}

// pair sort-merges the two sample streams, applying the resolved offsets
// and deriving the top−bottom differential. Unpaired samples are tallied
// on the dataset.
func pair(d *Dataset, top, bottom []Sample, tolerance time.Duration) []CorrectedRecord {
	var records []CorrectedRecord

	i, j := 0, 0
	for i < len(top) && j < len(bottom) {
		dt := top[i].Timestamp.Sub(bottom[j].Timestamp)

		if absDuration(dt) <= tolerance {
			// The next sample on either side may sit closer to the candidate
			// on the other; prefer the nearest neighbour.
			if j+1 < len(bottom) && absDuration(top[i].Timestamp.Sub(bottom[j+1].Timestamp)) < absDuration(dt) {
				d.UnmatchedBottom++
				j++
				continue
			}
			if i+1 < len(top) && absDuration(top[i+1].Timestamp.Sub(bottom[j].Timestamp)) < absDuration(dt) {
				d.UnmatchedTop++
				i++
				continue
			}

			topCorrected := top[i].Temperature + d.TopOffset
			bottomCorrected := bottom[j].Temperature + d.BottomOffset
			records = append(records, CorrectedRecord{
				Timestamp:       top[i].Timestamp,
				Top:             top[i],
				Bottom:          bottom[j],
				TopCorrected:    topCorrected,
				BottomCorrected: bottomCorrected,
				Differential:    topCorrected - bottomCorrected,
			})
			i++
			j++
			continue
		}

		if dt < 0 {
			d.UnmatchedTop++
			i++
		} else {
			d.UnmatchedBottom++
			j++
		}
	}
	d.UnmatchedTop += len(top) - i
	d.UnmatchedBottom += len(bottom) - j

	return records
}

// orderWindows returns the windows sorted by deployment time, rejecting
// any pair of windows whose closed intervals intersect.
func orderWindows(windows []DeploymentWindow) ([]DeploymentWindow, error) {
	ordered := slices.Clone(windows)
	slices.SortFunc(ordered, func(a, b DeploymentWindow) int {
		return a.DeployedAt.Compare(b.DeployedAt)
	})

	for i := 1; i < len(ordered); i++ {
		if !ordered[i].DeployedAt.After(ordered[i-1].RecoveredAt) {
			return nil, &OverlappingWindowError{A: ordered[i-1].Name, B: ordered[i].Name}
		}
	}

	return ordered, nil
}

func sortSamples(samples []Sample) []Sample {
	sorted := slices.Clone(samples)
	slices.SortFunc(sorted, func(a, b Sample) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
