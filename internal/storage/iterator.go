package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ReaderOption narrows the record range an iterator covers.
type ReaderOption func(*RecordIterator)

// WithStartTime excludes records before startTime.
func WithStartTime(startTime time.Time) ReaderOption {
	return func(i *RecordIterator) {
		i.startTime = &startTime
	}
}

// WithEndTime excludes records after endTime.
func WithEndTime(endTime time.Time) ReaderOption {
	return func(i *RecordIterator) {
		i.endTime = &endTime
	}
}

// WithTimeRange restricts the iterator to [startTime, endTime].
func WithTimeRange(startTime, endTime time.Time) ReaderOption {
	return func(i *RecordIterator) {
		i.startTime = &startTime
		i.endTime = &endTime
	}
}

// RecordIterator provides streaming iteration over the archived records
// of one run. Use from a single goroutine and close after use.
type RecordIterator struct {
	rows *sql.Rows

	startTime *time.Time
	endTime   *time.Time

	current Record
	err     error
}

func newRecordIterator(ctx context.Context, db *sql.DB, runID int64, opts ...ReaderOption) (*RecordIterator, error) {
	it := &RecordIterator{}
	for _, opt := range opts {
		opt(it)
	}

	query := selectRecordsSQL
	args := []any{runID}
	if it.startTime != nil {
		query += " AND timestamp >= ?"
		args = append(args, it.startTime.UTC())
	}
	if it.endTime != nil {
		query += " AND timestamp <= ?"
		args = append(args, it.endTime.UTC())
	}
	query += " ORDER BY timestamp"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}

	it.rows = rows
	return it, nil
}

// Next advances to the next record.
func (it *RecordIterator) Next() bool {
	if it.err != nil || !it.rows.Next() {
		return false
	}

	var r Record
	if err := it.rows.Scan(&r.Timestamp, &r.TopTemperature, &r.BottomTemperature, &r.Differential); err != nil {
		it.err = err
		return false
	}

	it.current = r
	return true
}

// Current returns the record the iterator is positioned on.
func (it *RecordIterator) Current() Record {
	return it.current
}

// Error returns any error that occurred during iteration.
func (it *RecordIterator) Error() error {
	if it.err != nil {
		return it.err
	}
	return it.rows.Err()
}

// Close releases the database resources.
func (it *RecordIterator) Close() error {
	return it.rows.Close()
}
