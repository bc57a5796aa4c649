// Package storage archives converted blanket datasets in a SQLite
// database so they can be inspected and plotted after the run.
package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/marinegeo/goldennugget/internal/blanket"
)

//go:embed schema.sql
var schemaSQL string

// Store handles archive database operations. Connections are opened
// lazily: a WAL-mode connection for writes and a read-only connection for
// reads, each at most once.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store backed by the SQLite database at dbPath. The file
// and schema are created on first write.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL", s.dbPath))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", s.dbPath))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// CreateRun archives the metadata of one converted deployment window and
// returns its run ID.
func (s *Store) CreateRun(ctx context.Context, dataset *blanket.Dataset, window blanket.DeploymentWindow) (runID int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(
		ctx,
		window.Blanket,
		window.Dive,
		window.Name,
		window.Latitude,
		window.Longitude,
		window.DeployedAt.UTC(),
		window.RecoveredAt.UTC(),
		dataset.TopLoggerID,
		dataset.BottomLoggerID,
		dataset.TopOffset,
		dataset.BottomOffset,
	)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	runID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
	}
	return
}

// StoreRecords archives the corrected records of a run in a single
// transaction.
func (s *Store) StoreRecords(ctx context.Context, runID int64, records []blanket.CorrectedRecord) (err error) {
	if len(records) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	values := make([]interface{}, 0, len(records)*5)

	var sb strings.Builder
	sb.WriteString(insertRecordSQL)

	for i, r := range records {
		values = append(values,
			runID,
			r.Timestamp.UTC(),
			r.TopCorrected,
			r.BottomCorrected,
			r.Differential,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
	}

	if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting records: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Run retrieves a specific archived run by its ID.
func (s *Store) Run(ctx context.Context, id int64) (run *Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var r Run
	if err = scanRun(stmt.QueryRowContext(ctx, id), &r); err != nil {
		err = fmt.Errorf("scanning run: %w", err)
		return
	}

	return &r, nil
}

// Runs returns all archived runs, ordered by creation time.
func (s *Store) Runs(ctx context.Context) (runs []*Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var r Run
		if err = scanRun(rows, &r); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		runs = append(runs, &r)
	}
	err = rows.Err()
	return
}

// ReadRecords creates an iterator over the archived records of a run in
// ascending timestamp order. The iterator must be closed after use.
func (s *Store) ReadRecords(ctx context.Context, runID int64, opts ...ReaderOption) (*RecordIterator, error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}
	return newRecordIterator(ctx, db, runID, opts...)
}

// Close releases both database connections.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner, r *Run) error {
	return row.Scan(
		&r.ID,
		&r.CreatedAt,
		&r.Blanket,
		&r.Dive,
		&r.Deployment,
		&r.Latitude,
		&r.Longitude,
		&r.DeployedAt,
		&r.RecoveredAt,
		&r.TopLoggerID,
		&r.BottomLoggerID,
		&r.TopOffset,
		&r.BottomOffset,
	)
}
