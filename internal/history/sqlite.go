package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"share/internal/history/migrations"
	"share/internal/share"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteHistory implements share.HistoryStore on SQLite.
type SQLiteHistory struct {
	db   *sql.DB
	path string
}

var _ share.HistoryStore = (*SQLiteHistory)(nil)

// NewSQLiteHistory opens (creating if needed) the history database at path
// and migrates it to the latest schema. path may be ":memory:".
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return &SQLiteHistory{db: db, path: path}, nil
}

// OpenConnection opens a SQLite connection with foreign keys enabled.
// An in-memory database is limited to one connection, since every new
// connection would see its own empty database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return db, nil
}

// RecordBatch stores the batch row and its file rows in one transaction.
func (h *SQLiteHistory) RecordBatch(summary *share.Summary) error {
	if summary == nil || summary.ID == "" {
		return fmt.Errorf("batch summary has no ID")
	}
	ctx := context.Background()

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (id, is_folder, file_count, failed_count, total_bytes, uploaded_bytes, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID,
		summary.IsFolder,
		len(summary.Results),
		summary.Failed(),
		summary.Progress.Total,
		summary.Progress.Confirmed,
		formatTime(summary.StartedAt),
		formatTime(summary.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO batch_files (batch_id, position, name, relative_path, size, status_code, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing file insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range summary.Results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		if _, err := stmt.ExecContext(ctx, summary.ID, i, r.Entry.Name, r.Entry.RelativePath, r.Entry.Size, r.StatusCode(), errText); err != nil {
			return fmt.Errorf("inserting file %s: %w", r.Entry.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch: %w", err)
	}
	return nil
}

const batchColumns = `id, is_folder, file_count, failed_count, total_bytes, uploaded_bytes, started_at, finished_at`

// RecentBatches returns up to limit batches, newest first.
func (h *SQLiteHistory) RecentBatches(limit int) ([]*share.BatchRecord, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := h.db.Query(`SELECT `+batchColumns+` FROM batches ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batches: %w", err)
	}
	defer rows.Close()

	var batches []*share.BatchRecord
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading batches: %w", err)
	}
	return batches, nil
}

// FindBatch returns the batch with id, or nil if there is none.
func (h *SQLiteHistory) FindBatch(id string) (*share.BatchRecord, error) {
	row := h.db.QueryRow(`SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	b, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// BatchFiles returns a batch's files in upload order.
func (h *SQLiteHistory) BatchFiles(batchID string) ([]*share.BatchFileRecord, error) {
	rows, err := h.db.Query(`
		SELECT position, name, relative_path, size, status_code, error
		FROM batch_files WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return nil, fmt.Errorf("querying batch files: %w", err)
	}
	defer rows.Close()

	var files []*share.BatchFileRecord
	for rows.Next() {
		f := &share.BatchFileRecord{}
		if err := rows.Scan(&f.Position, &f.Name, &f.RelativePath, &f.Size, &f.StatusCode, &f.Error); err != nil {
			return nil, fmt.Errorf("scanning batch file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading batch files: %w", err)
	}
	return files, nil
}

// Close closes the database connection.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(s scanner) (*share.BatchRecord, error) {
	var (
		b                 share.BatchRecord
		started, finished string
	)
	err := s.Scan(&b.ID, &b.IsFolder, &b.FileCount, &b.FailedCount, &b.TotalBytes, &b.UploadedBytes, &started, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning batch: %w", err)
	}
	if b.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if b.FinishedAt, err = parseTime(finished); err != nil {
		return nil, err
	}
	return &b, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}
