package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	domainerrors "go-wood-dashboard/internal/errors"
	"go-wood-dashboard/internal/model"
)

// Store keeps report runs, section diagnostics and exports in sqlite.
type Store struct {
	db *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		page TEXT,
		status TEXT,
		sections INTEGER,
		failed INTEGER,
		created_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		section TEXT,
		code TEXT,
		message TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		run_id TEXT,
		page TEXT,
		section TEXT,
		format TEXT,
		path TEXT,
		rows INTEGER,
		created_at DATETIME
	);`,
	`CREATE TABLE IF NOT EXISTS aggregates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		export_id TEXT,
		row_index INTEGER,
		key TEXT,
		value TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_run_errors_run ON run_errors(run_id);`,
	`CREATE INDEX IF NOT EXISTS idx_aggregates_export ON aggregates(export_id);`,
}

// Open opens the database at path and creates missing tables.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a rendered page run.
func (s *Store) SaveRun(ctx context.Context, run model.RunRecord) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, page, status, sections, failed, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Page, run.Status, run.Sections, run.Failed, run.CreatedAt)
	return err
}

// SaveSectionErrors records the diagnostics of the failed sections of a run.
func (s *Store) SaveSectionErrors(ctx context.Context, errs []model.SectionError) error {
	if len(errs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_errors (run_id, section, code, message, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range errs {
		created := e.CreatedAt
		if created.IsZero() {
			created = now
		}
		if _, err := stmt.ExecContext(ctx, e.RunID, e.Section, e.Code, e.Message, created); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRuns returns runs, newest first. limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	query := `SELECT id, page, status, sections, failed, created_at FROM runs ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []model.RunRecord{}
	for rows.Next() {
		var r model.RunRecord
		if err := rows.Scan(&r.ID, &r.Page, &r.Status, &r.Sections, &r.Failed, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun fetches one run.
func (s *Store) GetRun(ctx context.Context, id string) (model.RunRecord, error) {
	r := model.RunRecord{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT page, status, sections, failed, created_at FROM runs WHERE id = ?`, id).
		Scan(&r.Page, &r.Status, &r.Sections, &r.Failed, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return r, domainerrors.NotFound(fmt.Sprintf("run %s not found", id))
	}
	return r, err
}

// RunErrors returns the section diagnostics of a run.
func (s *Store) RunErrors(ctx context.Context, runID string) ([]model.SectionError, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT section, code, message, created_at FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	errs := []model.SectionError{}
	for rows.Next() {
		e := model.SectionError{RunID: runID}
		if err := rows.Scan(&e.Section, &e.Code, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}

// SaveExport stores export metadata.
func (s *Store) SaveExport(ctx context.Context, exp model.ExportRecord) error {
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exports (id, run_id, page, section, format, path, rows, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		exp.ID, exp.RunID, exp.Page, exp.Section, exp.Format, exp.Path, exp.Rows, exp.CreatedAt)
	return err
}

// GetExport fetches export metadata.
func (s *Store) GetExport(ctx context.Context, id string) (model.ExportRecord, error) {
	exp := model.ExportRecord{ID: id}
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, page, section, format, path, rows, created_at FROM exports WHERE id = ?`, id).
		Scan(&exp.RunID, &exp.Page, &exp.Section, &exp.Format, &exp.Path, &exp.Rows, &exp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return exp, domainerrors.NotFound(fmt.Sprintf("export %s not found", id))
	}
	return exp, err
}

// SaveAggregates stores every row of table under exportID. The first column is the row key;
// the row itself is kept as a JSON object keyed by column name.
func (s *Store) SaveAggregates(ctx context.Context, exportID string, table model.Table) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO aggregates (export_id, row_index, key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, row := range table.Rows {
		obj := make(map[string]any, len(table.Columns))
		for j, col := range table.Columns {
			if j < len(row) {
				obj[col] = row[j]
			}
		}
		value, err := json.Marshal(obj)
		if err != nil {
			return 0, err
		}
		var key string
		if len(row) > 0 {
			key = fmt.Sprint(row[0])
		}
		if _, err := stmt.ExecContext(ctx, exportID, i, key, string(value)); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(table.Rows), nil
}

// Aggregates returns the rows stored for an export as decoded JSON objects, in row order.
func (s *Store) Aggregates(ctx context.Context, exportID string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT value FROM aggregates WHERE export_id = ? ORDER BY row_index`, exportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, err
		}
		out = append(out, obj)
	}
	return out, rows.Err()
}
