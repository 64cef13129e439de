// Package sqlite implements the history.Store port on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/pagesift/pagesift/internal/history"
	"github.com/pagesift/pagesift/internal/storage/sqlite/migrations"
)

// Store is a SQLite-backed history store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates (or opens) the history database at dbPath and applies pending
// migrations. The parent directory is created if needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for concurrent readers during long processing calls.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate(fsys embed.FS) error {
	if _, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}
		script, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(script)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// Create inserts a new history record.
func (s *Store) Create(ctx context.Context, rec history.Record) error {
	if rec.Status == "" {
		rec.Status = history.StatusPending
	}
	if !rec.Status.Valid() {
		return fmt.Errorf("invalid status %q", rec.Status)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, filename, file_type, created_at, processing_time, status, page_count, result, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Filename, rec.FileType, rec.CreatedAt.Format(time.RFC3339Nano),
		nullString(rec.ProcessingTime), string(rec.Status), rec.PageCount,
		nullString(string(rec.Result)), nullString(rec.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Complete marks a record completed with its serialized result.
func (s *Store) Complete(ctx context.Context, id string, processingTime string, pageCount int, result json.RawMessage) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE history
		SET status = ?, processing_time = ?, page_count = ?, result = ?, error_message = NULL
		WHERE id = ?`,
		string(history.StatusCompleted), processingTime, pageCount, string(result), id,
	)
	if err != nil {
		return fmt.Errorf("completing record: %w", err)
	}
	return requireRow(res)
}

// Fail marks a record failed with the error text.
func (s *Store) Fail(ctx context.Context, id, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE history SET status = ?, error_message = ? WHERE id = ?`,
		string(history.StatusFailed), message, id,
	)
	if err != nil {
		return fmt.Errorf("failing record: %w", err)
	}
	return requireRow(res)
}

// Get returns one record by id.
func (s *Store) Get(ctx context.Context, id string) (history.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, file_type, created_at, processing_time, status, page_count, result, error_message
		FROM history WHERE id = ?`, id)
	return scanRecord(row)
}

// List returns one page of records, newest first.
func (s *Store) List(ctx context.Context, page, pageSize int) (history.Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history").Scan(&total); err != nil {
		return history.Page{}, fmt.Errorf("counting records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, file_type, created_at, status, page_count
		FROM history
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, pageSize, (page-1)*pageSize)
	if err != nil {
		return history.Page{}, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	items := make([]history.ListItem, 0, pageSize)
	for rows.Next() {
		var (
			item      history.ListItem
			createdAt string
			status    string
		)
		if err := rows.Scan(&item.ID, &item.Filename, &item.FileType, &createdAt, &status, &item.PageCount); err != nil {
			return history.Page{}, fmt.Errorf("scanning record: %w", err)
		}
		item.CreatedAt = parseTime(createdAt)
		item.Status = history.Status(status)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return history.Page{}, fmt.Errorf("iterating records: %w", err)
	}

	return history.Page{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return requireRow(res)
}

// DeleteAll removes every record and reports how many were deleted.
func (s *Store) DeleteAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM history")
	if err != nil {
		return 0, fmt.Errorf("deleting records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(n), nil
}

func scanRecord(row *sql.Row) (history.Record, error) {
	var (
		rec            history.Record
		createdAt      string
		processingTime sql.NullString
		status         string
		result         sql.NullString
		errorMessage   sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.Filename, &rec.FileType, &createdAt,
		&processingTime, &status, &rec.PageCount, &result, &errorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return history.Record{}, history.ErrRecordNotFound
	}
	if err != nil {
		return history.Record{}, fmt.Errorf("scanning record: %w", err)
	}

	rec.CreatedAt = parseTime(createdAt)
	rec.ProcessingTime = processingTime.String
	rec.Status = history.Status(status)
	if result.Valid && result.String != "" {
		rec.Result = json.RawMessage(result.String)
	}
	rec.ErrorMessage = errorMessage.String
	return rec, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return history.ErrRecordNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02 15:04:05", s)
	return t
}
