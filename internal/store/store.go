// Package store provides SQLite-backed persistence of mirror run history.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// MirrorRun records one completed mirror execution
type MirrorRun struct {
	ID         int64
	UUID       string
	Mode       string // "shell", "cron" or "cfg"
	Site       string
	Remote     string
	Local      string
	Direction  string // "download" or "upload"
	ExitCode   int
	BytesTotal int64
	FileCount  int
	Archive    string // snapshot path when compression was requested
	Status     string // "success", "transfer-error", "failed"
	ErrorMsg   string // cause for failed runs, empty otherwise
	StartTime  time.Time
	EndTime    time.Time
}

// Store provides SQLite-backed persistence
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a new Store, opening the SQLite database and running migrations
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("store initialized", "path", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// CreateMirrorRun inserts a new MirrorRun and sets its ID
func (s *Store) CreateMirrorRun(run *MirrorRun) error {
	const query = `
		INSERT INTO mirror_runs (
			uuid, mode, site, remote, local, direction, exit_code,
			bytes_total, file_count, archive, status, error_message,
			start_time, end_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(
		query,
		run.UUID, run.Mode, run.Site, run.Remote, run.Local, run.Direction,
		run.ExitCode, run.BytesTotal, run.FileCount, run.Archive, run.Status,
		run.ErrorMsg, run.StartTime, run.EndTime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mirror run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	run.ID = id
	return nil
}

// ListMirrorRuns retrieves recent runs, newest first, optionally filtered by site
func (s *Store) ListMirrorRuns(site string, limit int) ([]MirrorRun, error) {
	query := `
		SELECT id, uuid, mode, site, remote, local, direction, exit_code,
		       bytes_total, file_count, archive, status, error_message,
		       start_time, end_time
		FROM mirror_runs
	`
	var args []interface{}

	if site != "" {
		query += " WHERE site = ?"
		args = append(args, site)
	}

	query += " ORDER BY start_time DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mirror runs: %w", err)
	}
	defer rows.Close()

	var runs []MirrorRun
	for rows.Next() {
		run := MirrorRun{}
		err := rows.Scan(
			&run.ID, &run.UUID, &run.Mode, &run.Site, &run.Remote, &run.Local,
			&run.Direction, &run.ExitCode, &run.BytesTotal, &run.FileCount,
			&run.Archive, &run.Status, &run.ErrorMsg, &run.StartTime, &run.EndTime,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mirror run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mirror runs: %w", err)
	}

	return runs, nil
}
