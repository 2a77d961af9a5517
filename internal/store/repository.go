package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sleepat/internal/timelog"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

// Setting keys.
const (
	KeyLanguage        = "language"
	KeySelectedMinutes = "selected_minutes"
	KeyLockPermission  = "lock_permission"
)

type Repository struct {
	db *sql.DB
}

func Open(path string) (*Repository, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer keeps sqlite from returning SQLITE_BUSY under concurrent handlers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	repo := &Repository{db: db}
	if err := repo.init(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *Repository) init() error {
	settingsQuery := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)
	`
	if _, err := r.db.Exec(settingsQuery); err != nil {
		return err
	}

	timeLogsQuery := `
	CREATE TABLE IF NOT EXISTS time_logs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		selected_seconds INTEGER NOT NULL,
		extended_seconds INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL
	)
	`
	_, err := r.db.Exec(timeLogsQuery)
	return err
}

func (r *Repository) Setting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	return err
}

func (r *Repository) CreateLog(ctx context.Context, log *timelog.TimeLog) error {
	if log.ID == "" {
		return errors.New("time log id is required")
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO time_logs (id, started_at, ended_at, selected_seconds, extended_seconds, outcome) VALUES (?, ?, ?, ?, ?, ?)",
		log.ID,
		log.StartedAt.UTC().Format(time.RFC3339),
		log.EndedAt.UTC().Format(time.RFC3339),
		log.SelectedSeconds,
		log.ExtendedSeconds,
		string(log.Outcome),
	)
	return err
}

// ListLogs returns the most recent runs first. A non-positive limit returns all.
func (r *Repository) ListLogs(ctx context.Context, limit int) ([]timelog.TimeLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, started_at, ended_at, selected_seconds, extended_seconds, outcome FROM time_logs ORDER BY ended_at DESC, started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []timelog.TimeLog
	for rows.Next() {
		var l timelog.TimeLog
		var startedAt, endedAt, outcome string
		if err := rows.Scan(&l.ID, &startedAt, &endedAt, &l.SelectedSeconds, &l.ExtendedSeconds, &outcome); err != nil {
			return nil, err
		}
		l.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		l.EndedAt, _ = time.Parse(time.RFC3339, endedAt)
		l.Duration = l.EndedAt.Sub(l.StartedAt)
		l.Outcome = timelog.Outcome(outcome)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *Repository) Close() error {
	return r.db.Close()
}
