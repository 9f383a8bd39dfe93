package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/dallae-labs/dallae/backend/internal/model/checkin"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore keeps the timeline in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite creates or opens the database at the given path, applying
// pragmas and the schema. Safe to call repeatedly.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveEntry implements Store. ON CONFLICT DO NOTHING makes retried saves of
// the same entry ID idempotent.
func (s *SQLiteStore) SaveEntry(ctx context.Context, entry checkin.Entry) (string, error) {
	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return "", fmt.Errorf("marshal tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO entries (id, date, kind, emotion, intensity, summary, detail, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		entry.ID,
		entry.Date.UTC().Format(time.RFC3339),
		string(entry.Kind),
		string(entry.Emotion),
		entry.Intensity,
		entry.Summary,
		entry.Detail,
		string(tags),
	)
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}
	return entry.ID, nil
}

// RecentEntries implements Store.
func (s *SQLiteStore) RecentEntries(ctx context.Context, windowDays int) ([]checkin.Entry, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -windowDays).Format(time.RFC3339)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, kind, emotion, intensity, summary, detail, tags
		FROM entries
		WHERE date >= ?
		ORDER BY date DESC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []checkin.Entry
	for rows.Next() {
		var (
			entry   checkin.Entry
			date    string
			kind    string
			emotion string
			tags    string
		)
		if err := rows.Scan(&entry.ID, &date, &kind, &emotion, &entry.Intensity, &entry.Summary, &entry.Detail, &tags); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		entry.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("parse entry date: %w", err)
		}
		entry.Kind = checkin.Kind(kind)
		entry.Emotion = checkin.Emotion(emotion)
		if err := json.Unmarshal([]byte(tags), &entry.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
