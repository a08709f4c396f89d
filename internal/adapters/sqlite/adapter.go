// Package sqlite provides a SQLite-backed implementation of the run store port.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"songprep/internal/core/domain"
	"songprep/internal/core/ports"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// Adapter implements the run store port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.RunStore = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}

	// Auto-migrate on startup for local dev
	if err := adapter.migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// SaveBatch persists one period's enriched rows under a run. Re-running the
// same period within a run replaces its rows.
func (a *Adapter) SaveBatch(ctx context.Context, runID, periodKey string, songs []domain.EnrichedSong) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safety net: auto-rollback if we error/panic before commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM songs WHERE run_id = ? AND year = ?", runID, periodKey); err != nil {
		return fmt.Errorf("failed to clear old rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO songs (
			run_id, year, position, title, artist, genre, tags,
			sentiment_neg, sentiment_neu, sentiment_pos, sentiment_compound,
			danceability, energy, loudness, instrumentalness, liveness,
			duration_ms, external_id, external_url
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range songs {
		args := []any{
			runID, periodKey, s.Position, s.Title, s.Artist, s.Genre,
			strings.Join(s.Tags, "|"),
			nullFloat(s.Sentiment.Neg),
			nullFloat(s.Sentiment.Neu),
			nullFloat(s.Sentiment.Pos),
			nullFloat(s.Sentiment.Compound),
		}
		if f := s.Features; f != nil {
			args = append(args,
				f.Danceability, f.Energy, f.Loudness, f.Instrumentalness, f.Liveness,
				f.DurationMs, f.ExternalID, f.ExternalURL,
			)
		} else {
			args = append(args, nil, nil, nil, nil, nil, nil, nil, nil)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to save song %q: %w", s.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

// SaveRun records the final summary row for a run
func (a *Adapter) SaveRun(ctx context.Context, rec ports.RunRecord) error {
	query := `
		INSERT INTO runs (id, started_at, finished_at, status, processed, skipped, no_match)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at=excluded.finished_at,
			status=excluded.status,
			processed=excluded.processed,
			skipped=excluded.skipped,
			no_match=excluded.no_match;
	`
	if _, err := a.db.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.StartedAt,
		rec.FinishedAt,
		rec.Status,
		rec.Processed,
		rec.Skipped,
		rec.NoMatch,
	); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun loads one run's summary row
func (a *Adapter) GetRun(ctx context.Context, id string) (ports.RunRecord, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, status, processed, skipped, no_match
		FROM runs WHERE id = ?
	`, id)

	var rec ports.RunRecord
	if err := row.Scan(
		&rec.ID,
		&rec.StartedAt,
		&rec.FinishedAt,
		&rec.Status,
		&rec.Processed,
		&rec.Skipped,
		&rec.NoMatch,
	); err != nil {
		if err == sql.ErrNoRows {
			return ports.RunRecord{}, domain.ErrRunNotFound
		}
		return ports.RunRecord{}, fmt.Errorf("failed to load run: %w", err)
	}

	return rec, nil
}

// SongsForPeriod reads back one period's rows for a run, in position order
func (a *Adapter) SongsForPeriod(ctx context.Context, runID, periodKey string) ([]domain.EnrichedSong, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT position, title, artist, genre, tags,
			sentiment_neg, sentiment_neu, sentiment_pos, sentiment_compound,
			danceability, energy, loudness, instrumentalness, liveness,
			duration_ms, external_id, external_url
		FROM songs
		WHERE run_id = ? AND year = ?
		ORDER BY position ASC
	`, runID, periodKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}
	defer rows.Close()

	var songs []domain.EnrichedSong
	for rows.Next() {
		var (
			s                  domain.EnrichedSong
			tags               string
			neg, neu, pos, cmp sql.NullFloat64
			dance, energy      sql.NullFloat64
			loud, instr, live  sql.NullFloat64
			duration           sql.NullInt64
			extID, extURL      sql.NullString
		)
		if err := rows.Scan(
			&s.Position, &s.Title, &s.Artist, &s.Genre, &tags,
			&neg, &neu, &pos, &cmp,
			&dance, &energy, &loud, &instr, &live,
			&duration, &extID, &extURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		s.PeriodKey = periodKey
		if tags != "" {
			s.Tags = strings.Split(tags, "|")
		}
		s.Sentiment = domain.SentimentFields{
			Neg:      floatPtr(neg),
			Neu:      floatPtr(neu),
			Pos:      floatPtr(pos),
			Compound: floatPtr(cmp),
		}
		if extID.Valid {
			s.Features = &domain.AudioFeatures{
				Danceability:     dance.Float64,
				Energy:           energy.Float64,
				Loudness:         loud.Float64,
				Instrumentalness: instr.Float64,
				Liveness:         live.Float64,
				DurationMs:       int(duration.Int64),
				ExternalID:       extID.String,
				ExternalURL:      extURL.String,
			}
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate songs: %w", err)
	}

	return songs, nil
}

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		status TEXT NOT NULL,
		processed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		no_match INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS songs (
		run_id TEXT NOT NULL,
		year TEXT NOT NULL,
		position INTEGER,
		title TEXT NOT NULL,
		artist TEXT NOT NULL,
		genre TEXT NOT NULL,
		tags TEXT,
		sentiment_neg REAL,
		sentiment_neu REAL,
		sentiment_pos REAL,
		sentiment_compound REAL,
		danceability REAL,
		energy REAL,
		loudness REAL,
		instrumentalness REAL,
		liveness REAL,
		duration_ms INTEGER,
		external_id TEXT,
		external_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_songs_run_year ON songs(run_id, year);
	`
	if _, err := a.db.Exec(query); err != nil {
		return err
	}

	return nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
