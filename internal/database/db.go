package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jgoulah/powercurve/internal/dataset"
	"github.com/jgoulah/powercurve/pkg/models"
)

// checkedAtLayout keeps refresh log timestamps sortable as text
const checkedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// DailyTotal is the summed consumption of one day
type DailyTotal struct {
	Year      int
	Day       int
	Date      string // Local calendar date, "2006-01-02"
	GWh       float64
	Readings  int
	Published bool
}

// RefreshEntry is one row of the refresh log
type RefreshEntry struct {
	ID           string
	Year         int
	URL          string
	CheckedAt    time.Time
	MaxTimestamp time.Time
	Stale        bool
	Fetched      bool
	Bytes        int64
	Error        string
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// sqlite allows a single writer
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS readings (
		ts TEXT NOT NULL,
		seq INTEGER NOT NULL DEFAULT 0,
		date TEXT NOT NULL,
		year INTEGER NOT NULL,
		day INTEGER NOT NULL,
		gwh REAL NOT NULL,
		PRIMARY KEY (ts, seq)
	);
	CREATE INDEX IF NOT EXISTS idx_readings_year_day ON readings(year, day);

	CREATE TABLE IF NOT EXISTS published_days (
		year INTEGER NOT NULL,
		day INTEGER NOT NULL,
		published_at TEXT NOT NULL,
		PRIMARY KEY (year, day)
	);

	CREATE TABLE IF NOT EXISTS refresh_log (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		url TEXT NOT NULL,
		checked_at TEXT NOT NULL,
		max_timestamp TEXT,
		stale INTEGER NOT NULL DEFAULT 0,
		fetched INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_refresh_checked_at ON refresh_log(checked_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// InsertRecords stores cleaned records, replacing rows with the same key.
// Rows are keyed by timestamp and the occurrence of that timestamp within records, so the
// repeated hour of the autumn DST change keeps both readings and a re-import replaces them.
// Returns the number of rows written.
func (db *DB) InsertRecords(ctx context.Context, records []models.EnrichedRecord) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO readings (ts, seq, date, year, day, gwh)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	seen := make(map[string]int, len(records))
	for _, r := range records {
		ts := r.Timestamp.UTC().Format(time.RFC3339)
		seq := seen[ts]
		seen[ts]++

		_, err := stmt.ExecContext(ctx,
			ts, seq,
			r.Timestamp.Format("2006-01-02"),
			r.Year, r.Day, r.Value,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting reading %s: %w", r.Timestamp.Format(time.RFC3339), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing readings: %w", err)
	}
	return len(records), nil
}

// CountRecords returns the number of stored readings
func (db *DB) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM readings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting readings: %w", err)
	}
	return n, nil
}

// DailyTotals returns the per-day sums of a year, ordered by day.
// A zero year returns every year.
func (db *DB) DailyTotals(ctx context.Context, year int) ([]DailyTotal, error) {
	query := `
	SELECT r.year, r.day, MIN(r.date), SUM(r.gwh), COUNT(*), p.year IS NOT NULL
	FROM readings r
	LEFT JOIN published_days p ON p.year = r.year AND p.day = r.day
	WHERE (? = 0 OR r.year = ?)
	GROUP BY r.year, r.day
	ORDER BY r.year, r.day
	`

	rows, err := db.conn.QueryContext(ctx, query, year, year)
	if err != nil {
		return nil, fmt.Errorf("querying daily totals: %w", err)
	}
	defer rows.Close()

	var results []DailyTotal
	for rows.Next() {
		var t DailyTotal
		if err := rows.Scan(&t.Year, &t.Day, &t.Date, &t.GWh, &t.Readings, &t.Published); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, t)
	}

	return results, rows.Err()
}

// ListUnpublishedDays returns complete days that have not been published, oldest first.
// Days with a total at or below minTotal are considered incomplete.
func (db *DB) ListUnpublishedDays(ctx context.Context, minTotal float64) ([]DailyTotal, error) {
	totals, err := db.DailyTotals(ctx, 0)
	if err != nil {
		return nil, err
	}

	var results []DailyTotal
	for _, t := range totals {
		if !t.Published && t.GWh > minTotal {
			results = append(results, t)
		}
	}
	return results, nil
}

// MarkPublished marks a day as published
func (db *DB) MarkPublished(ctx context.Context, year, day int) error {
	query := `INSERT OR REPLACE INTO published_days (year, day, published_at) VALUES (?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query, year, day, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("marking day as published: %w", err)
	}
	return nil
}

// RecordRefresh appends a refresh attempt to the refresh log
func (db *DB) RecordRefresh(ctx context.Context, result dataset.RefreshResult) error {
	query := `
	INSERT INTO refresh_log (id, year, url, checked_at, max_timestamp, stale, fetched, bytes, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var maxTS, errText sql.NullString
	if !result.MaxTimestamp.IsZero() {
		maxTS = sql.NullString{String: result.MaxTimestamp.UTC().Format(time.RFC3339), Valid: true}
	}
	if result.Err != nil {
		errText = sql.NullString{String: result.Err.Error(), Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, query,
		uuid.NewString(),
		result.Year,
		result.URL,
		result.CheckedAt.UTC().Format(checkedAtLayout),
		maxTS,
		result.Stale,
		result.Fetched,
		result.Bytes,
		errText,
	)
	if err != nil {
		return fmt.Errorf("inserting refresh log: %w", err)
	}
	return nil
}

// ListRefreshes returns the most recent refresh attempts, newest first
func (db *DB) ListRefreshes(ctx context.Context, limit int) ([]RefreshEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
	SELECT id, year, url, checked_at, max_timestamp, stale, fetched, bytes, error
	FROM refresh_log
	ORDER BY checked_at DESC
	LIMIT ?
	`

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying refresh log: %w", err)
	}
	defer rows.Close()

	var results []RefreshEntry
	for rows.Next() {
		var e RefreshEntry
		var checkedAt string
		var maxTS, errText sql.NullString

		if err := rows.Scan(&e.ID, &e.Year, &e.URL, &checkedAt, &maxTS, &e.Stale, &e.Fetched, &e.Bytes, &errText); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		e.CheckedAt, err = time.Parse(checkedAtLayout, checkedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing checked_at: %w", err)
		}
		if maxTS.Valid {
			e.MaxTimestamp, err = time.Parse(time.RFC3339, maxTS.String)
			if err != nil {
				return nil, fmt.Errorf("parsing max_timestamp: %w", err)
			}
		}
		e.Error = errText.String

		results = append(results, e)
	}

	return results, rows.Err()
}
