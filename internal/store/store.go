// Package store persists contract opportunities, their AI summaries, and
// bulk-run records in SQLite. Summaries are keyed by notice ID; an
// opportunity has at most one stored summary, replaced on regeneration.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Opportunity is one contract record.
type Opportunity struct {
	NoticeID    string
	Title       string
	Agency      string
	Description string
	PostedAt    string
}

// Summary is a stored summarization outcome. Exactly one of Bullets or
// Error is non-empty.
type Summary struct {
	NoticeID    string
	Bullets     string
	Error       string
	GeneratedAt time.Time
}

// Run records one bulk run's tally.
type Run struct {
	ID         string
	Attempted  int
	Successful int
	Aborted    bool
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// UpsertOpportunity inserts or updates one opportunity keyed by notice ID.
func (s *Store) UpsertOpportunity(o Opportunity) error {
	_, err := s.db.Exec(`
		INSERT INTO opportunities (notice_id, title, agency, description, posted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(notice_id) DO UPDATE SET
			title = excluded.title,
			agency = excluded.agency,
			description = excluded.description,
			posted_at = excluded.posted_at,
			updated_at = CURRENT_TIMESTAMP`,
		o.NoticeID, o.Title, o.Agency, o.Description, o.PostedAt)
	if err != nil {
		return fmt.Errorf("upserting opportunity %s: %w", o.NoticeID, err)
	}
	return nil
}

// GetOpportunity returns one opportunity, or ErrNotFound.
func (s *Store) GetOpportunity(noticeID string) (*Opportunity, error) {
	var o Opportunity
	err := s.db.QueryRow(`
		SELECT notice_id, title, agency, description, posted_at
		FROM opportunities WHERE notice_id = ?`, noticeID).
		Scan(&o.NoticeID, &o.Title, &o.Agency, &o.Description, &o.PostedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting opportunity %s: %w", noticeID, err)
	}
	return &o, nil
}

// ListVisible returns non-archived opportunities, newest posting first with
// notice ID as the tiebreaker. This ordering is the processing order for
// bulk runs.
func (s *Store) ListVisible() ([]Opportunity, error) {
	rows, err := s.db.Query(`
		SELECT notice_id, title, agency, description, posted_at
		FROM opportunities
		WHERE archived = 0
		ORDER BY posted_at DESC, notice_id`)
	if err != nil {
		return nil, fmt.Errorf("listing opportunities: %w", err)
	}
	defer rows.Close()

	var out []Opportunity
	for rows.Next() {
		var o Opportunity
		if err := rows.Scan(&o.NoticeID, &o.Title, &o.Agency, &o.Description, &o.PostedAt); err != nil {
			return nil, fmt.Errorf("scanning opportunity: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetSummary returns the stored summary for a notice ID, or ErrNotFound.
func (s *Store) GetSummary(noticeID string) (*Summary, error) {
	var sm Summary
	var generated string
	err := s.db.QueryRow(`
		SELECT notice_id, bullets, error, generated_at
		FROM summaries WHERE notice_id = ?`, noticeID).
		Scan(&sm.NoticeID, &sm.Bullets, &sm.Error, &generated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting summary %s: %w", noticeID, err)
	}
	sm.GeneratedAt, _ = time.Parse("2006-01-02 15:04:05", generated)
	return &sm, nil
}

// SaveSummary stores a successful summary, clearing any previous error.
func (s *Store) SaveSummary(noticeID, bullets string) error {
	return s.saveOutcome(noticeID, bullets, "")
}

// SaveSummaryError stores a failed attempt's error, clearing any previous
// bullets.
func (s *Store) SaveSummaryError(noticeID, errMsg string) error {
	return s.saveOutcome(noticeID, "", errMsg)
}

func (s *Store) saveOutcome(noticeID, bullets, errMsg string) error {
	_, err := s.db.Exec(`
		INSERT INTO summaries (notice_id, bullets, error, generated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(notice_id) DO UPDATE SET
			bullets = excluded.bullets,
			error = excluded.error,
			generated_at = CURRENT_TIMESTAMP`,
		noticeID, bullets, errMsg)
	if err != nil {
		return fmt.Errorf("saving summary outcome %s: %w", noticeID, err)
	}
	return nil
}

// RecordRun persists one bulk run's tally.
func (s *Store) RecordRun(r Run) error {
	aborted := 0
	if r.Aborted {
		aborted = 1
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (run_id, attempted, successful, aborted, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.Attempted, r.Successful, aborted,
		r.StartedAt.UTC().Format(time.RFC3339), r.FinishedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// ListRuns returns the most recent bulk runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT run_id, attempted, successful, aborted, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var aborted int
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Attempted, &r.Successful, &aborted, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Aborted = aborted != 0
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}
