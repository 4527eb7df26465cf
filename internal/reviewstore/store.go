// Package reviewstore persists sessions and the append-only review log in
// SQLite, following the teacher's adapter/store/sqlite.Store: idiomatic
// database/sql, manual CREATE TABLE IF NOT EXISTS schema setup, and
// fmt.Errorf("...: %w", err) wrapping throughout.
package reviewstore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/reviewbridge/reviewbridge/internal/bridgeerr"
	"github.com/reviewbridge/reviewbridge/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id             TEXT PRIMARY KEY,
	kind           TEXT NOT NULL,
	status         TEXT NOT NULL,
	thread_id      TEXT NOT NULL,
	reviewer_sdk   TEXT NOT NULL,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	completed_at   TIMESTAMP,
	error_code     TEXT,
	error_message  TEXT
);

CREATE TABLE IF NOT EXISTS review_log (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	kind        TEXT NOT NULL,
	verdict     TEXT,
	success     INTEGER NOT NULL,
	error_code  TEXT,
	summary     TEXT,
	created_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_log_session ON review_log(session_id);
`

// Store is the sqlite-backed session store and review log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the sqlite database at path and
// applies the schema. path may be ":memory:".
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetOrCreate returns the session with id, creating a fresh in_progress
// session for kind if one doesn't yet exist.
func (s *Store) GetOrCreate(id string, kind domain.ReviewKind, threadID, reviewerSDK string, now time.Time) (*domain.Session, error) {
	existing, err := s.Get(id)
	if err == nil {
		return existing, nil
	}
	var notFound *bridgeerr.Error
	if !asNotFound(err, &notFound) {
		return nil, err
	}

	sess := &domain.Session{
		ID:          id,
		Kind:        kind,
		Status:      domain.SessionInProgress,
		ThreadID:    threadID,
		ReviewerSDK: reviewerSDK,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, execErr := s.db.Exec(
		`INSERT INTO sessions (id, kind, status, thread_id, reviewer_sdk, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Kind, sess.Status, sess.ThreadID, sess.ReviewerSDK, sess.CreatedAt, sess.UpdatedAt,
	)
	if execErr != nil {
		return nil, fmt.Errorf("failed to create session: %w", execErr)
	}

	return sess, nil
}

// Get fetches a session by id. Returns a *bridgeerr.Error wrapping
// CodeSessionNotFound when absent.
func (s *Store) Get(id string) (*domain.Session, error) {
	row := s.db.QueryRow(
		`SELECT id, kind, status, thread_id, reviewer_sdk, created_at, updated_at, completed_at, error_code, error_message
		 FROM sessions WHERE id = ?`, id)

	var sess domain.Session
	var completedAt sql.NullTime
	var errCode, errMsg sql.NullString

	err := row.Scan(&sess.ID, &sess.Kind, &sess.Status, &sess.ThreadID, &sess.ReviewerSDK,
		&sess.CreatedAt, &sess.UpdatedAt, &completedAt, &errCode, &errMsg)
	if err == sql.ErrNoRows {
		return nil, bridgeerr.New(bridgeerr.CodeSessionNotFound, "session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	sess.ErrorCode = errCode.String
	sess.ErrorMessage = errMsg.String

	return &sess, nil
}

// Activate upserts id to in_progress with completed_at cleared, preserving
// created_at (and any prior review log entries, spec.md §9) when the row
// already exists; a session with no prior row is created fresh (spec.md
// §4.5: "upsert setting status=in_progress, completed_at=NULL").
func (s *Store) Activate(id string, now time.Time) error {
	if _, err := s.Get(id); err != nil {
		var notFound *bridgeerr.Error
		if !asNotFound(err, &notFound) {
			return err
		}
		_, execErr := s.db.Exec(
			`INSERT INTO sessions (id, kind, status, thread_id, reviewer_sdk, created_at, updated_at)
			 VALUES (?, '', ?, '', '', ?, ?)`,
			id, domain.SessionInProgress, now, now,
		)
		if execErr != nil {
			return fmt.Errorf("failed to activate session: %w", execErr)
		}
		return nil
	}

	_, err := s.db.Exec(
		`UPDATE sessions SET status = ?, updated_at = ?, completed_at = NULL, error_code = NULL, error_message = NULL WHERE id = ?`,
		domain.SessionInProgress, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to activate session: %w", err)
	}
	return nil
}

// MarkCompleted transitions id to completed. A non-existent id is a no-op
// that still returns ok (spec.md §4.5, invariant 4).
func (s *Store) MarkCompleted(id string, now time.Time) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET status = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		domain.SessionCompleted, now, now, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session completed: %w", err)
	}
	return nil
}

// MarkFailed transitions id to failed, recording the error code and
// message. A non-existent id is a no-op that still returns ok (spec.md
// §4.5, invariant 4).
func (s *Store) MarkFailed(id string, now time.Time, code, message string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET status = ?, updated_at = ?, error_code = ?, error_message = ? WHERE id = ?`,
		domain.SessionFailed, now, code, message, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark session failed: %w", err)
	}
	return nil
}

// AppendLog records one append-only review log entry.
func (s *Store) AppendLog(entry domain.ReviewLogEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO review_log (id, session_id, kind, verdict, success, error_code, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SessionID, entry.Kind, entry.Verdict, entry.Success, entry.ErrorCode, entry.Summary, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append review log entry: %w", err)
	}
	return nil
}

// History returns every log entry for sessionID, oldest first.
func (s *Store) History(sessionID string) ([]domain.ReviewLogEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, kind, verdict, success, error_code, summary, created_at
		 FROM review_log WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list review log: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ReviewLogEntry, 0)
	for rows.Next() {
		var e domain.ReviewLogEntry
		var verdict, errCode, summary sql.NullString
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &verdict, &e.Success, &errCode, &summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}
		e.Verdict = verdict.String
		e.ErrorCode = errCode.String
		e.Summary = summary.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// Recent returns the most recent n review log entries across every
// session, newest first.
func (s *Store) Recent(n int) ([]domain.ReviewLogEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, kind, verdict, success, error_code, summary, created_at
		 FROM review_log ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent review log entries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ReviewLogEntry, 0)
	for rows.Next() {
		var e domain.ReviewLogEntry
		var verdict, errCode, summary sql.NullString
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &verdict, &e.Success, &errCode, &summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}
		e.Verdict = verdict.String
		e.ErrorCode = errCode.String
		e.Summary = summary.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func asNotFound(err error, target **bridgeerr.Error) bool {
	be, ok := err.(*bridgeerr.Error)
	if !ok {
		return false
	}
	if be.Code != bridgeerr.CodeSessionNotFound {
		return false
	}
	*target = be
	return true
}
