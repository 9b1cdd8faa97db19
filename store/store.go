// Package store is the local sqlite persistence layer: the single active
// session, the cached vendor profile (weekly quota) and a journal of every
// clocking this tool has submitted.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/carlosalbertovr/intratime-killer/models"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs
// migrations.
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS sessions (
		id           INTEGER PRIMARY KEY CHECK (id = 1),
		vendor_token TEXT NOT NULL,
		user_id      TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id      TEXT PRIMARY KEY,
		username     TEXT NOT NULL,
		name         TEXT NOT NULL DEFAULT '',
		email        TEXT NOT NULL DEFAULT '',
		weekly_hours REAL NOT NULL DEFAULT 40,
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id     TEXT NOT NULL,
		user_id      TEXT NOT NULL,
		event_date   TEXT NOT NULL,
		kind         TEXT NOT NULL,
		event_time   TEXT NOT NULL,
		submitted_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_batch ON submissions(batch_id);
	CREATE INDEX IF NOT EXISTS idx_submissions_date  ON submissions(event_date);
	`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveSession stores the active session, replacing any previous one.
func (s *Store) SaveSession(vendorToken, userID string) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, vendor_token, user_id, created_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET vendor_token = excluded.vendor_token, user_id = excluded.user_id, created_at = excluded.created_at`,
		vendorToken, userID, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// CurrentSession returns the active session, if one exists.
func (s *Store) CurrentSession() (vendorToken, userID string, ok bool, err error) {
	err = s.db.QueryRow(`SELECT vendor_token, user_id FROM sessions WHERE id = 1`).Scan(&vendorToken, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, fmt.Errorf("read session: %w", err)
	}
	return vendorToken, userID, true, nil
}

// ClearSession removes the active session on logout.
func (s *Store) ClearSession() error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = 1`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// SaveProfile upserts the cached vendor profile.
func (s *Store) SaveProfile(u models.User) error {
	_, err := s.db.Exec(
		`INSERT INTO profiles (user_id, username, name, email, weekly_hours, updated_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET username = excluded.username, name = excluded.name,
		 email = excluded.email, weekly_hours = excluded.weekly_hours, updated_at = excluded.updated_at`,
		u.ID, u.Username, u.Name, u.Email, u.WeeklyQuota, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// GetProfile returns the cached profile for the user.
func (s *Store) GetProfile(userID string) (models.User, error) {
	var u models.User
	err := s.db.QueryRow(
		`SELECT user_id, username, name, email, weekly_hours FROM profiles WHERE user_id = ?`, userID,
	).Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.WeeklyQuota)
	if err != nil {
		return models.User{}, fmt.Errorf("get profile %q: %w", userID, err)
	}
	return u, nil
}

// UpdateQuota changes the cached weekly working-hours quota.
func (s *Store) UpdateQuota(userID string, weeklyHours float64) error {
	res, err := s.db.Exec(`UPDATE profiles SET weekly_hours = ?, updated_at = ? WHERE user_id = ?`,
		weeklyHours, time.Now().UTC().Format(time.RFC3339), userID)
	if err != nil {
		return fmt.Errorf("update quota: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update quota: no profile for user %q", userID)
	}
	return nil
}

// Submission is one journaled clocking.
type Submission struct {
	BatchID     string `json:"batch_id"`
	UserID      string `json:"user_id"`
	EventDate   string `json:"event_date"`
	Kind        string `json:"kind"`
	EventTime   string `json:"event_time"`
	SubmittedAt string `json:"submitted_at"`
}

// LogSubmission records an event the vendor accepted. Partial batches are
// expected after a mid-sequence failure; the journal shows exactly what
// landed.
func (s *Store) LogSubmission(batchID, userID string, ev models.ClockEvent) error {
	_, err := s.db.Exec(
		`INSERT INTO submissions (batch_id, user_id, event_date, kind, event_time) VALUES (?, ?, ?, ?, ?)`,
		batchID, userID, ev.Date, string(ev.Kind), ev.Time,
	)
	if err != nil {
		return fmt.Errorf("log submission: %w", err)
	}
	return nil
}

// SubmissionsForBatch lists the journaled events of one batch in
// submission order.
func (s *Store) SubmissionsForBatch(batchID string) ([]Submission, error) {
	rows, err := s.db.Query(
		`SELECT batch_id, user_id, event_date, kind, event_time, submitted_at FROM submissions WHERE batch_id = ? ORDER BY id`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("list batch %q: %w", batchID, err)
	}
	defer rows.Close()

	var subs []Submission
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.BatchID, &sub.UserID, &sub.EventDate, &sub.Kind, &sub.EventTime, &sub.SubmittedAt); err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
