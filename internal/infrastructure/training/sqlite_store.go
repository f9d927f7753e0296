// Package training persists command history, taught mappings and frequency
// counters in a SQLite database.
package training

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nekrovoice/nekro-go/internal/domain"
	"github.com/nekrovoice/nekro-go/internal/pkg/filesystem"
	"github.com/nekrovoice/nekro-go/internal/ports"
)

// SQLiteStore implements ports.TrainingRepository on a local SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath returns ~/.nekro/training.db.
func DefaultPath() string {
	return filepath.Join(filesystem.UserHomeDir(), ".nekro", "training.db")
}

// NewSQLiteStore creates (or opens) the training database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open training db: %w", err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init training db: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		command TEXT NOT NULL,
		command_type TEXT NOT NULL,
		success INTEGER NOT NULL,
		timestamp TEXT NOT NULL,
		context TEXT,
		feedback INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_commands_timestamp ON commands(timestamp);
	CREATE INDEX IF NOT EXISTS idx_commands_type ON commands(command_type);
	CREATE TABLE IF NOT EXISTS taught_commands (
		command TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		taught_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS command_frequency (
		command TEXT PRIMARY KEY,
		count INTEGER NOT NULL
	);`)
	return err
}

// Insert appends a new command record.
func (s *SQLiteStore) Insert(rec domain.CommandRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO commands
		(command, command_type, success, timestamp, context, feedback)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Text,
		rec.Type,
		boolToInt(rec.Success),
		rec.Timestamp.UTC().Format(domain.TimestampFormat),
		rec.Context,
		int(rec.Feedback),
	)
	return err
}

// SetFeedback updates the most recent record whose text matches exactly.
// A missing match is a no-op, not an error.
func (s *SQLiteStore) SetFeedback(text string, fb domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`UPDATE commands SET feedback = ?
		WHERE id = (SELECT id FROM commands WHERE command = ? ORDER BY timestamp DESC, id DESC LIMIT 1)`,
		int(fb), text)
	return err
}

// Recent returns the most recent records of any type, newest first.
func (s *SQLiteStore) Recent(limit int) ([]domain.CommandRecord, error) {
	return s.queryRecords(`SELECT id, command, command_type, success, timestamp, context, feedback
		FROM commands ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
}

// RecentSuccessful returns the most recent successful records, newest first.
func (s *SQLiteStore) RecentSuccessful(limit int) ([]domain.CommandRecord, error) {
	return s.queryRecords(`SELECT id, command, command_type, success, timestamp, context, feedback
		FROM commands WHERE success = 1 ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
}

// RecentByType returns the most recent records of the given type, newest first.
func (s *SQLiteStore) RecentByType(commandType string, limit int) ([]domain.CommandRecord, error) {
	return s.queryRecords(`SELECT id, command, command_type, success, timestamp, context, feedback
		FROM commands WHERE command_type = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, commandType, limit)
}

// RecentByContext returns the most recent records carrying the situational tag.
func (s *SQLiteStore) RecentByContext(contextTag string, limit int) ([]domain.CommandRecord, error) {
	return s.queryRecords(`SELECT id, command, command_type, success, timestamp, context, feedback
		FROM commands WHERE context = ? ORDER BY timestamp DESC, id DESC LIMIT ?`, contextTag, limit)
}

func (s *SQLiteStore) queryRecords(query string, args ...interface{}) ([]domain.CommandRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.CommandRecord
	for rows.Next() {
		var rec domain.CommandRecord
		var ts string
		var success, feedback int
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Type, &success, &ts, &rec.Context, &feedback); err != nil {
			return nil, err
		}
		if t, err := time.Parse(domain.TimestampFormat, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Success = success == 1
		rec.Feedback = domain.Feedback(feedback)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountAll returns the total number of command records.
func (s *SQLiteStore) CountAll() (int, error) {
	return s.count(`SELECT COUNT(*) FROM commands`)
}

// CountSuccessful returns the number of successful command records.
func (s *SQLiteStore) CountSuccessful() (int, error) {
	return s.count(`SELECT COUNT(*) FROM commands WHERE success = 1`)
}

func (s *SQLiteStore) count(query string, args ...interface{}) (int, error) {
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteOlderThan removes command records with a timestamp before cutoff and
// returns the number of rows removed.
func (s *SQLiteStore) DeleteOlderThan(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.Exec(`DELETE FROM commands WHERE timestamp < ?`,
		cutoff.UTC().Format(domain.TimestampFormat))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Teach inserts or overwrites a taught command mapping.
func (s *SQLiteStore) Teach(tc domain.TaughtCommand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO taught_commands (command, action, taught_at) VALUES (?, ?, ?)
		ON CONFLICT(command) DO UPDATE SET action = excluded.action, taught_at = excluded.taught_at`,
		tc.Command, tc.Action, tc.TaughtAt.UTC().Format(domain.TimestampFormat))
	return err
}

// LookupTaught resolves a taught command key to its action.
func (s *SQLiteStore) LookupTaught(command string) (string, bool, error) {
	var action string
	err := s.db.QueryRow(`SELECT action FROM taught_commands WHERE command = ?`, command).Scan(&action)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return action, true, nil
}

// TaughtCount returns the number of taught command mappings.
func (s *SQLiteStore) TaughtCount() (int, error) {
	return s.count(`SELECT COUNT(*) FROM taught_commands`)
}

// IncrementFrequency bumps the occurrence counter for a command.
func (s *SQLiteStore) IncrementFrequency(command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO command_frequency (command, count) VALUES (?, 1)
		ON CONFLICT(command) DO UPDATE SET count = count + 1`, command)
	return err
}

// TopFrequent returns counters sorted by count descending; ties break on the
// command text so the order is stable.
func (s *SQLiteStore) TopFrequent(limit int) ([]domain.FrequencyEntry, error) {
	rows, err := s.db.Query(`SELECT command, count FROM command_frequency
		ORDER BY count DESC, command ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.FrequencyEntry
	for rows.Next() {
		var e domain.FrequencyEntry
		if err := rows.Scan(&e.Command, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.TrainingRepository = (*SQLiteStore)(nil)
