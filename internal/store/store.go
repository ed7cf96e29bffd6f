// Package store persists per-day appointment snapshots and history logs as
// flat JSON files. Each calendar day gets one snapshot file and one history
// file, keyed by ISO date. The store keeps no state of its own — it is a
// read/write conduit for the queue engine.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zulandar/gatedesk/internal/models"
)

// Store reads and writes the per-day JSON files under a single directory.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory is created lazily on
// first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DateKey returns the ISO calendar date (local time) used to key the
// per-day files.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func (s *Store) dayPath(key string) string {
	return filepath.Join(s.dir, "appointments-"+key+".json")
}

func (s *Store) historyPath(key string) string {
	return filepath.Join(s.dir, "history-"+key+".json")
}

// LoadDay returns the appointment snapshot for key. A missing or unparsable
// file means no data yet and yields an empty slice, never an error.
func (s *Store) LoadDay(key string) []models.Appointment {
	data, err := os.ReadFile(s.dayPath(key))
	if err != nil {
		return []models.Appointment{}
	}
	var appts []models.Appointment
	if err := json.Unmarshal(data, &appts); err != nil {
		return []models.Appointment{}
	}
	if appts == nil {
		appts = []models.Appointment{}
	}
	return appts
}

// SaveDay overwrites the snapshot for key with the full appointment list.
func (s *Store) SaveDay(key string, appts []models.Appointment) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("store: create %s: %w", s.dir, err)
	}
	data, err := json.MarshalIndent(appts, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode day %s: %w", key, err)
	}
	if err := os.WriteFile(s.dayPath(key), data, 0o644); err != nil {
		return fmt.Errorf("store: save day %s: %w", key, err)
	}
	return nil
}

// AppendHistory appends entry to the history log for key. The log is a
// read-modify-write of the whole file, not an atomic append — a crash
// between read and write loses concurrent entries.
func (s *Store) AppendHistory(key string, entry models.HistoryEntry) error {
	entries := s.LoadHistory(key)
	entries = append(entries, entry)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("store: create %s: %w", s.dir, err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode history %s: %w", key, err)
	}
	if err := os.WriteFile(s.historyPath(key), data, 0o644); err != nil {
		return fmt.Errorf("store: save history %s: %w", key, err)
	}
	return nil
}

// LoadHistory returns the history log for key. Missing or unparsable files
// yield an empty slice.
func (s *Store) LoadHistory(key string) []models.HistoryEntry {
	data, err := os.ReadFile(s.historyPath(key))
	if err != nil {
		return []models.HistoryEntry{}
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []models.HistoryEntry{}
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return entries
}
