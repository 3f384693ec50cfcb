package storage

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/eggplant-lab/eggplant/internal/models"
)

// MaxEntries caps the history log
const MaxEntries = 50

// HistoryStore is the bounded, newest-first log of completed sessions. It is
// hydrated from its slot once by Load and rewritten in full after every
// mutation. Persistence failures are logged and never returned; the
// in-memory log stays authoritative for the rest of the process.
type HistoryStore struct {
	slot    Slot
	entries []models.HistoryEntry
	mu      sync.RWMutex
}

func NewHistoryStore(slot Slot) *HistoryStore {
	return &HistoryStore{
		slot:    slot,
		entries: []models.HistoryEntry{},
	}
}

// Load reads the persisted log. Absent, corrupt or non-array data yields an
// empty log.
func (s *HistoryStore) Load() []models.HistoryEntry {
	entries := s.read()

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	return s.Entries()
}

func (s *HistoryStore) read() []models.HistoryEntry {
	data, err := s.slot.Read()
	if errors.Is(err, ErrSlotEmpty) {
		return []models.HistoryEntry{}
	}
	if err != nil {
		slog.Warn("Unable to read history, starting empty", "err", err)
		return []models.HistoryEntry{}
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		slog.Warn("Stored history is corrupt, starting empty", "err", err, "bytes", len(data))
		return []models.HistoryEntry{}
	}
	if entries == nil {
		return []models.HistoryEntry{}
	}

	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

// Append puts entry at the front, evicts anything past MaxEntries and
// persists the result before returning it.
func (s *HistoryStore) Append(entry models.HistoryEntry) []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries) + 1
	if n > MaxEntries {
		n = MaxEntries
	}
	entries := make([]models.HistoryEntry, 0, n)
	entries = append(entries, entry)
	entries = append(entries, s.entries[:n-1]...)
	s.entries = entries

	s.persist()
	return s.snapshot()
}

// Clear empties the log. Confirmation is the caller's job.
func (s *HistoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []models.HistoryEntry{}
	s.persist()
}

// Entries returns a fresh copy of the log, newest first
func (s *HistoryStore) Entries() []models.HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Get looks up an entry by id
func (s *HistoryStore) Get(id string) (models.HistoryEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		if entry.ID == id {
			return entry, true
		}
	}
	return models.HistoryEntry{}, false
}

func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// callers hold s.mu
func (s *HistoryStore) snapshot() []models.HistoryEntry {
	entries := make([]models.HistoryEntry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// callers hold s.mu
func (s *HistoryStore) persist() {
	data, err := json.Marshal(s.entries)
	if err != nil {
		slog.Error("Unable to encode history", "err", err)
		return
	}
	if err := s.slot.Write(data); err != nil {
		slog.Error("Unable to persist history", "err", err, "entries", len(s.entries))
	}
}
