package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SlotName is the name of the slot holding the serialized history log
const SlotName = "analysisHistory"

// ErrSlotEmpty is returned by Slot.Read when nothing has been stored yet
var ErrSlotEmpty = errors.New("slot is empty")

// Slot is a single named unit of durable storage
type Slot interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// FileSlot stores the slot as one file
type FileSlot struct {
	Path string
}

// NewFileSlot returns the history slot inside dir
func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{Path: filepath.Join(dir, SlotName+".json")}
}

func (s *FileSlot) Read() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write replaces the file contents through a temp file and rename so a
// reader never sees a half-written log.
func (s *FileSlot) Write(data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path, err)
	}
	return nil
}

// MemorySlot keeps the slot in memory. Used for ephemeral runs and tests.
type MemorySlot struct {
	data []byte
	set  bool
	mu   sync.Mutex
}

func (s *MemorySlot) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.set {
		return nil, ErrSlotEmpty
	}
	data := make([]byte, len(s.data))
	copy(data, s.data)
	return data, nil
}

func (s *MemorySlot) Write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.set = true
	return nil
}
