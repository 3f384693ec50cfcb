package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const slotSchema = `
CREATE TABLE IF NOT EXISTS slots (
	name       TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// SQLiteSlot stores the named slot as one row of a key/value table
type SQLiteSlot struct {
	conn *sql.DB
	name string
}

// NewSQLiteSlot opens (creating if needed) <dir>/eggplant.db and returns the
// history slot inside it.
func NewSQLiteSlot(dir string) (*SQLiteSlot, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return OpenSQLiteSlot(filepath.Join(dir, "eggplant.db"), SlotName)
}

// OpenSQLiteSlot opens the database at dbPath and returns the named slot
func OpenSQLiteSlot(dbPath, name string) (*SQLiteSlot, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.Exec(slotSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteSlot{conn: conn, name: name}, nil
}

func (s *SQLiteSlot) Read() ([]byte, error) {
	var data []byte
	err := s.conn.QueryRow(`SELECT value FROM slots WHERE name = ?`, s.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", s.name, err)
	}
	return data, nil
}

func (s *SQLiteSlot) Write(data []byte) error {
	_, err := s.conn.Exec(`
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		s.name, data)
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", s.name, err)
	}
	return nil
}

func (s *SQLiteSlot) Close() error {
	return s.conn.Close()
}
