// Package store persists world snapshots in a SQLite database. Each
// snapshot is a named, immutable CBOR image; saving under an existing
// name replaces the previous image.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

// ErrSnapshotNotFound indicates the requested snapshot doesn't exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

var log = commonlog.GetLogger("mosaic.store")

// SnapshotInfo describes a stored snapshot without loading its image.
type SnapshotInfo struct {
	Name    string
	Created time.Time
	Size    int
}

// Store is a SQLite-backed snapshot archive.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
}

// Open opens (creating if needed) the snapshot database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		created INTEGER NOT NULL,
		data BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	log.Debugf("opened snapshot store at %s", dbPath)
	return &Store{db: db, dbPath: dbPath}, nil
}

// OpenDefault opens the store at MOSAIC_SNAPSHOT_DB, falling back to
// ~/.mosaic/snapshots.db.
func OpenDefault() (*Store, error) {
	dbPath := os.Getenv("MOSAIC_SNAPSHOT_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home dir: %w", err)
		}
		dbPath = filepath.Join(home, ".mosaic", "snapshots.db")
	}
	return Open(dbPath)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save writes an encoded image under name, replacing any previous image
// with that name.
func (s *Store) Save(name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("snapshot name must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO snapshots (name, created, data) VALUES (?, ?, ?)",
		name, time.Now().Unix(), data,
	)
	if err != nil {
		return fmt.Errorf("saving snapshot %q: %w", name, err)
	}
	log.Debugf("saved snapshot %q (%d bytes)", name, len(data))
	return nil
}

// Load retrieves the encoded image stored under name.
func (s *Store) Load(name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM snapshots WHERE name = ?", name).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("querying snapshot %q: %w", name, err)
	}
	return data, nil
}

// Delete removes the snapshot stored under name.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM snapshots WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("deleting snapshot %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

// List returns the stored snapshots, newest first.
func (s *Store) List() ([]SnapshotInfo, error) {
	rows, err := s.db.Query(
		"SELECT name, created, length(data) FROM snapshots ORDER BY created DESC, name",
	)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var created int64
		if err := rows.Scan(&info.Name, &created, &info.Size); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		info.Created = time.Unix(created, 0)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return out, nil
}
