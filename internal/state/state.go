// Package state is the durable store: the last known queue, its settings,
// favorites, pinned playlists and path filters, all in one SQLite file.
package state

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/cadence/internal/library"
	"github.com/llehouerou/cadence/internal/playlist"
)

const (
	appName    = "cadence"
	dbFileName = "cadence.db"
)

// Resolver maps a persisted track to its live version.
// *library.Library implements it.
type Resolver interface {
	Resolve(t playlist.Track) (playlist.Track, bool)
	ResolvePath(path string, fallback playlist.Track) (playlist.Track, bool)
}

type Manager struct {
	db       *sql.DB
	lib      *library.Library
	resolver Resolver
}

// Open opens the database at path, or at the default XDG data location
// when path is empty, creating it if needed.
func Open(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	m, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return m, nil
}

// New wraps an open database, creating the schema if needed.
func New(db *sql.DB) (*Manager, error) {
	if err := initSchema(db); err != nil {
		return nil, err
	}
	lib := library.New(db)
	return &Manager{db: db, lib: lib, resolver: lib}, nil
}

// DefaultPath returns the default database location.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func (m *Manager) DB() *sql.DB {
	return m.db
}

// Library returns the track catalogue stored in the same database.
func (m *Manager) Library() *library.Library {
	return m.lib
}
