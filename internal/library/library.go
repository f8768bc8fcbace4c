// Package library is the catalogue of live tracks: what the queue, the
// favorites and backups resolve persisted tracks against.
package library

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/llehouerou/cadence/internal/playlist"
)

// ErrNotFound is returned when a track is not in the library.
var ErrNotFound = errors.New("track not found")

type Track struct {
	ID          int64
	Path        string
	Mtime       int64
	Artist      string
	AlbumArtist string
	Album       string
	Title       string
	DiscNumber  int
	TrackNumber int
	Year        int
	Genre       string
	Duration    time.Duration
}

// Playable converts t into a queue track.
func (t Track) Playable() playlist.Track {
	return playlist.Track{
		ID:          t.ID,
		Path:        t.Path,
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       t.Album,
		TrackNumber: t.TrackNumber,
		Duration:    t.Duration,
	}
}

// executor is satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Library struct {
	db *sql.DB
}

func New(db *sql.DB) *Library {
	return &Library{db: db}
}

// DB returns the underlying database.
func (l *Library) DB() *sql.DB {
	return l.db
}

// InitSchema creates the library tables if they do not exist.
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS library_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			mtime INTEGER NOT NULL,
			artist TEXT NOT NULL,
			album_artist TEXT NOT NULL,
			album TEXT NOT NULL,
			title TEXT NOT NULL,
			disc_number INTEGER,
			track_number INTEGER,
			year INTEGER,
			genre TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			added_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_album_artist ON library_tracks(album_artist);
		CREATE INDEX IF NOT EXISTS idx_tracks_album_artist_album ON library_tracks(album_artist, album);

		CREATE TABLE IF NOT EXISTS library_sources (
			path TEXT PRIMARY KEY,
			added_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// Migration: add duration_ms column if missing
	_, _ = db.Exec(`ALTER TABLE library_tracks ADD COLUMN duration_ms INTEGER NOT NULL DEFAULT 0`)
	return nil
}
