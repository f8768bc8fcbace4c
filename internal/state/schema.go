package state

import (
	"database/sql"

	"github.com/llehouerou/cadence/internal/library"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	if err := library.InitSchema(db); err != nil {
		return err
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT -1,
			repeat_mode INTEGER NOT NULL DEFAULT 0,
			shuffle INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS queue_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			queue TEXT NOT NULL,
			position INTEGER NOT NULL,
			track_id INTEGER,
			path TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			track_number INTEGER,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			UNIQUE(queue, position)
		);

		CREATE INDEX IF NOT EXISTS idx_queue_tracks_position ON queue_tracks(queue, position);

		CREATE TABLE IF NOT EXISTS favorites (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			track_id INTEGER,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			artist TEXT,
			album TEXT,
			added_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_favorites_track ON favorites(track_id);

		CREATE TABLE IF NOT EXISTS pinned_playlists (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			pinned_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS path_filters (
			kind TEXT NOT NULL CHECK (kind IN ('whitelist', 'blacklist')),
			path TEXT NOT NULL,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (kind, path)
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
