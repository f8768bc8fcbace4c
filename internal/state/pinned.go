package state

import (
	"context"
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/cadence/internal/db"
)

// PinnedPlaylist is a playlist file pinned to the top of the playlist list.
type PinnedPlaylist struct {
	Path string
	Name string
}

// PinnedPlaylists returns pinned playlists in pin order.
func (m *Manager) PinnedPlaylists(ctx context.Context) ([]PinnedPlaylist, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT path, name FROM pinned_playlists ORDER BY pinned_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pinned []PinnedPlaylist
	for rows.Next() {
		var p PinnedPlaylist
		if err := rows.Scan(&p.Path, &p.Name); err != nil {
			return nil, err
		}
		pinned = append(pinned, p)
	}
	return pinned, rows.Err()
}

// PinPlaylist pins p. Pinning the same path twice is a no-op.
func (m *Manager) PinPlaylist(ctx context.Context, p PinnedPlaylist) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO pinned_playlists (path, name, pinned_at) VALUES (?, ?, ?)
	`, p.Path, p.Name, time.Now().Unix())
	return err
}

func (m *Manager) UnpinPlaylist(ctx context.Context, path string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM pinned_playlists WHERE path = ?`, path)
	return err
}

// SetPinnedPlaylists replaces the pinned playlists, keeping the given order.
func (m *Manager) SetPinnedPlaylists(ctx context.Context, pinned []PinnedPlaylist) error {
	return dbutil.WithTxContext(ctx, m.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pinned_playlists`); err != nil {
			return err
		}
		now := time.Now().Unix()
		for _, p := range pinned {
			_, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO pinned_playlists (path, name, pinned_at) VALUES (?, ?, ?)
			`, p.Path, p.Name, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
