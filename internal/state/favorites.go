package state

import (
	"context"
	"database/sql"
	"time"

	dbutil "github.com/llehouerou/cadence/internal/db"
	"github.com/llehouerou/cadence/internal/playlist"
)

// IsFavorite reports whether t is a favorite. Library tracks match by ID,
// others by path.
func (m *Manager) IsFavorite(ctx context.Context, t playlist.Track) (bool, error) {
	var count int
	err := m.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites
		WHERE (track_id IS NOT NULL AND track_id = ?) OR path = ?
	`, t.ID, t.Path).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddFavorite marks t as a favorite. Adding an existing favorite refreshes
// its metadata and keeps its original date.
func (m *Manager) AddFavorite(ctx context.Context, t playlist.Track) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO favorites (track_id, path, title, artist, album, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			track_id = excluded.track_id,
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album
	`, dbutil.PositiveID(t.ID), t.Path, t.Title, t.Artist, t.Album, time.Now().Unix())
	return err
}

// RemoveFavorite unmarks t.
func (m *Manager) RemoveFavorite(ctx context.Context, t playlist.Track) error {
	_, err := m.db.ExecContext(ctx, `
		DELETE FROM favorites
		WHERE (track_id IS NOT NULL AND track_id = ?) OR path = ?
	`, t.ID, t.Path)
	return err
}

// ToggleFavorite adds t to favorites if not there, removes it otherwise.
// Returns the new favorite status (true = now favorited).
func (m *Manager) ToggleFavorite(ctx context.Context, t playlist.Track) (bool, error) {
	isFav, err := m.IsFavorite(ctx, t)
	if err != nil {
		return false, err
	}
	if isFav {
		return false, m.RemoveFavorite(ctx, t)
	}
	return true, m.AddFavorite(ctx, t)
}

// Favorites returns the favorites in the order they were added. Entries
// that no longer resolve to a live track are skipped.
func (m *Manager) Favorites(ctx context.Context) ([]playlist.Track, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT track_id, path, title, artist, album
		FROM favorites
		ORDER BY added_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stored []playlist.Track
	for rows.Next() {
		var t playlist.Track
		var trackID sql.NullInt64
		var artist, album sql.NullString
		if err := rows.Scan(&trackID, &t.Path, &t.Title, &artist, &album); err != nil {
			return nil, err
		}
		t.ID = dbutil.NullInt64Value(trackID)
		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		stored = append(stored, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return m.resolveAll(stored), nil
}

// SetFavorites replaces all favorites with tracks.
func (m *Manager) SetFavorites(ctx context.Context, tracks []playlist.Track) error {
	return dbutil.WithTxContext(ctx, m.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO favorites (track_id, path, title, artist, album, added_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		now := time.Now().Unix()
		for _, t := range tracks {
			_, err := stmt.ExecContext(ctx, dbutil.PositiveID(t.ID), t.Path, t.Title, t.Artist, t.Album, now)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
