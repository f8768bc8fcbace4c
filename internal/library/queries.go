package library

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/cadence/internal/db"
)

const trackColumns = `id, path, mtime, artist, album_artist, album, title,
	disc_number, track_number, year, genre, duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (Track, error) {
	var t Track
	var disc, trackNum, year sql.NullInt64
	var genre sql.NullString
	var durationMs int64

	err := row.Scan(&t.ID, &t.Path, &t.Mtime, &t.Artist, &t.AlbumArtist, &t.Album, &t.Title,
		&disc, &trackNum, &year, &genre, &durationMs)
	if err != nil {
		return Track{}, err
	}
	t.DiscNumber = int(dbutil.NullInt64Value(disc))
	t.TrackNumber = int(dbutil.NullInt64Value(trackNum))
	t.Year = int(dbutil.NullInt64Value(year))
	t.Genre = dbutil.NullStringValue(genre)
	t.Duration = time.Duration(durationMs) * time.Millisecond
	return t, nil
}

func trackFromRow(row *sql.Row) (*Track, error) {
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TrackByID returns a track by its ID.
func (l *Library) TrackByID(id int64) (*Track, error) {
	return trackFromRow(l.db.QueryRow(`SELECT `+trackColumns+` FROM library_tracks WHERE id = ?`, id))
}

// TrackByPath returns a track by its file path.
func (l *Library) TrackByPath(path string) (*Track, error) {
	return trackByPathWithExecutor(context.Background(), l.db, path)
}

func trackByPathWithExecutor(ctx context.Context, ex executor, path string) (*Track, error) {
	return trackFromRow(ex.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM library_tracks WHERE path = ?`, path))
}

// Tracks returns every track, ordered by album artist, album, disc and number.
func (l *Library) Tracks() ([]Track, error) {
	rows, err := l.db.Query(`
		SELECT ` + trackColumns + `
		FROM library_tracks
		ORDER BY album_artist COLLATE NOCASE, album COLLATE NOCASE,
			disc_number, track_number, title COLLATE NOCASE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// AlbumTracks returns the tracks of one album in play order.
func (l *Library) AlbumTracks(albumArtist, album string) ([]Track, error) {
	rows, err := l.db.Query(`
		SELECT `+trackColumns+`
		FROM library_tracks
		WHERE album_artist = ? AND album = ?
		ORDER BY disc_number, track_number, title COLLATE NOCASE
	`, albumArtist, album)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// Count returns the number of tracks in the library.
func (l *Library) Count() (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM library_tracks`).Scan(&count)
	return count, err
}

// Upsert inserts t or updates the track with the same path, and returns its ID.
// The ID of an existing track is preserved.
func (l *Library) Upsert(t Track) (int64, error) {
	return upsertTrackWithExecutor(context.Background(), l.db, t)
}

func upsertTrackWithExecutor(ctx context.Context, ex executor, t Track) (int64, error) {
	now := time.Now().Unix()
	_, err := ex.ExecContext(ctx, `
		INSERT INTO library_tracks (path, mtime, artist, album_artist, album, title, disc_number, track_number, year, genre, duration_ms, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mtime = excluded.mtime,
			artist = excluded.artist,
			album_artist = excluded.album_artist,
			album = excluded.album,
			title = excluded.title,
			disc_number = excluded.disc_number,
			track_number = excluded.track_number,
			year = excluded.year,
			genre = excluded.genre,
			duration_ms = excluded.duration_ms,
			updated_at = excluded.updated_at
	`, t.Path, t.Mtime, t.Artist, t.AlbumArtist, t.Album, t.Title,
		t.DiscNumber, t.TrackNumber, t.Year, t.Genre, t.Duration.Milliseconds(), t.Mtime, now)
	if err != nil {
		return 0, err
	}

	var id int64
	err = ex.QueryRowContext(ctx, `SELECT id FROM library_tracks WHERE path = ?`, t.Path).Scan(&id)
	return id, err
}

// Delete removes a track by ID. Deleting an unknown ID is not an error.
func (l *Library) Delete(id int64) error {
	_, err := l.db.Exec(`DELETE FROM library_tracks WHERE id = ?`, id)
	return err
}

// DeleteByPath removes a track by path.
func (l *Library) DeleteByPath(path string) error {
	_, err := l.db.Exec(`DELETE FROM library_tracks WHERE path = ?`, path)
	return err
}
