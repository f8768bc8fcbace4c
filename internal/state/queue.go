package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/cadence/internal/db"
	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/queue"
)

// Queue names in queue_tracks.
const (
	queuePlaying  = "playing"
	queueOriginal = "original"
)

var _ queue.SnapshotStore = (*Manager)(nil)

// Save replaces both persisted queues. Settings are left untouched.
func (m *Manager) Save(playing, original []playlist.Track) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		return saveQueues(tx, playing, original)
	})
}

// SaveSnapshot replaces both queues and the settings in one transaction.
func (m *Manager) SaveSnapshot(s queue.Snapshot) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if err := saveQueues(tx, s.Playing, s.Original); err != nil {
			return err
		}
		return saveSettings(tx, s.Settings())
	})
}

// LoadPlayingQueue returns the persisted playing queue. Tracks that no
// longer resolve to a live track are dropped.
func (m *Manager) LoadPlayingQueue() ([]playlist.Track, error) {
	return m.loadQueue(queuePlaying)
}

// LoadOriginalQueue returns the persisted original queue. Tracks that no
// longer resolve to a live track are dropped.
func (m *Manager) LoadOriginalQueue() ([]playlist.Track, error) {
	return m.loadQueue(queueOriginal)
}

// LoadSettings returns the persisted position and modes. The position is
// shifted back by the stale playing rows before it, so it points at the same
// track in the queue LoadPlayingQueue returns.
func (m *Manager) LoadSettings() (queue.Settings, bool, error) {
	var s queue.Settings
	var repeat, shuffle int
	row := m.db.QueryRow(`SELECT current_index, repeat_mode, shuffle FROM queue_state WHERE id = 1`)
	err := row.Scan(&s.Position, &repeat, &shuffle)
	if errors.Is(err, sql.ErrNoRows) {
		return queue.Settings{Position: -1}, false, nil
	}
	if err != nil {
		return queue.Settings{}, false, err
	}
	s.Repeat = queue.RepeatMode(repeat)
	s.Shuffle = queue.ShuffleMode(shuffle)

	if s.Position > 0 {
		stored, err := loadQueueTracks(m.db, queuePlaying)
		if err != nil {
			return queue.Settings{}, false, err
		}
		s.Position -= m.staleBefore(stored, s.Position)
	}
	return s, true, nil
}

// staleBefore counts the tracks in stored[:n] that no longer resolve.
func (m *Manager) staleBefore(stored []playlist.Track, n int) int {
	stale := 0
	for _, t := range stored[:min(n, len(stored))] {
		if _, ok := m.resolver.Resolve(t); !ok {
			stale++
		}
	}
	return stale
}

func (m *Manager) loadQueue(name string) ([]playlist.Track, error) {
	stored, err := loadQueueTracks(m.db, name)
	if err != nil {
		return nil, err
	}
	return m.resolveAll(stored), nil
}

func (m *Manager) resolveAll(stored []playlist.Track) []playlist.Track {
	live := make([]playlist.Track, 0, len(stored))
	for _, t := range stored {
		if resolved, ok := m.resolver.Resolve(t); ok {
			live = append(live, resolved)
		}
	}
	return live
}

func loadQueueTracks(db *sql.DB, name string) ([]playlist.Track, error) {
	rows, err := db.Query(`
		SELECT track_id, path, title, artist, album, track_number, duration_ms
		FROM queue_tracks
		WHERE queue = ?
		ORDER BY position
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []playlist.Track
	for rows.Next() {
		var t playlist.Track
		var trackID, trackNumber sql.NullInt64
		var artist, album sql.NullString
		var durationMs int64

		if err := rows.Scan(&trackID, &t.Path, &t.Title, &artist, &album, &trackNumber, &durationMs); err != nil {
			return nil, err
		}
		t.ID = dbutil.NullInt64Value(trackID)
		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		t.TrackNumber = int(dbutil.NullInt64Value(trackNumber))
		t.Duration = time.Duration(durationMs) * time.Millisecond
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func saveQueues(tx *sql.Tx, playing, original []playlist.Track) error {
	// Clear existing queue
	if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO queue_tracks (queue, position, track_id, path, title, artist, album, track_number, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for name, tracks := range map[string][]playlist.Track{queuePlaying: playing, queueOriginal: original} {
		for i, t := range tracks {
			_, err = stmt.Exec(name, i, dbutil.PositiveID(t.ID), t.Path, t.Title, t.Artist, t.Album,
				t.TrackNumber, t.Duration.Milliseconds())
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func saveSettings(tx *sql.Tx, s queue.Settings) error {
	_, err := tx.Exec(`
		INSERT INTO queue_state (id, current_index, repeat_mode, shuffle)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_index = excluded.current_index,
			repeat_mode = excluded.repeat_mode,
			shuffle = excluded.shuffle
	`, s.Position, int(s.Repeat), int(s.Shuffle))
	return err
}

// QueueSize returns the number of persisted playing-queue rows, resolvable
// or not.
func (m *Manager) QueueSize(ctx context.Context) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM queue_tracks WHERE queue = ?`, queuePlaying).Scan(&n)
	return n, err
}
