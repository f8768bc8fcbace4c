package queue

import "github.com/llehouerou/cadence/internal/playlist"

// Store persists the last known queue.
// Loads return only tracks that still resolve to live tracks.
type Store interface {
	Save(playing, original []playlist.Track) error
	LoadPlayingQueue() ([]playlist.Track, error)
	LoadOriginalQueue() ([]playlist.Track, error)
}

// SnapshotStore is implemented by stores that can also persist position and
// modes. SaveSnapshot writes queues and settings atomically.
type SnapshotStore interface {
	Store
	SaveSnapshot(s Snapshot) error
	// LoadSettings returns ok=false when nothing was saved yet.
	LoadSettings() (settings Settings, ok bool, err error)
}

// Transport starts playback of a track. Playback itself lives outside the
// queue; the manager only signals which track should start.
type Transport interface {
	Play(track playlist.Track) error
}
