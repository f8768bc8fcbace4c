package library

import (
	"os"

	"github.com/llehouerou/cadence/internal/playlist"
)

// Resolve maps a persisted track to the live track it refers to.
//
// Library tracks (ID > 0) resolve by ID only. Tracks without an ID resolve
// by path through the library, then to themselves if the file still exists
// on disk. ok is false when the track is gone.
func (l *Library) Resolve(t playlist.Track) (live playlist.Track, ok bool) {
	if t.ID > 0 {
		lt, err := l.TrackByID(t.ID)
		if err != nil {
			return playlist.Track{}, false
		}
		return lt.Playable(), true
	}
	return l.ResolvePath(t.Path, t)
}

// ResolvePath finds the live track at path. fallback is returned as is
// when the path is not in the library but the file exists.
func (l *Library) ResolvePath(path string, fallback playlist.Track) (playlist.Track, bool) {
	if path == "" {
		return playlist.Track{}, false
	}
	if lt, err := l.TrackByPath(path); err == nil {
		return lt.Playable(), true
	}
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		fallback.Path = path
		return fallback, true
	}
	return playlist.Track{}, false
}
