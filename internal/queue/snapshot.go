package queue

import (
	"slices"

	"github.com/llehouerou/cadence/internal/playlist"
)

// Snapshot is the queue state as of one committed mutation.
// Slices held by a published snapshot are never modified.
type Snapshot struct {
	Playing  []playlist.Track
	Original []playlist.Track
	Position int // -1 if nothing selected
	Shuffle  ShuffleMode
	Repeat   RepeatMode
}

// Len returns the number of tracks in the playing queue.
func (s Snapshot) Len() int {
	return len(s.Playing)
}

// Current returns the track at the current position.
func (s Snapshot) Current() (playlist.Track, bool) {
	if s.Position < 0 || s.Position >= len(s.Playing) {
		return playlist.Track{}, false
	}
	return s.Playing[s.Position], true
}

// Clone returns a deep copy whose slices the caller may modify.
func (s Snapshot) Clone() Snapshot {
	s.Playing = slices.Clone(s.Playing)
	s.Original = slices.Clone(s.Original)
	return s
}

// Settings are the scalar parts of a snapshot.
type Settings struct {
	Position int
	Shuffle  ShuffleMode
	Repeat   RepeatMode
}

// Settings returns the scalar parts of s.
func (s Snapshot) Settings() Settings {
	return Settings{Position: s.Position, Shuffle: s.Shuffle, Repeat: s.Repeat}
}
