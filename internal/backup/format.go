package backup

import (
	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/state"
)

// song is a track as written to a backup. It is matched back to a live
// track by path.
type song struct {
	Path   string  `json:"path"`
	Title  string  `json:"title"`
	Album  *string `json:"album"`
	Artist *string `json:"artist"`
}

type pinnedPlaylist struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

type queuesSection struct {
	Version  *int   `json:"version"`
	Playing  []song `json:"playing_queue"`
	Original []song `json:"original_playing_queue"`
}

type favoritesSection struct {
	Version   *int             `json:"version"`
	Songs     []song           `json:"favorite"`
	Playlists []pinnedPlaylist `json:"pined_playlists"`
}

type pathFilterSection struct {
	Version   *int     `json:"version"`
	Whitelist []string `json:"whitelist"`
	Blacklist []string `json:"blacklist"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func version() *int {
	v := Version
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func songsOf(tracks []playlist.Track) []song {
	out := make([]song, len(tracks))
	for i, t := range tracks {
		out[i] = song{Path: t.Path, Title: t.Title, Album: optional(t.Album), Artist: optional(t.Artist)}
	}
	return out
}

func (s song) track() playlist.Track {
	return playlist.Track{Path: s.Path, Title: s.Title, Album: deref(s.Album), Artist: deref(s.Artist)}
}

func pinnedOf(pinned []state.PinnedPlaylist) []pinnedPlaylist {
	out := make([]pinnedPlaylist, len(pinned))
	for i, p := range pinned {
		out[i] = pinnedPlaylist{Path: p.Path, Title: p.Name}
	}
	return out
}
