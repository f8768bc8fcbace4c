package state

import (
	"context"
	"database/sql"

	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/queue"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	queue.SnapshotStore

	DB() *sql.DB
	ResolvePath(path string, fallback playlist.Track) (playlist.Track, bool)

	IsFavorite(ctx context.Context, t playlist.Track) (bool, error)
	ToggleFavorite(ctx context.Context, t playlist.Track) (bool, error)
	Favorites(ctx context.Context) ([]playlist.Track, error)
	SetFavorites(ctx context.Context, tracks []playlist.Track) error
	PinnedPlaylists(ctx context.Context) ([]PinnedPlaylist, error)
	SetPinnedPlaylists(ctx context.Context, pinned []PinnedPlaylist) error
	PathFilters(ctx context.Context, kind FilterKind) ([]string, error)
	SetPathFilters(ctx context.Context, kind FilterKind, paths []string) error

	Close() error
}

// ResolvePath matches path to a live track through the library.
func (m *Manager) ResolvePath(path string, fallback playlist.Track) (playlist.Track, bool) {
	return m.resolver.ResolvePath(path, fallback)
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
