package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/cadence/internal/library"
	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/state"
)

var errNoTracks = errors.New("no playable tracks")

// pathFilter is the whitelist/blacklist pair applied to paths given on the
// command line. An empty whitelist allows everything not blacklisted.
type pathFilter struct {
	whitelist []string
	blacklist []string
}

func loadPathFilter(ctx context.Context, store *state.Manager) (pathFilter, error) {
	white, err := store.PathFilters(ctx, state.Whitelist)
	if err != nil {
		return pathFilter{}, err
	}
	black, err := store.PathFilters(ctx, state.Blacklist)
	if err != nil {
		return pathFilter{}, err
	}
	return pathFilter{whitelist: white, blacklist: black}, nil
}

func (f pathFilter) allows(path string) bool {
	for _, b := range f.blacklist {
		if under(b, path) {
			return false
		}
	}
	if len(f.whitelist) == 0 {
		return true
	}
	for _, w := range f.whitelist {
		if under(w, path) {
			return true
		}
	}
	return false
}

// under reports whether path is dir itself or inside it.
func under(dir, path string) bool {
	dir = filepath.Clean(dir)
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}

// collectTracks turns file and directory arguments into queue tracks.
// Directories contribute their music files in lexical order. Library files
// carry their library metadata; other files get their name as title.
func (s *session) collectTracks(ctx context.Context, args []string) ([]playlist.Track, error) {
	filter, err := loadPathFilter(ctx, s.store)
	if err != nil {
		return nil, err
	}

	var tracks []playlist.Track
	for _, arg := range args {
		paths, err := expandArg(ctx, arg)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			if !filter.allows(p) {
				continue
			}
			t, ok := s.store.ResolvePath(p, playlist.Track{Title: titleFromName(p)})
			if !ok {
				return nil, fmt.Errorf("%s: %w", p, fs.ErrNotExist)
			}
			tracks = append(tracks, t)
		}
	}
	if len(tracks) == 0 {
		return nil, errNoTracks
	}
	return tracks, nil
}

// resolveTrack resolves a single file argument, ignoring path filters.
func (s *session) resolveTrack(arg string) (playlist.Track, error) {
	p, err := filepath.Abs(arg)
	if err != nil {
		return playlist.Track{}, err
	}
	t, ok := s.store.ResolvePath(p, playlist.Track{Title: titleFromName(p)})
	if !ok {
		return playlist.Track{}, fmt.Errorf("%s: %w", p, fs.ErrNotExist)
	}
	return t, nil
}

func expandArg(ctx context.Context, arg string) ([]string, error) {
	p, err := filepath.Abs(arg)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{p}, nil
	}

	var paths []string
	err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() && library.IsMusicFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

func titleFromName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
