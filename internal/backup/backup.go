// Package backup exports and imports queue, favorites and path filter data
// as versioned JSON. Each section is independent: one malformed section
// never prevents the others from importing.
package backup

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/state"
)

// Version is the format version written to every section.
const Version = 0

var (
	ErrNothingToExport    = errors.New("nothing to export")
	ErrNothingToImport    = errors.New("nothing to import")
	ErrMalformed          = errors.New("malformed backup data")
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	ErrUnknownSection     = errors.New("unknown backup section")
)

// Section names one independently importable part of a backup.
type Section string

const (
	PlayingQueues Section = "PlayingQueues"
	Favorites     Section = "Favorites"
	PathFilter    Section = "PathFilter"
)

// Sections lists every section in the order a full backup holds them.
var Sections = []Section{PlayingQueues, Favorites, PathFilter}

// Store is the persistent data a backup reads and restores.
// *state.Manager implements it.
type Store interface {
	ResolvePath(path string, fallback playlist.Track) (playlist.Track, bool)
	Favorites(ctx context.Context) ([]playlist.Track, error)
	SetFavorites(ctx context.Context, tracks []playlist.Track) error
	PinnedPlaylists(ctx context.Context) ([]state.PinnedPlaylist, error)
	SetPinnedPlaylists(ctx context.Context, pinned []state.PinnedPlaylist) error
	PathFilters(ctx context.Context, kind state.FilterKind) ([]string, error)
	SetPathFilters(ctx context.Context, kind state.FilterKind, paths []string) error
}

// Queue is the live queue. *queue.Manager implements it.
type Queue interface {
	PlayingQueue() []playlist.Track
	OriginalQueue() []playlist.Track
	ReplaceQueues(playing, original []playlist.Track)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPlaylistMatcher overrides how a pinned playlist path is matched to an
// existing playlist. The default checks that the file exists.
func WithPlaylistMatcher(fn func(path string) bool) Option {
	return func(s *Service) { s.playlistExists = fn }
}

// Service runs exports and imports against a store and the live queue.
type Service struct {
	store          Store
	queue          Queue
	logger         zerolog.Logger
	playlistExists func(path string) bool
}

func New(store Store, q Queue, opts ...Option) *Service {
	s := &Service{
		store:          store,
		queue:          q,
		logger:         zerolog.Nop(),
		playlistExists: fileExists,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Status is the outcome of one section.
type Status int

const (
	StatusDone Status = iota
	StatusEmpty
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusDone:
		return "done"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result reports what happened to one section.
type Result struct {
	Section Section
	Status  Status
	Err     error
}

// Report holds one result per section, in section order.
type Report []Result

// Failed reports whether any section failed.
func (r Report) Failed() bool {
	for _, res := range r {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Get returns the result for sec.
func (r Report) Get(sec Section) (Result, bool) {
	for _, res := range r {
		if res.Section == sec {
			return res, true
		}
	}
	return Result{}, false
}

func resultOf(sec Section, err error) Result {
	switch {
	case err == nil:
		return Result{Section: sec, Status: StatusDone}
	case errors.Is(err, ErrNothingToExport), errors.Is(err, ErrNothingToImport):
		return Result{Section: sec, Status: StatusEmpty, Err: err}
	default:
		return Result{Section: sec, Status: StatusFailed, Err: err}
	}
}
