package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/playlist"
	"github.com/llehouerou/cadence/internal/queue"
	"github.com/llehouerou/cadence/internal/remote"
	"github.com/llehouerou/cadence/internal/state"
)

// session is an open store with the queue restored from it.
type session struct {
	store  *state.Manager
	queue  *queue.Manager
	remote *remote.Remote
}

// logTransport stands in for an audio backend: it records which track
// should start.
type logTransport struct {
	logger zerolog.Logger
}

func (t logTransport) Play(track playlist.Track) error {
	t.logger.Info().
		Str("path", track.Path).
		Str("title", track.Title).
		Msg("play")
	return nil
}

func (e *env) openSession() (*session, error) {
	store, err := state.Open(e.databasePath())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errmsg.OpInitialize, err)
	}

	if len(e.cfg.LibrarySources) > 0 {
		if err := store.Library().MigrateSources(e.cfg.LibrarySources); err != nil {
			e.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpSourceAdd, err))
		}
	}

	qc := e.cfg.GetQueueConfig()
	q := queue.New(store,
		queue.WithLogger(e.logger),
		queue.WithHistorySize(qc.HistorySize),
		queue.WithSaveDebounce(qc.SaveDebounce()),
		queue.WithSlowObserverThreshold(qc.SlowObserver()),
		queue.WithTransport(logTransport{logger: e.logger}),
	)
	if err := q.Restore(); err != nil {
		// The store keeps working; the queue just starts empty.
		e.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpQueueLoad, err))
	}

	return &session{
		store:  store,
		queue:  q,
		remote: remote.New(q, remote.WithLogger(e.logger)),
	}, nil
}

// Close flushes the queue to the store and closes it.
func (s *session) Close() error {
	qerr := s.queue.Close()
	serr := s.store.Close()
	return errors.Join(qerr, serr)
}

// withSession runs fn against the shared session when one is open, or
// against a fresh one closed afterwards.
func (e *env) withSession(fn func(s *session) error) error {
	if e.shared != nil {
		return fn(e.shared)
	}
	s, err := e.openSession()
	if err != nil {
		return err
	}
	runErr := fn(s)
	if err := s.Close(); err != nil {
		e.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpQueueSave, err))
	}
	return runErr
}
