package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/lyrics"
	"github.com/llehouerou/cadence/internal/mpris"
	"github.com/llehouerou/cadence/internal/notify"
	"github.com/llehouerou/cadence/internal/nowplaying"
	"github.com/llehouerou/cadence/internal/playback"
	"github.com/llehouerou/cadence/internal/playlist"
)

func newDaemonCmd(e *env) *cobra.Command {
	var noInput bool
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Keep the queue live for media keys and notifications",
		Long: `Run until interrupted, holding the queue in memory.

The daemon answers media keys over MPRIS, sends a desktop notification on
every track change and looks up lyrics next to the audio file. Queue
commands typed on stdin ("next", "add --next song.flac", "undo", ...)
run against the live queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := e.openSession()
			if err != nil {
				return err
			}
			defer func() {
				if err := s.Close(); err != nil {
					e.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpQueueSave, err))
				}
			}()

			var in io.Reader
			if !noInput {
				in = cmd.InOrStdin()
			}
			return e.runDaemon(ctx, s, &syncWriter{w: cmd.OutOrStdout()}, in)
		},
	}
	cmd.Flags().BoolVar(&noInput, "no-input", false, "do not read commands from stdin")
	return cmd
}

// runDaemon follows the queue until ctx is done. Commands are read from in
// when it is not nil.
func (e *env) runDaemon(ctx context.Context, s *session, out io.Writer, in io.Reader) error {
	tracker := playback.NewTracker()
	tracker.Attach(s.queue)
	defer func() {
		tracker.Unregister(s.queue)
		tracker.Close()
	}()

	notifier := notify.Notifier(notify.Disabled{})
	if e.cfg.NotificationsEnabled() {
		n, err := notify.New()
		if err != nil {
			e.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpNotifySend, err))
		} else {
			notifier = n
		}
	}

	watcher := nowplaying.New(tracker,
		nowplaying.WithLogger(e.logger),
		nowplaying.WithLyrics(lyrics.Files{}),
		nowplaying.WithFavorites(s.store),
		nowplaying.WithNotifier(notifier),
	)

	if e.cfg.MPRISEnabled() {
		adapter, err := mpris.New(s.queue, s.remote, e.logger)
		if err != nil {
			e.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpMediaKeys, err))
		} else {
			defer adapter.Close()
		}
	}

	var wg sync.WaitGroup
	wg.Go(func() { watcher.Run(ctx) })
	wg.Go(func() { followNowPlaying(ctx, watcher, out) })
	g := &gate{}
	if in != nil {
		// Not waited for: a blocked read cannot be interrupted. The gate
		// keeps it from touching s once we return.
		go e.console(ctx, s, g, in, out)
	}

	e.logger.Info().Int("tracks", s.queue.Len()).Msg("daemon started")
	<-ctx.Done()
	wg.Wait()
	g.close()
	e.logger.Info().Msg("daemon stopped")
	return nil
}

// followNowPlaying prints a line whenever the current track changes.
func followNowPlaying(ctx context.Context, w *nowplaying.Watcher, out io.Writer) {
	var last playlist.Key
	var shown bool
	playback.Watch(ctx, w.Info, func(info nowplaying.Info) {
		if !info.Playing {
			if shown {
				fmt.Fprintln(out, mutedStyle.Render("■ queue empty"))
			}
			shown = false
			return
		}
		key := info.Track.Key()
		if shown && key == last {
			return
		}
		last, shown = key, true
		fmt.Fprintf(out, "%s %s\n", currentStyle.Render("♪"), trackLabel(info.Track))
	})
}

// console runs one queue command per input line against s, until g is
// closed.
func (e *env) console(ctx context.Context, s *session, g *gate, in io.Reader, out io.Writer) {
	ce := &env{flags: e.flags, cfg: e.cfg, logger: e.logger, shared: s}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}

		ran := g.do(func() {
			if ctx.Err() != nil {
				return
			}
			cmd := newQueueCmd(ce)
			cmd.Use = "cadence"
			cmd.AddCommand(newFavoritesCmd(ce))
			cmd.SetArgs(args)
			cmd.SetOut(out)
			cmd.SetErr(out)
			cmd.SilenceUsage = true
			_ = cmd.ExecuteContext(ctx) // cobra already printed the error
		})
		if !ran || ctx.Err() != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		e.logger.Warn().Err(err).Msg("console input closed")
	}
}

// gate runs console commands until the daemon shuts down. close waits for
// a running command and refuses later ones.
type gate struct {
	mu     sync.Mutex
	closed bool
}

func (g *gate) do(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	fn()
	return true
}

func (g *gate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

// syncWriter serializes writes from the console and the now-playing
// follower.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
