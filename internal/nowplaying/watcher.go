package nowplaying

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/lyrics"
	"github.com/llehouerou/cadence/internal/notify"
	"github.com/llehouerou/cadence/internal/playback"
	"github.com/llehouerou/cadence/internal/playlist"
)

// Favorites answers whether a track is a favorite.
// *state.Manager implements it.
type Favorites interface {
	IsFavorite(ctx context.Context, t playlist.Track) (bool, error)
}

// Info is what is known about the current track. Lyrics and Favorite fill
// in as their lookups complete.
type Info struct {
	Track    playlist.Track
	Playing  bool // false when the queue is empty
	Lyrics   *lyrics.Lyrics
	Favorite bool
}

// Option configures a Watcher.
type Option func(*Watcher)

func WithLogger(l zerolog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// WithLyrics sets the lyrics finder. Without one, no lyrics are looked up.
func WithLyrics(f lyrics.Finder) Option {
	return func(w *Watcher) { w.lyrics = f }
}

// WithFavorites sets the favorite lookup. Without one, Favorite stays false.
func WithFavorites(f Favorites) Option {
	return func(w *Watcher) { w.favorites = f }
}

// WithNotifier sets where track change notifications go.
func WithNotifier(n notify.Notifier) Option {
	return func(w *Watcher) { w.notifier = n }
}

// Watcher derives the current track from a tracker and runs the per-track
// lookups whenever it changes.
type Watcher struct {
	tracker   *playback.Tracker
	lyrics    lyrics.Finder
	favorites Favorites
	notifier  notify.Notifier
	logger    zerolog.Logger

	// Info holds the latest now-playing info.
	Info *playback.Cell[Info]

	mu       sync.Mutex
	current  Info
	notifyID uint32 // Run goroutine only

	lyricsSlot   *Slot[playlist.Key, *lyrics.Lyrics]
	favoriteSlot *Slot[playlist.Key, bool]
}

func New(tracker *playback.Tracker, opts ...Option) *Watcher {
	w := &Watcher{
		tracker:  tracker,
		notifier: notify.Disabled{},
		logger:   zerolog.Nop(),
		Info:     playback.NewCell(Info{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.lyricsSlot = NewSlot(w.publishLyrics)
	w.favoriteSlot = NewSlot(w.publishFavorite)
	return w
}

// Run follows the tracker until ctx is done, then cancels pending lookups
// and waits for them.
//
// Only position updates are followed: every queue change is followed by a
// position update, and the queue cell is always set before the position
// cell.
func (w *Watcher) Run(ctx context.Context) {
	defer func() {
		w.lyricsSlot.Reset()
		w.favoriteSlot.Reset()
		w.lyricsSlot.Wait()
		w.favoriteSlot.Wait()
	}()

	playback.Watch(ctx, w.tracker.Position, func(position int) {
		track, ok := currentTrack(w.tracker.Queue.Get(), position)
		w.update(ctx, track, ok)
	})
}

func currentTrack(q playback.QueueState, position int) (playlist.Track, bool) {
	if position < 0 || position >= len(q.Playing) {
		return playlist.Track{}, false
	}
	return q.Playing[position], true
}

// update runs on the Run goroutine only. Slots are driven outside the
// watcher lock: publishers take the slot lock before the watcher lock.
func (w *Watcher) update(ctx context.Context, track playlist.Track, ok bool) {
	if !ok {
		if w.setCurrent(Info{}, false) {
			w.lyricsSlot.Reset()
			w.favoriteSlot.Reset()
		}
		return
	}

	if !w.setCurrent(Info{Track: track, Playing: true}, true) {
		return
	}
	w.logger.Debug().Str("path", track.Path).Int64("id", track.ID).Msg("now playing")

	key := track.Key()
	if w.lyrics != nil {
		w.lyricsSlot.Start(ctx, key, func(ctx context.Context, _ playlist.Key) (*lyrics.Lyrics, error) {
			return w.lyrics.Find(ctx, track.Path)
		})
	}
	if w.favorites != nil {
		w.favoriteSlot.Start(ctx, key, func(ctx context.Context, _ playlist.Key) (bool, error) {
			return w.favorites.IsFavorite(ctx, track)
		})
	}
	w.sendNotification(track)
}

// setCurrent installs info and reports whether the track key changed. When
// the key is unchanged only refreshed metadata is applied.
func (w *Watcher) setCurrent(info Info, playing bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !playing {
		if !w.current.Playing {
			return false
		}
		w.current = Info{}
		w.Info.Set(w.current)
		return true
	}
	if w.current.Playing && w.current.Track.Key() == info.Track.Key() {
		if w.current.Track != info.Track {
			w.current.Track = info.Track
			w.Info.Set(w.current)
		}
		return false
	}
	w.current = info
	w.Info.Set(w.current)
	return true
}

func (w *Watcher) sendNotification(track playlist.Track) {
	id, err := w.notifier.Notify(notify.NowPlaying(track, w.notifyID))
	if err != nil {
		w.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpNotifySend, err))
		return
	}
	if id != 0 {
		w.notifyID = id
	}
}

// publishLyrics runs with the lyrics slot locked, so key is still current
// in the slot.
func (w *Watcher) publishLyrics(key playlist.Key, l *lyrics.Lyrics, err error) {
	if err != nil {
		if !errors.Is(err, lyrics.ErrNotFound) && !errors.Is(err, context.Canceled) {
			w.logger.Debug().Err(err).Msg(errmsg.Format(errmsg.OpLyricsLoad, err))
		}
		return
	}
	w.apply(key, func(info *Info) { info.Lyrics = l })
}

func (w *Watcher) publishFavorite(key playlist.Key, fav bool, err error) {
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			w.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpFavoriteLoad, err))
		}
		return
	}
	w.apply(key, func(info *Info) { info.Favorite = fav })
}

// apply stores a lookup result if key is still the current track.
func (w *Watcher) apply(key playlist.Key, fn func(*Info)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.current.Playing || w.current.Track.Key() != key {
		return
	}
	fn(&w.current)
	w.Info.Set(w.current)
}

// Current returns the latest now-playing info.
func (w *Watcher) Current() Info {
	return w.Info.Get()
}
