//go:build linux

package mpris

import (
	"fmt"
	"hash/fnv"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/notify"
	"github.com/llehouerou/cadence/internal/queue"
)

// Adapter serves the queue over MPRIS and signals clients when the current
// track or the modes change.
type Adapter struct {
	server *server.Server
	queue  Queue
	relay  *relay
	stop   chan struct{}
	logger zerolog.Logger
}

// New creates and starts an MPRIS adapter.
func New(q Queue, c Controls, logger zerolog.Logger) (*Adapter, error) {
	a := &Adapter{queue: q, stop: make(chan struct{}), logger: logger}
	a.server = server.NewServer(BusName, &rootAdapter{}, &playerAdapter{queue: q, controls: c})
	a.relay = newRelay(events.NewEventHandler(a.server).Player, logger)

	q.AddObserver(a.relay.observer)
	go a.relay.run(a.stop)
	go func() {
		if err := a.server.Listen(); err != nil {
			a.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpMediaKeys, err))
		}
	}()
	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	a.queue.RemoveObserver(a.relay.observer)
	close(a.stop)
	<-a.relay.done
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }

// Quit is ignored; the daemon manages its own lifecycle.
func (r *rootAdapter) Quit() error { return nil }

func (r *rootAdapter) CanQuit() (bool, error) { return false, nil }

func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) { return "Cadence", nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/opus", "audio/mp4"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter plus the loop
// status and shuffle extensions. The queue has no transport of its own:
// Play restarts the current track and pause, stop and seek are refused.
type playerAdapter struct {
	queue    Queue
	controls Controls
}

func (p *playerAdapter) Next() error {
	p.controls.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.controls.Previous()
	return nil
}

func (p *playerAdapter) Play() error {
	snap := p.queue.Snapshot()
	if snap.Position >= 0 {
		p.controls.JumpTo(snap.Position)
	}
	return nil
}

func (p *playerAdapter) PlayPause() error { return p.Play() }

func (p *playerAdapter) Pause() error { return nil }

func (p *playerAdapter) Stop() error { return nil }

func (p *playerAdapter) Seek(_ types.Microseconds) error { return nil }

func (p *playerAdapter) SetPosition(_ string, _ types.Microseconds) error { return nil }

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error { return nil }

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	if _, ok := p.queue.Snapshot().Current(); ok {
		return types.PlaybackStatusPlaying, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) SetRate(_ float64) error { return nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track, ok := p.queue.Snapshot().Current()
	if !ok {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId:     dbus.ObjectPath(formatTrackID(track.Path)),
		Length:      types.Microseconds(track.Duration.Microseconds()),
		Title:       track.Title,
		Album:       track.Album,
		TrackNumber: track.TrackNumber,
	}
	if track.Artist != "" {
		meta.Artist = []string{track.Artist}
	}
	if art := notify.FindAlbumArtPath(track.Path); art != "" {
		meta.ArtUrl = "file://" + art
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) { return 1.0, nil }

func (p *playerAdapter) SetVolume(_ float64) error { return nil }

func (p *playerAdapter) Position() (int64, error) { return 0, nil }

func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) CanGoNext() (bool, error) {
	snap := p.queue.Snapshot()
	if snap.Len() == 0 {
		return false, nil
	}
	return snap.Repeat != queue.RepeatNone || snap.Position < snap.Len()-1, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	snap := p.queue.Snapshot()
	if snap.Len() == 0 {
		return false, nil
	}
	return snap.Repeat != queue.RepeatNone || snap.Position > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.queue.Snapshot().Len() > 0, nil
}

func (p *playerAdapter) CanPause() (bool, error) { return false, nil }

func (p *playerAdapter) CanSeek() (bool, error) { return false, nil }

func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	return loopStatus(p.queue.Snapshot().Repeat), nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	mode, err := repeatMode(status)
	if err != nil {
		return err
	}
	p.controls.SetRepeat(mode)
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.queue.Snapshot().Shuffle == queue.ShuffleOn, nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	mode := queue.ShuffleNone
	if shuffle {
		mode = queue.ShuffleOn
	}
	p.controls.SetShuffle(mode)
	return nil
}

func loopStatus(mode queue.RepeatMode) types.LoopStatus {
	switch mode {
	case queue.RepeatOne:
		return types.LoopStatusTrack
	case queue.RepeatAll:
		return types.LoopStatusPlaylist
	default:
		return types.LoopStatusNone
	}
}

func repeatMode(status types.LoopStatus) (queue.RepeatMode, error) {
	switch status {
	case types.LoopStatusNone:
		return queue.RepeatNone, nil
	case types.LoopStatusTrack:
		return queue.RepeatOne, nil
	case types.LoopStatusPlaylist:
		return queue.RepeatAll, nil
	}
	return queue.RepeatNone, fmt.Errorf("unknown loop status %q", status)
}

func formatTrackID(path string) string {
	h := fnv.New64a()
	h.Write([]byte(path))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
