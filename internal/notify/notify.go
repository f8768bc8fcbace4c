// Package notify provides desktop notifications via D-Bus.
package notify

import (
	"strings"

	"github.com/llehouerou/cadence/internal/playlist"
)

// AppName is the application name shown by the notification server.
const AppName = "cadence"

// Urgency represents freedesktop notification priority levels.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
	Transient  bool    // keep out of the notification history
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// nowPlayingTimeout is how long a track change notification stays up.
const nowPlayingTimeout int32 = 5000

// NowPlaying builds the notification announcing t. replaces is the ID of
// the previous now-playing notification, 0 if none.
func NowPlaying(t playlist.Track, replaces uint32) Notification {
	title := t.Title
	if title == "" {
		title = t.Path
	}
	var parts []string
	for _, s := range []string{t.Artist, t.Album} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return Notification{
		Title:      title,
		Body:       strings.Join(parts, " - "),
		Icon:       FindAlbumArtPath(t.Path),
		Timeout:    nowPlayingTimeout,
		ReplacesID: replaces,
		Urgency:    UrgencyLow,
		Transient:  true,
	}
}

// Disabled is a Notifier that drops everything.
type Disabled struct{}

func (Disabled) Notify(Notification) (uint32, error) { return 0, nil }

func (Disabled) Close(uint32) error { return nil }
