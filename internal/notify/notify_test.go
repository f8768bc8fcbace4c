package notify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llehouerou/cadence/internal/playlist"
)

func TestUrgencyValues(t *testing.T) {
	// Verify urgency constants match the D-Bus notification values
	if UrgencyLow != 0 {
		t.Errorf("UrgencyLow = %d, want 0", UrgencyLow)
	}
	if UrgencyNormal != 1 {
		t.Errorf("UrgencyNormal = %d, want 1", UrgencyNormal)
	}
	if UrgencyCritical != 2 {
		t.Errorf("UrgencyCritical = %d, want 2", UrgencyCritical)
	}
}

func TestNotificationZeroValue(t *testing.T) {
	var n Notification
	if n.Urgency != UrgencyLow {
		t.Errorf("zero value Urgency = %d, want UrgencyLow (0)", n.Urgency)
	}
	if n.Timeout != 0 {
		t.Error("zero value Timeout should be 0 (never expire)")
	}
	if n.ReplacesID != 0 {
		t.Error("zero value ReplacesID should be 0 (new notification)")
	}
}

func TestNowPlaying(t *testing.T) {
	dir := t.TempDir()
	trackPath := filepath.Join(dir, "01.mp3")
	coverPath := filepath.Join(dir, "cover.png")
	if err := os.WriteFile(coverPath, []byte{}, 0o600); err != nil {
		t.Fatal(err)
	}

	n := NowPlaying(playlist.Track{Path: trackPath, Title: "Song", Artist: "Artist", Album: "Album"}, 7)
	if n.Title != "Song" {
		t.Errorf("Title = %q, want Song", n.Title)
	}
	if n.Body != "Artist - Album" {
		t.Errorf("Body = %q, want %q", n.Body, "Artist - Album")
	}
	if n.Icon != coverPath {
		t.Errorf("Icon = %q, want %q", n.Icon, coverPath)
	}
	if n.ReplacesID != 7 {
		t.Errorf("ReplacesID = %d, want 7", n.ReplacesID)
	}
	if !n.Transient {
		t.Error("now-playing notification should be transient")
	}

	bare := NowPlaying(playlist.Track{Path: "/x/y.mp3"}, 0)
	if bare.Title != "/x/y.mp3" || bare.Body != "" {
		t.Errorf("bare track notification = %+v", bare)
	}
}

func TestDisabled(t *testing.T) {
	var n Notifier = Disabled{}
	id, err := n.Notify(Notification{Title: "x"})
	if id != 0 || err != nil {
		t.Errorf("Notify = %d, %v; want 0, nil", id, err)
	}
}
