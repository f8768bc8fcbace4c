// Package mpris exposes the queue to desktop media controls (media keys,
// lock screen widgets) over the MPRIS D-Bus interface. It is a no-op on
// platforms without D-Bus.
package mpris

import (
	"github.com/llehouerou/cadence/internal/queue"
)

// BusName is the MPRIS player name, registered as
// org.mpris.MediaPlayer2.<BusName>.
const BusName = "cadence"

// Queue is the read side of the queue. *queue.Manager implements it.
type Queue interface {
	Snapshot() queue.Snapshot
	AddObserver(o queue.Observer) bool
	RemoveObserver(o queue.Observer) bool
}

// Controls are the actions media controls can trigger.
// *remote.Remote implements it.
type Controls interface {
	Next() bool
	Previous() bool
	JumpTo(index int) bool
	SetShuffle(mode queue.ShuffleMode) bool
	SetRepeat(mode queue.RepeatMode) bool
}
