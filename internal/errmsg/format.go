// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryDelete Op = "delete track from library"
	OpLibraryScan   Op = "scan library"
	OpLibraryLoad   Op = "load library"
	OpLibraryUpsert Op = "update library track"

	// Source operations
	OpSourceAdd    Op = "add library source"
	OpSourceRemove Op = "remove library source"
	OpSourceLoad   Op = "load library sources"

	// Queue operations
	OpQueueLoad    Op = "load queue"
	OpQueueSave    Op = "save queue"
	OpQueueAdd     Op = "add to queue"
	OpQueueOpen    Op = "open queue"
	OpQueueRemove  Op = "remove from queue"
	OpQueueMove    Op = "move queue item"
	OpQueueJump    Op = "jump to queue position"
	OpQueueSkip    Op = "skip track"
	OpQueueMode    Op = "change playback mode"
	OpQueueRefresh Op = "refresh queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"

	// Favorites and filters
	OpFavoriteToggle Op = "update favorites"
	OpFavoriteLoad   Op = "load favorites"
	OpPinnedLoad     Op = "load pinned playlists"
	OpFilterLoad     Op = "load path filters"

	// Backup
	OpBackupExport Op = "export backup"
	OpBackupImport Op = "import backup"

	// Now playing
	OpLyricsLoad  Op = "load lyrics"
	OpNotifySend  Op = "send notification"
	OpMediaKeys   Op = "start media controls"
	OpMediaUpdate Op = "update media controls"

	// File operations
	OpFileLoad Op = "load file"

	// Initialization
	OpConfigLoad Op = "load configuration"
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
