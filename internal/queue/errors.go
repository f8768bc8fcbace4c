package queue

import "errors"

var (
	// ErrIndexOutOfRange is returned when an index is outside [0, len).
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNoTracks is returned when an insert operation receives no tracks.
	ErrNoTracks = errors.New("no tracks")
	// ErrEmptyQueue is returned when stepping through an empty queue.
	ErrEmptyQueue = errors.New("queue is empty")
	// ErrEndOfQueue is returned when advancing past the last track without repeat.
	ErrEndOfQueue = errors.New("end of queue")
	// ErrStartOfQueue is returned when stepping back before the first track without repeat.
	ErrStartOfQueue = errors.New("start of queue")
	// ErrInvalidMode is returned for unknown shuffle or repeat modes.
	ErrInvalidMode = errors.New("invalid mode")
)
