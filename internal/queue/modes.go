package queue

import (
	"fmt"
	"strings"
)

// ShuffleMode defines whether the playing order is a permutation of the
// original order.
type ShuffleMode int

const (
	ShuffleNone ShuffleMode = iota
	ShuffleOn
)

// String returns the shuffle mode name.
func (m ShuffleMode) String() string {
	switch m {
	case ShuffleNone:
		return "Off"
	case ShuffleOn:
		return "On"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is a known mode.
func (m ShuffleMode) Valid() bool {
	return m == ShuffleNone || m == ShuffleOn
}

// Toggle returns the opposite mode.
func (m ShuffleMode) Toggle() ShuffleMode {
	if m == ShuffleOn {
		return ShuffleNone
	}
	return ShuffleOn
}

// RepeatMode defines the wrap-around behavior when advancing.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "Off"
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is a known mode.
func (m RepeatMode) Valid() bool {
	return m >= RepeatNone && m <= RepeatOne
}

// Next cycles Off -> All -> One -> Off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatNone:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatNone
	}
}

// ParseShuffleMode parses "on"/"off" (and common synonyms).
func ParseShuffleMode(s string) (ShuffleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "shuffle", "1":
		return ShuffleOn, nil
	case "off", "false", "none", "0":
		return ShuffleNone, nil
	}
	return ShuffleNone, fmt.Errorf("%w: shuffle %q", ErrInvalidMode, s)
}

// ParseRepeatMode parses "off", "all" or "one".
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return RepeatNone, nil
	case "all":
		return RepeatAll, nil
	case "one", "track":
		return RepeatOne, nil
	}
	return RepeatNone, fmt.Errorf("%w: repeat %q", ErrInvalidMode, s)
}

// Direction is the direction of a queue step.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) delta() int {
	if d == Backward {
		return -1
	}
	return 1
}
