package playlist

import "time"

// Track represents a single playable item.
// Tracks are values: a library rescan replaces them wholesale.
type Track struct {
	ID          int64  // library track ID (0 if from filesystem)
	Path        string // file path for playback
	Title       string
	Artist      string
	Album       string
	TrackNumber int
	Duration    time.Duration
}

// Key identifies the logical track behind a Track value.
type Key struct {
	ID   int64
	Path string
}

// Key returns the identity of the track.
// Library tracks are identified by ID, filesystem tracks by path.
func (t Track) Key() Key {
	if t.ID > 0 {
		return Key{ID: t.ID}
	}
	return Key{Path: t.Path}
}

// IsZero reports whether t is the empty track.
func (t Track) IsZero() bool {
	return t == Track{}
}

// List holds an ordered collection of items.
type List[T any] struct {
	items []T
}

// NewList creates a list holding a copy of items.
func NewList[T any](items ...T) *List[T] {
	l := &List[T]{items: make([]T, 0, len(items))}
	l.items = append(l.items, items...)
	return l
}

// Add appends items to the list.
func (l *List[T]) Add(items ...T) {
	l.items = append(l.items, items...)
}

// Insert inserts items before index. index == Len() appends.
// Returns false if index is out of bounds.
func (l *List[T]) Insert(index int, items ...T) bool {
	if index < 0 || index > len(l.items) {
		return false
	}
	if len(items) == 0 {
		return true
	}
	grown := make([]T, 0, len(l.items)+len(items))
	grown = append(grown, l.items[:index]...)
	grown = append(grown, items...)
	grown = append(grown, l.items[index:]...)
	l.items = grown
	return true
}

// Remove removes the item at the given index.
// Returns false if index is out of bounds.
func (l *List[T]) Remove(index int) bool {
	if index < 0 || index >= len(l.items) {
		return false
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return true
}

// Clear removes all items from the list.
func (l *List[T]) Clear() {
	l.items = l.items[:0]
}

// Set replaces the contents of the list with a copy of items.
func (l *List[T]) Set(items []T) {
	l.items = append(make([]T, 0, len(items)), items...)
}

// Items returns a copy of all items.
func (l *List[T]) Items() []T {
	result := make([]T, len(l.items))
	copy(result, l.items)
	return result
}

// At returns the item at the given index.
func (l *List[T]) At(index int) (T, bool) {
	if index < 0 || index >= len(l.items) {
		var zero T
		return zero, false
	}
	return l.items[index], true
}

// IndexFunc returns the index of the first item satisfying match, or -1.
func (l *List[T]) IndexFunc(match func(T) bool) int {
	for i, item := range l.items {
		if match(item) {
			return i
		}
	}
	return -1
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Move moves the item at fromIndex to toIndex.
// Returns false if either index is out of bounds.
func (l *List[T]) Move(fromIndex, toIndex int) bool {
	if fromIndex < 0 || fromIndex >= len(l.items) {
		return false
	}
	if toIndex < 0 || toIndex >= len(l.items) {
		return false
	}
	if fromIndex == toIndex {
		return true
	}

	item := l.items[fromIndex]
	l.items = append(l.items[:fromIndex], l.items[fromIndex+1:]...)
	l.items = append(l.items[:toIndex], append([]T{item}, l.items[toIndex:]...)...)
	return true
}
