package playlist

// History keeps a bounded list of states for undo/redo.
// States are stored as given; callers push values they will not mutate.
type History[T any] struct {
	states  []T
	current int // index of current state (-1 = before any state)
	maxSize int
}

// NewHistory creates a new history with the given maximum size.
func NewHistory[T any](maxSize int) *History[T] {
	if maxSize < 1 {
		maxSize = 1
	}
	return &History[T]{
		states:  make([]T, 0, maxSize),
		current: -1,
		maxSize: maxSize,
	}
}

// Push records a new state.
// Clears any redo states and trims if over limit.
func (h *History[T]) Push(state T) {
	if h.current < len(h.states)-1 {
		h.states = h.states[:h.current+1]
	}

	h.states = append(h.states, state)
	h.current = len(h.states) - 1

	if len(h.states) > h.maxSize {
		excess := len(h.states) - h.maxSize
		h.states = h.states[excess:]
		h.current -= excess
	}
}

// Reset drops every state and records state as the only one.
func (h *History[T]) Reset(state T) {
	h.states = h.states[:0]
	h.current = -1
	h.Push(state)
}

// Undo returns the previous state.
// Returns the zero value and false if nothing to undo.
func (h *History[T]) Undo() (T, bool) {
	if !h.CanUndo() {
		var zero T
		return zero, false
	}
	h.current--
	return h.states[h.current], true
}

// Redo returns the next state.
// Returns the zero value and false if nothing to redo.
func (h *History[T]) Redo() (T, bool) {
	if !h.CanRedo() {
		var zero T
		return zero, false
	}
	h.current++
	return h.states[h.current], true
}

// CanUndo returns true if there is a previous state to undo to.
func (h *History[T]) CanUndo() bool {
	return h.current > 0
}

// CanRedo returns true if there is a next state to redo to.
func (h *History[T]) CanRedo() bool {
	return h.current < len(h.states)-1
}
