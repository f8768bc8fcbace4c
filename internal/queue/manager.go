// Package queue owns the playing queue: playing order, original order,
// current position and shuffle/repeat modes.
//
// All mutations go through Manager. Each mutation is serialized, applied,
// published as an immutable Snapshot, handed to the persistence writer and
// then reported to observers, so nobody ever sees a partial update.
package queue

import (
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/llehouerou/cadence/internal/errmsg"
	"github.com/llehouerou/cadence/internal/playlist"
)

const defaultHistorySize = 50

// entry is one queued slot. The key ties the slot's position in the
// playing order to its position in the original order, even when the same
// track is queued more than once.
type entry struct {
	key   uint64
	track playlist.Track
}

// state is what undo/redo restores.
type state struct {
	playing  []entry
	original []entry
	position int
	shuffle  ShuffleMode
}

// Manager is the authoritative queue state.
type Manager struct {
	mu       sync.Mutex // serializes mutate -> persist -> notify
	playing  *playlist.List[entry]
	original *playlist.List[entry]
	position int
	shuffle  ShuffleMode
	repeat   RepeatMode
	nextKey  uint64
	history  *playlist.History[state]

	snap atomic.Pointer[Snapshot]

	observers *Registry
	writer    *writer
	store     Store
	transport Transport
	rng       *rand.Rand
	logger    zerolog.Logger
}

type options struct {
	logger      zerolog.Logger
	rng         *rand.Rand
	historySize int
	debounce    time.Duration
	slow        time.Duration
	transport   Transport
}

// Option configures a Manager.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithHistorySize sets how many queue states undo can walk back through.
func WithHistorySize(n int) Option {
	return func(o *options) { o.historySize = n }
}

// WithSaveDebounce delays persistence so bursts of mutations coalesce.
func WithSaveDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

// WithSlowObserverThreshold logs observers whose callbacks take longer than d.
func WithSlowObserverThreshold(d time.Duration) Option {
	return func(o *options) { o.slow = d }
}

// WithTransport sets where "start playing" requests go.
func WithTransport(t Transport) Option {
	return func(o *options) { o.transport = t }
}

// New creates an empty manager. store may be nil for a memory-only queue.
// Call Restore to hydrate from the store.
func New(store Store, opts ...Option) *Manager {
	o := options{
		logger:      zerolog.Nop(),
		historySize: defaultHistorySize,
		slow:        50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m := &Manager{
		playing:   playlist.NewList[entry](),
		original:  playlist.NewList[entry](),
		position:  -1,
		history:   playlist.NewHistory[state](o.historySize),
		observers: NewRegistry(o.logger, o.slow),
		store:     store,
		transport: o.transport,
		rng:       o.rng,
		logger:    o.logger,
	}
	if store != nil {
		m.writer = newWriter(store, o.logger, o.debounce)
	}
	m.snap.Store(&Snapshot{Position: -1})
	m.history.Reset(m.captureState())
	return m
}

// Restore replaces the in-memory state with what the store holds.
// Load failures are returned and leave the queue unchanged.
func (m *Manager) Restore() error {
	if m.store == nil {
		return nil
	}
	playing, err := m.store.LoadPlayingQueue()
	if err != nil {
		return err
	}
	original, err := m.store.LoadOriginalQueue()
	if err != nil {
		return err
	}

	settings := Settings{Position: 0}
	if ss, ok := m.store.(SnapshotStore); ok {
		saved, found, err := ss.LoadSettings()
		if err != nil {
			m.logger.Warn().Err(err).Msg(errmsg.Format(errmsg.OpQueueLoad, err))
		} else if found {
			settings = saved
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pe, oe, paired := m.pairEntries(playing, original)
	shuffle := settings.Shuffle
	switch {
	case !paired || !shuffle.Valid():
		shuffle = ShuffleNone
	case !sameOrder(pe, oe):
		shuffle = ShuffleOn
	}
	m.playing.Set(pe)
	m.original.Set(oe)
	m.position = settings.Position
	m.shuffle = shuffle
	if settings.Repeat.Valid() {
		m.repeat = settings.Repeat
	}
	m.commit(true, false)
	m.history.Reset(m.captureState())

	m.logger.Debug().
		Int("tracks", len(pe)).
		Int("position", m.position).
		Stringer("shuffle", m.shuffle).
		Stringer("repeat", m.repeat).
		Msg("queue restored")
	return nil
}

// OpenQueue replaces both queues with tracks, in the given order, and
// selects start (clamped; -1 when tracks is empty). Shuffle is turned off.
func (m *Manager) OpenQueue(tracks []playlist.Track, start int, startPlaying bool) {
	m.mu.Lock()
	items := m.newEntries(tracks)
	m.playing.Set(items)
	m.original.Set(items)
	m.shuffle = ShuffleNone
	m.position = clamp(start, len(items))
	m.commit(true, true)
	current, ok := m.currentLocked()
	m.mu.Unlock()

	if startPlaying && ok {
		m.play(current)
	}
}

// OpenAndShuffleQueue keeps tracks as the original order and plays a
// uniformly shuffled permutation of it. The current position points at the
// input track start within the shuffled order, or 0 if start is out of range.
func (m *Manager) OpenAndShuffleQueue(tracks []playlist.Track, start int, startPlaying bool) {
	m.mu.Lock()
	items := m.newEntries(tracks)
	shuffled := playlist.Shuffled(items, m.rng)
	m.original.Set(items)
	m.playing.Set(shuffled)
	m.shuffle = ShuffleOn
	m.position = 0
	if start >= 0 && start < len(items) {
		m.position = indexOfKey(shuffled, items[start].key)
	}
	m.commit(true, true)
	current, ok := m.currentLocked()
	m.mu.Unlock()

	if startPlaying && ok {
		m.play(current)
	}
}

// PlayNext inserts tracks right after the current track. The current track
// and its index are unchanged. While shuffled, the tracks are appended to the
// original order instead, since the two orders diverge.
func (m *Manager) PlayNext(tracks ...playlist.Track) error {
	if len(tracks) == 0 {
		return ErrNoTracks
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertNextLocked(tracks)
	m.commit(true, true)
	return nil
}

// PlayNow inserts tracks right after the current track, makes the first of
// them current and asks the transport to play it.
func (m *Manager) PlayNow(tracks ...playlist.Track) error {
	if len(tracks) == 0 {
		return ErrNoTracks
	}
	m.mu.Lock()
	at := m.insertNextLocked(tracks)
	m.position = at
	m.commit(true, true)
	current, ok := m.currentLocked()
	m.mu.Unlock()

	if ok {
		m.play(current)
	}
	return nil
}

func (m *Manager) insertNextLocked(tracks []playlist.Track) int {
	items := m.newEntries(tracks)
	at := m.position + 1
	m.playing.Insert(at, items...)
	if m.shuffle == ShuffleOn {
		m.original.Add(items...)
	} else {
		m.original.Insert(at, items...)
	}
	return at
}

// Enqueue appends tracks to the end of both queues.
func (m *Manager) Enqueue(tracks ...playlist.Track) error {
	if len(tracks) == 0 {
		return ErrNoTracks
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.newEntries(tracks)
	m.playing.Add(items...)
	m.original.Add(items...)
	m.commit(true, true)
	return nil
}

// RemoveAt removes the track at index from both queues. The current
// position keeps pointing at the same track, or at the track that followed
// the removed current one.
func (m *Manager) RemoveAt(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.playing.At(index)
	if !ok {
		return ErrIndexOutOfRange
	}
	m.playing.Remove(index)
	m.original.Remove(m.original.IndexFunc(hasKey(e.key)))

	if index < m.position {
		m.position--
	}
	m.commit(true, true)
	return nil
}

// Move moves the track at from to to. The current position follows the
// current track. Without shuffle the original order moves too.
func (m *Manager) Move(from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.playing.Move(from, to) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	if m.shuffle == ShuffleNone {
		m.original.Move(from, to)
	}
	switch {
	case from == m.position:
		m.position = to
	case from < m.position && to >= m.position:
		m.position--
	case from > m.position && to <= m.position:
		m.position++
	}
	m.commit(true, true)
	return nil
}

// JumpTo selects the track at index.
func (m *Manager) JumpTo(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= m.playing.Len() {
		return ErrIndexOutOfRange
	}
	m.position = index
	m.commit(false, false)
	return nil
}

// Clear empties both queues.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing.Len() == 0 && m.original.Len() == 0 {
		return
	}
	m.playing.Clear()
	m.original.Clear()
	m.position = -1
	m.commit(true, true)
}

// SetShuffleMode switches between shuffled and original order, keeping the
// current track current. Setting the active mode again does nothing.
func (m *Manager) SetShuffleMode(mode ShuffleMode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setShuffleLocked(mode)
	return nil
}

// ToggleShuffle flips the shuffle mode and returns the new mode.
func (m *Manager) ToggleShuffle() ShuffleMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setShuffleLocked(m.shuffle.Toggle())
	return m.shuffle
}

func (m *Manager) setShuffleLocked(mode ShuffleMode) {
	if mode == m.shuffle {
		return
	}
	current, hasCurrent := m.playing.At(m.position)

	items := m.original.Items()
	if mode == ShuffleOn {
		playlist.Shuffle(items, m.rng)
	}
	m.playing.Set(items)
	m.shuffle = mode
	if hasCurrent {
		m.position = indexOfKey(items, current.key)
	}
	m.commit(true, true)
}

// SetRepeatMode changes the repeat mode. The queue is not touched.
func (m *Manager) SetRepeatMode(mode RepeatMode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repeat = mode
	m.commit(false, false)
	return nil
}

// CycleRepeatMode cycles Off -> All -> One and returns the new mode.
func (m *Manager) CycleRepeatMode() RepeatMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repeat = m.repeat.Next()
	m.commit(false, false)
	return m.repeat
}

// Advance moves to the adjacent track following the repeat mode, the way
// the transport does when a track ends: RepeatOne holds, RepeatAll wraps and
// RepeatNone stops at the boundary with ErrEndOfQueue or ErrStartOfQueue.
func (m *Manager) Advance(dir Direction) (playlist.Track, error) {
	return m.step(dir, false)
}

// Skip moves to the adjacent track on user request and asks the transport
// to play it. RepeatOne behaves as RepeatAll.
func (m *Manager) Skip(dir Direction) (playlist.Track, error) {
	track, err := m.step(dir, true)
	if err != nil {
		return track, err
	}
	m.play(track)
	return track, nil
}

func (m *Manager) step(dir Direction, manual bool) (playlist.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.playing.Len()
	if n == 0 {
		return playlist.Track{}, ErrEmptyQueue
	}

	repeat := m.repeat
	if manual && repeat == RepeatOne {
		repeat = RepeatAll
	}

	next := m.position + dir.delta()
	switch repeat {
	case RepeatOne:
		next = m.position
	case RepeatAll:
		next = ((next % n) + n) % n
	case RepeatNone:
		if next >= n {
			return playlist.Track{}, ErrEndOfQueue
		}
		if next < 0 {
			return playlist.Track{}, ErrStartOfQueue
		}
	}

	m.position = next
	m.commit(false, false)
	current, _ := m.currentLocked()
	return current, nil
}

// ReplaceQueues installs queues coming from outside (e.g. a backup).
// When original is not a permutation of playing, playing is used for both.
// Shuffle is on when the two orders differ.
func (m *Manager) ReplaceQueues(playing, original []playlist.Track) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pe, oe, paired := m.pairEntries(playing, original)
	m.playing.Set(pe)
	m.original.Set(oe)
	m.shuffle = ShuffleNone
	if paired && !sameOrder(pe, oe) {
		m.shuffle = ShuffleOn
	}
	m.position = clamp(0, len(pe))
	m.commit(true, true)
}

// RefreshTracks re-resolves every queued track after a library rescan.
// resolve returns the live track, or false when the track is gone, in
// which case it is removed from both queues.
func (m *Manager) RefreshTracks(resolve func(playlist.Track) (playlist.Track, bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := make(map[uint64]bool)
	updated := make(map[uint64]playlist.Track)
	changed := false
	removedBefore := 0
	for i, e := range m.playing.Items() {
		live, ok := resolve(e.track)
		switch {
		case !ok:
			removed[e.key] = true
			changed = true
			if i < m.position {
				removedBefore++
			}
		case live != e.track:
			updated[e.key] = live
			changed = true
		}
	}
	if !changed {
		return
	}

	m.playing.Set(refreshEntries(m.playing.Items(), removed, updated))
	m.original.Set(refreshEntries(m.original.Items(), removed, updated))
	m.position -= removedBefore
	m.commit(true, true)
	m.logger.Debug().Int("removed", len(removed)).Int("updated", len(updated)).Msg("queue refreshed")
}

func refreshEntries(items []entry, removed map[uint64]bool, updated map[uint64]playlist.Track) []entry {
	result := items[:0]
	for _, e := range items {
		if removed[e.key] {
			continue
		}
		if t, ok := updated[e.key]; ok {
			e.track = t
		}
		result = append(result, e)
	}
	return result
}

// Undo restores the previous queue contents. Returns false if there is
// nothing to undo.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.history.Undo()
	if !ok {
		return false
	}
	m.restoreState(st)
	return true
}

// Redo re-applies undone queue contents. Returns false if there is nothing
// to redo.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.history.Redo()
	if !ok {
		return false
	}
	m.restoreState(st)
	return true
}

// restoreState swaps in a history entry. The current track stays current
// when it is part of the restored queue, since navigation is not recorded.
func (m *Manager) restoreState(st state) {
	position := st.position
	if cur, ok := m.playing.At(m.position); ok {
		if i := indexOfKey(st.playing, cur.key); i >= 0 {
			position = i
		}
	}
	m.playing.Set(st.playing)
	m.original.Set(st.original)
	m.position = position
	m.shuffle = st.shuffle
	m.commit(true, false)
}

func (m *Manager) captureState() state {
	return state{
		playing:  m.playing.Items(),
		original: m.original.Items(),
		position: m.position,
		shuffle:  m.shuffle,
	}
}

// commit normalizes the position, publishes the new snapshot, schedules
// persistence and notifies observers of whatever changed.
// Must be called with m.mu held.
func (m *Manager) commit(queueChanged, record bool) {
	m.position = clamp(m.position, m.playing.Len())

	prev := m.snap.Load()
	next := &Snapshot{
		Playing:  tracksOf(m.playing.Items()),
		Original: tracksOf(m.original.Items()),
		Position: m.position,
		Shuffle:  m.shuffle,
		Repeat:   m.repeat,
	}
	c := change{
		queue:    queueChanged,
		position: queueChanged || next.Position != prev.Position,
		shuffle:  next.Shuffle != prev.Shuffle,
		repeat:   next.Repeat != prev.Repeat,
	}
	if !c.any() {
		return
	}

	m.snap.Store(next)
	if record {
		m.history.Push(m.captureState())
	}
	if m.writer != nil {
		m.writer.enqueue(*next)
	}
	m.observers.notify(c, next)
}

func (m *Manager) currentLocked() (playlist.Track, bool) {
	e, ok := m.playing.At(m.position)
	return e.track, ok
}

func (m *Manager) play(t playlist.Track) {
	if m.transport == nil {
		return
	}
	if err := m.transport.Play(t); err != nil {
		m.logger.Warn().Err(err).Str("path", t.Path).Msg(errmsg.Format(errmsg.OpPlaybackStart, err))
	}
}

func (m *Manager) newEntries(tracks []playlist.Track) []entry {
	items := make([]entry, len(tracks))
	for i, t := range tracks {
		m.nextKey++
		items[i] = entry{key: m.nextKey, track: t}
	}
	return items
}

// pairEntries keys playing and matches every original track to an unused
// playing entry with the same identity. If original is empty or is not a
// permutation of playing, the original order becomes a copy of playing and
// paired is false.
func (m *Manager) pairEntries(playing, original []playlist.Track) (pe, oe []entry, paired bool) {
	pe = m.newEntries(playing)
	if len(original) != len(playing) || len(original) == 0 {
		return pe, slices.Clone(pe), false
	}

	free := make(map[playlist.Key][]entry, len(pe))
	for _, e := range pe {
		k := e.track.Key()
		free[k] = append(free[k], e)
	}
	oe = make([]entry, 0, len(original))
	for _, t := range original {
		k := t.Key()
		candidates := free[k]
		if len(candidates) == 0 {
			return pe, slices.Clone(pe), false
		}
		oe = append(oe, candidates[0])
		free[k] = candidates[1:]
	}
	return pe, oe, true
}

// Reads. All of them return values from the latest committed snapshot.

// Snapshot returns a copy of the current state.
func (m *Manager) Snapshot() Snapshot {
	return m.snap.Load().Clone()
}

// View runs fn with the current snapshot while no mutation can commit.
// fn must not mutate the manager.
func (m *Manager) View(fn func(Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(*m.snap.Load())
}

// PlayingQueue returns a copy of the playing queue.
func (m *Manager) PlayingQueue() []playlist.Track {
	return slices.Clone(m.snap.Load().Playing)
}

// OriginalQueue returns a copy of the original (pre-shuffle) queue.
func (m *Manager) OriginalQueue() []playlist.Track {
	return slices.Clone(m.snap.Load().Original)
}

// CurrentPosition returns the current index, or -1 when the queue is empty.
func (m *Manager) CurrentPosition() int {
	return m.snap.Load().Position
}

// CurrentTrack returns the track at the current position.
func (m *Manager) CurrentTrack() (playlist.Track, bool) {
	return m.snap.Load().Current()
}

// ShuffleMode returns the current shuffle mode.
func (m *Manager) ShuffleMode() ShuffleMode {
	return m.snap.Load().Shuffle
}

// RepeatMode returns the current repeat mode.
func (m *Manager) RepeatMode() RepeatMode {
	return m.snap.Load().Repeat
}

// Len returns the number of tracks in the playing queue.
func (m *Manager) Len() int {
	return m.snap.Load().Len()
}

// HasNext reports whether Skip(Forward) would move.
func (m *Manager) HasNext() bool {
	s := m.snap.Load()
	if s.Len() == 0 {
		return false
	}
	return s.Repeat != RepeatNone || s.Position < s.Len()-1
}

// HasPrevious reports whether Skip(Backward) would move.
func (m *Manager) HasPrevious() bool {
	s := m.snap.Load()
	if s.Len() == 0 {
		return false
	}
	return s.Repeat != RepeatNone || s.Position > 0
}

// AddObserver registers o. See Registry.Add.
func (m *Manager) AddObserver(o Observer) bool {
	return m.observers.Add(o)
}

// RemoveObserver unregisters o. See Registry.Remove.
func (m *Manager) RemoveObserver(o Observer) bool {
	return m.observers.Remove(o)
}

// Flush blocks until every committed mutation has been handed to the store.
func (m *Manager) Flush() {
	if m.writer != nil {
		m.writer.flush()
	}
}

// Close flushes pending writes and stops the persistence goroutine.
func (m *Manager) Close() error {
	if m.writer != nil {
		m.writer.close()
	}
	return nil
}

func clamp(position, n int) int {
	switch {
	case n == 0:
		return -1
	case position < 0:
		return 0
	case position >= n:
		return n - 1
	}
	return position
}

func tracksOf(items []entry) []playlist.Track {
	result := make([]playlist.Track, len(items))
	for i, e := range items {
		result[i] = e.track
	}
	return result
}

func hasKey(key uint64) func(entry) bool {
	return func(e entry) bool { return e.key == key }
}

func indexOfKey(items []entry, key uint64) int {
	return slices.IndexFunc(items, hasKey(key))
}

func sameOrder(a, b []entry) bool {
	return slices.EqualFunc(a, b, func(x, y entry) bool { return x.key == y.key })
}
