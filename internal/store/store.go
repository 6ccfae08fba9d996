package store

import (
	"slices"
	"sync"
	"time"

	"github.com/mesh-intelligence/rentals/pkg/types"
)

// Default transient-state windows.
const (
	DefaultMarkerWindow = 2 * time.Second
	DefaultBannerWindow = 3 * time.Second
)

type settings struct {
	markerWindow time.Duration
	bannerWindow time.Duration
	scheduler    Scheduler
	now          func() time.Time
}

// Option configures a Store.
type Option func(*settings)

// WithMarkerWindow overrides how long the recently-updated marker stays set.
func WithMarkerWindow(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.markerWindow = d
		}
	}
}

// WithBannerWindow overrides how long a success banner stays visible.
func WithBannerWindow(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.bannerWindow = d
		}
	}
}

// WithScheduler replaces the timer source.
func WithScheduler(sched Scheduler) Option {
	return func(s *settings) { s.scheduler = sched }
}

// WithClock replaces the time source used for banner expiry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// LoadTicket identifies one load request. Only the latest ticket commits.
type LoadTicket struct {
	seq uint64
}

// Snapshot is a consistent copy of a store's state.
type Snapshot[T any] struct {
	Items           []T
	RecentlyUpdated types.ID
	Banner          *Banner
	Loaded          bool
	Loading         bool
}

// Store is the in-memory collection for one resource kind. It is safe for
// concurrent use; listeners run outside the lock.
type Store[T any] struct {
	mu  sync.Mutex
	key func(T) types.ID
	cfg settings

	items   []T
	loaded  bool
	loading bool
	loadSeq uint64

	recent      types.ID
	recentTimer Timer
	recentGen   uint64

	banner      *Banner
	bannerTimer Timer
	bannerGen   uint64

	listeners    map[int]func(Snapshot[T])
	nextListener int
	closed       bool
}

// New creates an empty store. key extracts the identifier of an item.
func New[T any](key func(T) types.ID, opts ...Option) *Store[T] {
	cfg := settings{
		markerWindow: DefaultMarkerWindow,
		bannerWindow: DefaultBannerWindow,
		scheduler:    RealScheduler,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Store[T]{
		key:       key,
		cfg:       cfg,
		listeners: make(map[int]func(Snapshot[T])),
	}
}

// ReplaceAll swaps the whole collection atomically. The slice is copied.
// It supersedes any load in flight, so a later CommitLoad from an earlier
// ticket is discarded.
func (s *Store[T]) ReplaceAll(items []T) {
	s.mu.Lock()
	s.loadSeq++
	s.replaceLocked(items)
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T]) replaceLocked(items []T) {
	s.items = slices.Clone(items)
	s.loaded = true
	s.loading = false
}

// BeginLoad issues a new load ticket, superseding any earlier one.
func (s *Store[T]) BeginLoad() LoadTicket {
	s.mu.Lock()
	s.loadSeq++
	s.loading = true
	t := LoadTicket{seq: s.loadSeq}
	s.mu.Unlock()
	s.notify()
	return t
}

// CommitLoad replaces the collection with items if t is still the latest
// ticket. It reports whether the result was applied.
func (s *Store[T]) CommitLoad(t LoadTicket, items []T) bool {
	s.mu.Lock()
	if t.seq != s.loadSeq {
		s.mu.Unlock()
		return false
	}
	s.replaceLocked(items)
	s.mu.Unlock()
	s.notify()
	return true
}

// FailLoad ends the loading state for t if it is still the latest ticket.
// The collection is left as it was.
func (s *Store[T]) FailLoad(t LoadTicket) bool {
	s.mu.Lock()
	if t.seq != s.loadSeq {
		s.mu.Unlock()
		return false
	}
	s.loading = false
	s.mu.Unlock()
	s.notify()
	return true
}

// PatchOne replaces the item with the given id by updater's result. It
// reports false and changes nothing when no item has that id.
func (s *Store[T]) PatchOne(id types.ID, updater func(T) T) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items[i] = updater(s.items[i])
	s.mu.Unlock()
	s.notify()
	return true
}

// Remove drops the item with the given id, preserving the order of the rest.
func (s *Store[T]) Remove(id types.ID) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items = slices.Delete(slices.Clone(s.items), i, i+1)
	s.mu.Unlock()
	s.notify()
	return true
}

// Find returns the item with the given id.
func (s *Store[T]) Find(id types.ID) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		var zero T
		return zero, false
	}
	return s.items[i], true
}

// Items returns a copy of the collection in server order.
func (s *Store[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Loaded reports whether the collection has been filled at least once.
func (s *Store[T]) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// RecentlyUpdated returns the marked id, or "" when unset.
func (s *Store[T]) RecentlyUpdated() types.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recent
}

// Banner returns a copy of the current banner, or nil.
func (s *Store[T]) Banner() *Banner {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBanner(s.banner)
}

// Snapshot returns a consistent copy of the whole state.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// MarkRecentlyUpdated sets the marker to id and schedules its clearing after
// the marker window. A later call restarts the window.
func (s *Store[T]) MarkRecentlyUpdated(id types.ID) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.recentTimer != nil {
		s.recentTimer.Stop()
	}
	s.recentGen++
	gen := s.recentGen
	s.recent = id
	s.recentTimer = s.cfg.scheduler.AfterFunc(s.cfg.markerWindow, func() {
		s.expireMarker(gen)
	})
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T]) expireMarker(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.recentGen {
		s.mu.Unlock()
		return
	}
	s.recent = ""
	s.recentTimer = nil
	s.mu.Unlock()
	s.notify()
}

// ShowBanner replaces the current banner. Success banners clear themselves
// after the banner window; error banners stay until the next success banner
// or DismissBanner.
func (s *Store[T]) ShowBanner(kind BannerKind, message string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}
	s.bannerGen++
	b := &Banner{Kind: kind, Message: message}
	if kind == BannerSuccess {
		gen := s.bannerGen
		b.ExpiresAt = s.cfg.now().Add(s.cfg.bannerWindow)
		s.bannerTimer = s.cfg.scheduler.AfterFunc(s.cfg.bannerWindow, func() {
			s.expireBanner(gen)
		})
	}
	s.banner = b
	s.mu.Unlock()
	s.notify()
}

func (s *Store[T]) expireBanner(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.bannerGen {
		s.mu.Unlock()
		return
	}
	s.banner = nil
	s.bannerTimer = nil
	s.mu.Unlock()
	s.notify()
}

// DismissBanner clears the banner of either kind.
func (s *Store[T]) DismissBanner() {
	s.mu.Lock()
	if s.banner == nil {
		s.mu.Unlock()
		return
	}
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}
	s.bannerGen++
	s.banner = nil
	s.mu.Unlock()
	s.notify()
}

// OnChange registers fn to run after every state change. The returned
// function unregisters it.
func (s *Store[T]) OnChange(fn func(Snapshot[T])) (cancel func()) {
	s.mu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Close cancels pending timers and drops listeners. Close is idempotent.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.recentTimer != nil {
		s.recentTimer.Stop()
		s.recentTimer = nil
	}
	if s.bannerTimer != nil {
		s.bannerTimer.Stop()
		s.bannerTimer = nil
	}
	s.listeners = make(map[int]func(Snapshot[T]))
}

func (s *Store[T]) indexLocked(id types.ID) int {
	return slices.IndexFunc(s.items, func(item T) bool { return s.key(item) == id })
}

func (s *Store[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:           slices.Clone(s.items),
		RecentlyUpdated: s.recent,
		Banner:          copyBanner(s.banner),
		Loaded:          s.loaded,
		Loading:         s.loading,
	}
}

func (s *Store[T]) notify() {
	s.mu.Lock()
	if s.closed || len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	fns := make([]func(Snapshot[T]), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func copyBanner(b *Banner) *Banner {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}
