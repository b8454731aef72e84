// Package tabsync keeps the active account tab and the tab query parameter
// of the page address in step.
package tabsync

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
)

// Param is the query parameter holding the active tab id.
const Param = "tab"

// DefaultDelay is the quiet period before the address is rewritten.
const DefaultDelay = 500 * time.Millisecond

// Synchronizer binds an active tab index to the tab parameter of a location.
// The location is read once when the page mounts; afterwards writes only
// flow from the index to the location, debounced.
type Synchronizer struct {
	mu      sync.Mutex
	params  Params
	delay   time.Duration
	sched   Scheduler
	logger  *zap.Logger
	mounted bool
	closed  bool
	pending Task
	gen     uint64
}

type Option func(*Synchronizer)

func WithDelay(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.delay = d
		}
	}
}

func WithScheduler(sched Scheduler) Option {
	return func(s *Synchronizer) {
		if sched != nil {
			s.sched = sched
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Synchronizer) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(params Params, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		params: params,
		delay:  DefaultDelay,
		sched:  TimerScheduler{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mount hydrates the active index from the location. It runs once per
// Synchronizer; later calls do nothing. setActive is called synchronously
// when the tab parameter names a descriptor at a different position, and the
// resulting tab is then scheduled for writing like any other change.
func (s *Synchronizer) Mount(active int, setActive func(int), descs []tabs.Descriptor) {
	s.mu.Lock()
	if s.mounted || s.closed {
		s.mu.Unlock()
		return
	}
	s.mounted = true
	s.mu.Unlock()

	if fromURL := s.params.Get(Param); fromURL != "" {
		idx := tabs.IndexOf(descs, tabs.ID(fromURL))
		if idx != -1 && idx != active {
			s.logger.Debug("Hydrating active tab from URL",
				zap.String("tab", fromURL), zap.Int("index", idx))
			setActive(idx)
			active = idx
		}
	}
	s.Changed(active, descs)
}

// Changed reschedules the location write for the tab now at active. Any write
// still waiting is cancelled. Calls before Mount and after Close are ignored.
// An out-of-range index schedules nothing; clamping is the caller's job.
func (s *Synchronizer) Changed(active int, descs []tabs.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted || s.closed {
		return
	}
	s.cancelLocked()

	if active < 0 || active >= len(descs) {
		return
	}
	id := descs[active].ID.String()
	s.gen++
	gen := s.gen
	s.pending = s.sched.AfterFunc(s.delay, func() { s.write(gen, id) })
}

func (s *Synchronizer) write(gen uint64, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		return
	}
	s.pending = nil

	if s.params.Get(Param) == id {
		return
	}
	s.params.Replace(Param, id)
	s.logger.Debug("Tab written to URL", zap.String("tab", id))
}

// Pending reports whether a write is waiting for the quiet period to end.
func (s *Synchronizer) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Close cancels any pending write. Nothing is written after Close returns.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cancelLocked()
}

func (s *Synchronizer) cancelLocked() {
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.gen++
}
