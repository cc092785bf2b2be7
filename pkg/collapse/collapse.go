// Package collapse keeps the sidebar's collapsed/expanded flag
// consistent across plugin instances that share no memory.
//
// Instances never talk to each other for this flag. Each one reconciles
// its local belief against a single shared record; the record with the
// greatest wall-clock timestamp wins once every instance has polled at
// least once after it was written. Polling backs off exponentially while
// nothing changes and snaps back to the floor the moment a change is
// seen, so idle overhead is bounded without hurting toggle latency.
package collapse

import "time"

// Default polling cadence. The floor keeps a toggle visible on sibling
// instances within tens of milliseconds; the ceiling bounds steady-state
// stat() traffic. The cap is mandatory: unbounded backoff would let a
// long-idle instance take arbitrarily long to notice a later toggle.
const (
	DefaultFloor   = 50 * time.Millisecond
	DefaultCeiling = 2 * time.Second
	DefaultGrowth  = 1.5
)

// Options tunes the polling cadence. Zero values fall back to the
// package defaults.
type Options struct {
	Floor   time.Duration
	Ceiling time.Duration
	Growth  float64
	Now     func() time.Time // test hook
}

// Sync owns one instance's belief about the collapsed flag and drives
// its adaptive poll loop. Not safe for concurrent use; the sidebar is
// single-threaded and cooperative.
type Sync struct {
	store Store

	belief     Record
	haveBelief bool

	lastSeen time.Time
	haveSeen bool

	interval time.Duration
	floor    time.Duration
	ceiling  time.Duration
	growth   float64

	now func() time.Time
}

func New(store Store, opts Options) *Sync {
	if opts.Floor <= 0 {
		opts.Floor = DefaultFloor
	}
	if opts.Ceiling < opts.Floor {
		opts.Ceiling = DefaultCeiling
	}
	if opts.Growth <= 1 {
		opts.Growth = DefaultGrowth
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Sync{
		store:    store,
		interval: opts.Floor,
		floor:    opts.Floor,
		ceiling:  opts.Ceiling,
		growth:   opts.Growth,
		now:      opts.Now,
	}
}

// Desired returns the locally believed collapsed flag. Expanded is the
// default before anything has ever been observed.
func (s *Sync) Desired() bool {
	return s.haveBelief && s.belief.Collapsed
}

// Toggle flips the local belief, stamps a fresh record, and writes it
// through to the shared store. The write is best effort: a store failure
// still flips locally and the next successful toggle anywhere supersedes
// it. The polling cadence resets to the floor so siblings' reactions (and
// any concurrent counter-toggle) are noticed quickly.
func (s *Sync) Toggle() Record {
	rec := Record{
		Timestamp: s.now().UnixMilli(),
		Collapsed: !s.Desired(),
	}
	s.belief = rec
	s.haveBelief = true
	s.interval = s.floor

	if err := s.store.Write(rec); err == nil {
		// Our own write is the newest revision; skip re-reading it on
		// the next poll.
		if rev, err := s.store.Revision(); err == nil {
			s.lastSeen = rev
			s.haveSeen = true
		}
	}
	return rec
}

// PollOnce checks the shared store for news. It returns (value, true)
// when a newer record changed the local belief, and (_, false)
// otherwise. A missing, corrupt, or unreadable record counts as "nothing
// new": the belief is kept and the interval backs off. A readable record
// that is stale relative to the local belief advances the revision
// marker without touching the interval.
func (s *Sync) PollOnce() (bool, bool) {
	rev, err := s.store.Revision()
	if err != nil || (s.haveSeen && !rev.After(s.lastSeen)) {
		s.grow()
		return false, false
	}

	s.lastSeen = rev
	s.haveSeen = true

	rec, err := s.store.Read()
	if err != nil {
		s.grow()
		return false, false
	}
	if s.haveBelief && rec.Timestamp <= s.belief.Timestamp {
		return false, false
	}

	s.belief = rec
	s.haveBelief = true
	s.interval = s.floor
	return rec.Collapsed, true
}

// NextPollDelay is what callers rearm their poll timer with after every
// PollOnce, whatever its outcome. Polling never stops while the instance
// is alive.
func (s *Sync) NextPollDelay() time.Duration {
	return s.interval
}

func (s *Sync) grow() {
	s.interval = time.Duration(float64(s.interval) * s.growth)
	if s.interval > s.ceiling {
		s.interval = s.ceiling
	}
}
