package collapse

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store so sync behavior is testable without
// filesystem I/O. Revision bumps on every write like an mtime would.
type fakeStore struct {
	rec      Record
	hasRec   bool
	rev      time.Time
	readErr  error
	writeErr error
	revErr   error
}

func (f *fakeStore) Read() (Record, error) {
	if f.readErr != nil {
		return Record{}, f.readErr
	}
	if !f.hasRec {
		return Record{}, ErrNoRecord
	}
	return f.rec, nil
}

func (f *fakeStore) Write(rec Record) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.rec = rec
	f.hasRec = true
	f.rev = f.rev.Add(time.Millisecond)
	return nil
}

func (f *fakeStore) Revision() (time.Time, error) {
	if f.revErr != nil {
		return time.Time{}, f.revErr
	}
	if !f.hasRec {
		return time.Time{}, ErrNoRecord
	}
	return f.rev, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{rev: time.Unix(1000, 0)}
}

func fixedClock(startMilli int64) func() time.Time {
	calls := 0
	return func() time.Time {
		calls++
		return time.UnixMilli(startMilli + int64(calls))
	}
}

func TestDesiredDefaultsToExpanded(t *testing.T) {
	s := New(newFakeStore(), Options{})
	require.False(t, s.Desired())
}

func TestToggleFlipsAndPersists(t *testing.T) {
	store := newFakeStore()
	s := New(store, Options{Now: fixedClock(5000)})

	rec := s.Toggle()
	require.True(t, rec.Collapsed)
	require.True(t, s.Desired())
	require.True(t, store.hasRec)
	require.Equal(t, rec, store.rec)

	rec = s.Toggle()
	require.False(t, rec.Collapsed)
	require.False(t, s.Desired())
}

func TestToggleSurvivesStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.writeErr = errors.New("disk full")
	s := New(store, Options{})

	s.Toggle()
	require.True(t, s.Desired(), "local belief must flip even when the write fails")
}

func TestPollAdoptsNewerRecord(t *testing.T) {
	store := newFakeStore()
	s := New(store, Options{})

	store.Write(Record{Timestamp: 42, Collapsed: true})
	collapsed, changed := s.PollOnce()
	require.True(t, changed)
	require.True(t, collapsed)
	require.True(t, s.Desired())
}

func TestPollIgnoresStaleRecord(t *testing.T) {
	store := newFakeStore()
	s := New(store, Options{Now: fixedClock(10_000)})

	s.Toggle() // belief stamped ~10_001

	// A sibling's older record lands afterwards (newer revision, older
	// timestamp). It must not win.
	store.Write(Record{Timestamp: 9_000, Collapsed: false})
	_, changed := s.PollOnce()
	require.False(t, changed)
	require.True(t, s.Desired())

	// The marker advanced, so the same record is not re-read.
	_, changed = s.PollOnce()
	require.False(t, changed)
}

func TestTwoInstancesConvergeOnLatestToggle(t *testing.T) {
	store := newFakeStore()

	a := New(store, Options{Now: fixedClock(1_000)})
	b := New(store, Options{Now: fixedClock(2_000)})

	a.Toggle() // t1: collapsed=true
	b.PollOnce()
	require.True(t, b.Desired())

	b.Toggle() // t2 > t1: collapsed=false
	a.PollOnce()

	require.False(t, a.Desired())
	require.False(t, b.Desired())
}

func TestIntervalGrowsToCeilingAndResetsOnChange(t *testing.T) {
	store := newFakeStore()
	floor := 50 * time.Millisecond
	ceiling := 400 * time.Millisecond
	s := New(store, Options{Floor: floor, Ceiling: ceiling, Growth: 2})

	require.Equal(t, floor, s.NextPollDelay())

	var prev time.Duration
	for i := 0; i < 10; i++ {
		s.PollOnce()
		d := s.NextPollDelay()
		require.GreaterOrEqual(t, d, prev, "interval must grow monotonically")
		require.LessOrEqual(t, d, ceiling, "interval must respect the cap")
		prev = d
	}
	require.Equal(t, ceiling, s.NextPollDelay())

	store.Write(Record{Timestamp: 99, Collapsed: true})
	_, changed := s.PollOnce()
	require.True(t, changed)
	require.Equal(t, floor, s.NextPollDelay(), "observed change must reset to floor")
}

func TestStoreFailuresAreNonFatal(t *testing.T) {
	store := newFakeStore()
	s := New(store, Options{})

	store.Write(Record{Timestamp: 7, Collapsed: true})
	s.PollOnce()
	require.True(t, s.Desired())

	// Revision readable, record corrupt: keep last known good state.
	store.rev = store.rev.Add(time.Second)
	store.readErr = errors.New("corrupt record")
	_, changed := s.PollOnce()
	require.False(t, changed)
	require.True(t, s.Desired())

	// Store entirely unreachable: same.
	store.revErr = errors.New("store gone")
	_, changed = s.PollOnce()
	require.False(t, changed)
	require.True(t, s.Desired())
}
