package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"foodbot/domain/order"
	"foodbot/infra/brain"
)

func newManager(t *testing.T, b brain.Brain, opts ...Option) *Manager {
	t.Helper()
	if b == nil {
		b = brain.NewMemory()
	}
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	m, err := NewManager(context.Background(), b, opts...)
	require.NoError(t, err)
	return m
}

// peek runs Peek and waits for the callback.
func peek(t *testing.T, m *Manager, name string) []string {
	t.Helper()
	got := make(chan []string, 1)
	require.True(t, m.Peek(name, func(entries []string) { got <- entries }))
	select {
	case entries := <-got:
		return entries
	case <-time.After(2 * time.Second):
		t.Fatalf("peek %q never called back", name)
		return nil
	}
}

func TestStartOrder_NameConflict(t *testing.T) {
	m := newManager(t, nil)

	assert.True(t, m.StartOrder("lunch", ""))
	assert.False(t, m.StartOrder("lunch", "Sub Shop"))

	r, ok := m.Restaurant("lunch")
	require.True(t, ok)
	assert.Empty(t, r, "losing start must not change the order")
}

func TestPeek_EmptyOrder(t *testing.T) {
	m := newManager(t, nil)
	require.True(t, m.StartOrder("lunch", ""))

	assert.Empty(t, peek(t, m, "lunch"))
}

func TestUnknownOrder(t *testing.T) {
	m := newManager(t, nil)

	assert.False(t, m.HasOrder("ghost"))
	assert.False(t, m.SetEntry("ghost", "alice", "BLT"))
	assert.False(t, m.Peek("ghost", func([]string) { t.Fatal("callback on unknown order") }))
	m.EndOrdering("ghost")

	_, ok := m.Restaurant("ghost")
	assert.False(t, ok)
	<-m.Settled("ghost")
}

func TestSetEntry_LastWriteWins(t *testing.T) {
	m := newManager(t, nil)
	require.True(t, m.StartOrder("lunch", ""))

	require.True(t, m.SetEntry("lunch", "alice", "a"))
	require.True(t, m.SetEntry("lunch", "alice", "b"))

	assert.Equal(t, []string{"alice: b"}, peek(t, m, "lunch"))
}

func TestSetEntry_ConcurrentSubmissionsAllKept(t *testing.T) {
	m := newManager(t, nil)
	require.True(t, m.StartOrder("lunch", ""))

	const users = 50
	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.True(t, m.SetEntry("lunch", string(rune('A'+i)), "x"))
		}(i)
	}
	wg.Wait()

	assert.Len(t, peek(t, m, "lunch"), users)
}

func TestEndOrdering_NameReusable(t *testing.T) {
	m := newManager(t, nil)
	require.True(t, m.StartOrder("lunch", ""))
	require.True(t, m.SetEntry("lunch", "alice", "BLT"))

	m.EndOrdering("lunch")
	assert.False(t, m.HasOrder("lunch"))

	require.True(t, m.StartOrder("lunch", ""))
	assert.Empty(t, peek(t, m, "lunch"), "reopened order starts empty")
}

func TestOrderNames_Sorted(t *testing.T) {
	m := newManager(t, nil)
	require.True(t, m.StartOrder("zeta", ""))
	require.True(t, m.StartOrder("alpha", ""))

	assert.Equal(t, []string{"alpha", "zeta"}, m.OrderNames())
}

func TestEndToEnd(t *testing.T) {
	m := newManager(t, nil)

	require.True(t, m.StartOrder("lunch", "Sub Shop"))
	require.True(t, m.SetEntry("lunch", "alice", "BLT"))
	require.True(t, m.SetEntry("lunch", "bob", "turkey club"))

	assert.ElementsMatch(t, []string{"alice: BLT", "bob: turkey club"}, peek(t, m, "lunch"))

	m.EndOrdering("lunch")
	assert.False(t, m.HasOrder("lunch"))
}

func TestPeek_CallbackMayEndAndSave(t *testing.T) {
	b := brain.NewMemory()
	m := newManager(t, b)
	require.True(t, m.StartOrder("lunch", ""))
	require.True(t, m.SetEntry("lunch", "alice", "BLT"))
	require.NoError(t, m.Sync(context.Background()))

	done := make(chan error, 1)
	require.True(t, m.Peek("lunch", func([]string) {
		m.EndOrdering("lunch")
		done <- m.Save(context.Background())
	}))
	require.NoError(t, <-done)

	saved, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSave_CapturesResolvedStateOnly(t *testing.T) {
	b := brain.NewMemory()
	m := newManager(t, b)
	require.True(t, m.StartOrder("lunch", "Sub Shop"))

	release := make(chan struct{})
	m.orders["lunch"].Enqueue(func(o order.Order) order.Order {
		<-release
		return o
	})
	require.True(t, m.SetEntry("lunch", "alice", "BLT"))

	require.NoError(t, m.Save(context.Background()))
	saved, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved["lunch"].Entries)
	assert.Equal(t, "Sub Shop", saved["lunch"].Restaurant)

	close(release)
	require.NoError(t, m.Sync(context.Background()))
	saved, err = b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BLT", saved["lunch"].Entries["alice"])
}

func TestSync_HonorsContext(t *testing.T) {
	m := newManager(t, nil)
	require.True(t, m.StartOrder("lunch", ""))

	block := make(chan struct{})
	defer close(block)
	m.orders["lunch"].Enqueue(func(o order.Order) order.Order {
		<-block
		return o
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, m.Sync(ctx), context.DeadlineExceeded)
}

func TestNewManager_Rehydrates(t *testing.T) {
	b := brain.NewMemory()
	first := newManager(t, b)
	require.True(t, first.StartOrder("lunch", "Sub Shop"))
	require.True(t, first.SetEntry("lunch", "alice", "BLT"))
	require.NoError(t, first.Sync(context.Background()))

	second := newManager(t, b)
	assert.True(t, second.HasOrder("lunch"))
	assert.Equal(t, []string{"alice: BLT"}, peek(t, second, "lunch"))
	r, _ := second.Restaurant("lunch")
	assert.Equal(t, "Sub Shop", r)
}

type failingBrain struct{ err error }

func (f failingBrain) Load(context.Context) (map[string]order.Order, error) {
	return map[string]order.Order{}, nil
}

func (f failingBrain) Save(context.Context, map[string]order.Order) error {
	return f.err
}

func TestSave_SurfacesPersistenceErrors(t *testing.T) {
	boom := errors.New("disk full")
	m := newManager(t, failingBrain{err: boom})
	require.True(t, m.StartOrder("lunch", ""))

	err := m.Save(context.Background())
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, boom)
}

type brokenLoad struct{ failingBrain }

func (brokenLoad) Load(context.Context) (map[string]order.Order, error) {
	return nil, brain.ErrLoad
}

func TestNewManager_LoadError(t *testing.T) {
	_, err := NewManager(context.Background(), brokenLoad{})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, brain.ErrLoad)
}

type recordingJournal struct {
	mu     sync.Mutex
	events []order.Event
	err    error
}

func (j *recordingJournal) Append(_ context.Context, ev order.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
	return j.err
}

func (j *recordingJournal) types() []order.EventType {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]order.EventType, 0, len(j.events))
	for _, ev := range j.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestJournal_RecordsLifecycle(t *testing.T) {
	j := &recordingJournal{}
	m := newManager(t, nil, WithJournal(j))

	require.True(t, m.StartOrder("lunch", "Sub Shop"))
	require.False(t, m.StartOrder("lunch", ""))
	require.True(t, m.SetEntry("lunch", "alice", "BLT"))
	<-m.Settled("lunch")
	m.EndOrdering("lunch")

	assert.Equal(t, []order.EventType{
		order.EventStarted,
		order.EventEntrySet,
		order.EventClosed,
	}, j.types())
	assert.Equal(t, "Sub Shop", j.events[0].Restaurant)
	assert.Equal(t, "alice", j.events[1].User)
}

func TestJournal_FailureDoesNotChangeOutcome(t *testing.T) {
	m := newManager(t, nil, WithJournal(&recordingJournal{err: errors.New("outbox down")}))

	assert.True(t, m.StartOrder("lunch", ""))
	assert.True(t, m.SetEntry("lunch", "alice", "BLT"))
	assert.Equal(t, []string{"alice: BLT"}, peek(t, m, "lunch"))
}

func TestJournal_NoEntryEventsAfterClose(t *testing.T) {
	j := &recordingJournal{}
	m := newManager(t, nil, WithJournal(j))
	require.True(t, m.StartOrder("lunch", ""))

	release := make(chan struct{})
	l := m.orders["lunch"]
	l.Enqueue(func(o order.Order) order.Order {
		<-release
		return o
	})
	require.True(t, m.SetEntry("lunch", "alice", "BLT"))
	m.EndOrdering("lunch")

	close(release)
	<-l.Settled()

	assert.Equal(t, []order.EventType{order.EventStarted, order.EventClosed}, j.types())
	assert.Equal(t, "BLT", l.Snapshot().Entries["alice"], "detached steps still run")
}
