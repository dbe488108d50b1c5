package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(user, text string, delay time.Duration) Step {
	return func(o Order) Order {
		if delay > 0 {
			time.Sleep(delay)
		}
		return o.WithEntry(user, text)
	}
}

func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("ledger step did not resolve")
	}
}

func TestLedger_AppliesInSubmissionOrder(t *testing.T) {
	l := NewLedger(New("lunch", ""))

	// The first write is the slowest; it must still land first.
	l.Enqueue(set("alice", "a", 50*time.Millisecond))
	l.Enqueue(set("alice", "b", 0))
	wait(t, l.Settled())

	assert.Equal(t, "b", l.Snapshot().Entries["alice"])
	assert.Zero(t, l.Pending())
}

func TestLedger_ConcurrentUsersAllKept(t *testing.T) {
	l := NewLedger(New("lunch", ""))

	l.Enqueue(set("u1", "x", 10*time.Millisecond))
	l.Enqueue(set("u2", "y", 0))
	wait(t, l.Settled())

	assert.Equal(t, map[string]string{"u1": "x", "u2": "y"}, l.Snapshot().Entries)
}

func TestLedger_ReadSeesPriorWrites(t *testing.T) {
	l := NewLedger(New("lunch", ""))

	var seen []string
	l.Enqueue(set("alice", "BLT", 20*time.Millisecond))
	done := l.Read(func(o Order) { seen = o.Lines() })
	l.Enqueue(set("bob", "soup", 0))

	wait(t, done)
	assert.Equal(t, []string{"alice: BLT"}, seen)

	wait(t, l.Settled())
	assert.Len(t, l.Snapshot().Entries, 2)
}

func TestLedger_ReadCannotMutate(t *testing.T) {
	l := NewLedger(New("lunch", ""))
	wait(t, l.Read(func(o Order) { o.Entries["mallory"] = "everything" }))

	assert.Empty(t, l.Snapshot().Entries)
}

func TestLedger_SnapshotIsLastResolved(t *testing.T) {
	l := NewLedger(New("lunch", ""))
	release := make(chan struct{})

	l.Enqueue(func(o Order) Order {
		<-release
		return o.WithEntry("alice", "BLT")
	})

	assert.Empty(t, l.Snapshot().Entries)
	assert.Equal(t, 1, l.Pending())

	close(release)
	wait(t, l.Settled())
	assert.Equal(t, "BLT", l.Snapshot().Entries["alice"])
}

func TestLedger_DetachLetsPendingStepsFinish(t *testing.T) {
	l := NewLedger(New("lunch", ""))
	done := l.Enqueue(set("alice", "BLT", 10*time.Millisecond))
	l.Detach()

	wait(t, done)
	require.True(t, l.Detached())
	assert.Equal(t, "BLT", l.Snapshot().Entries["alice"])
}
