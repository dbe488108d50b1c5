package order

import "sync"

// Step is one queued mutation. It receives the order as materialized by all
// earlier steps and returns the next state.
type Step func(Order) Order

// Ledger serializes the steps applied to one order.
//
// Each enqueued step waits for the completion of the step queued before it,
// so the N-th step always observes the result of the (N-1)-th no matter how
// long either takes. Enqueue never blocks the caller.
type Ledger struct {
	mu       sync.Mutex
	current  Order
	tail     chan struct{}
	pending  int
	detached bool
}

func NewLedger(o Order) *Ledger {
	done := make(chan struct{})
	close(done)
	return &Ledger{
		current: o.Clone(),
		tail:    done,
	}
}

// Enqueue appends step to the chain. The returned channel closes once the
// step has been applied.
func (l *Ledger) Enqueue(step Step) <-chan struct{} {
	l.mu.Lock()
	prev := l.tail
	done := make(chan struct{})
	l.tail = done
	l.pending++
	l.mu.Unlock()

	go func() {
		defer close(done)
		<-prev

		l.mu.Lock()
		cur := l.current.Clone()
		l.mu.Unlock()

		next := step(cur)

		l.mu.Lock()
		l.current = next
		l.pending--
		l.mu.Unlock()
	}()
	return done
}

// Read queues fn behind every step enqueued so far. fn gets a private copy
// and cannot change the order.
func (l *Ledger) Read(fn func(Order)) <-chan struct{} {
	return l.Enqueue(func(o Order) Order {
		fn(o.Clone())
		return o
	})
}

// Snapshot returns the last resolved state. Steps still pending are not
// reflected.
func (l *Ledger) Snapshot() Order {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.Clone()
}

// Settled returns a channel that closes once every step enqueued so far has
// been applied.
func (l *Ledger) Settled() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tail
}

// Pending is the number of steps not yet applied.
func (l *Ledger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Detach marks the ledger as removed from its registry. Steps already queued
// still run to completion; nothing reads their result.
func (l *Ledger) Detach() {
	l.mu.Lock()
	l.detached = true
	l.mu.Unlock()
}

func (l *Ledger) Detached() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.detached
}
