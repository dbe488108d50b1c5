package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"foodbot/domain/order"
	"foodbot/infra/brain"
	"foodbot/infra/logging"
)

var ErrPersistence = errors.New("service: persistence failed")

// Journal records lifecycle events. Failures are logged and never change
// the outcome of the operation that produced the event.
type Journal interface {
	Append(ctx context.Context, ev order.Event) error
}

type Manager struct {
	mu     sync.Mutex
	orders map[string]*order.Ledger

	// saveMu keeps snapshot+write pairs from interleaving, so an older
	// snapshot never overwrites a newer one.
	saveMu sync.Mutex

	// journalMu orders a closing Detach+record against entry steps still
	// running on that ledger, so entry_set never follows closed.
	journalMu sync.Mutex

	brain   brain.Brain
	journal Journal
	log     *zap.Logger
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = logging.OrNop(l) }
}

func WithJournal(j Journal) Option {
	return func(m *Manager) { m.journal = j }
}

// NewManager rehydrates the registry from b.
func NewManager(ctx context.Context, b brain.Brain, opts ...Option) (*Manager, error) {
	m := &Manager{
		orders: make(map[string]*order.Ledger),
		brain:  b,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	saved, err := b.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	for name, o := range saved {
		o.Name = name
		m.orders[name] = order.NewLedger(o)
	}
	m.log.Info("registry loaded", zap.Int("orders", len(m.orders)))
	return m, nil
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// HasOrder reports whether name is an active order.
func (m *Manager) HasOrder(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.orders[name]
	return ok
}

// StartOrder opens a new order. It returns false, changing nothing, when
// an order with that name is already active.
func (m *Manager) StartOrder(name, restaurant string) bool {
	m.mu.Lock()
	if _, ok := m.orders[name]; ok {
		m.mu.Unlock()
		return false
	}
	m.orders[name] = order.NewLedger(order.New(name, restaurant))
	m.mu.Unlock()

	ev := order.NewEvent(order.EventStarted, name)
	ev.Restaurant = restaurant
	m.record(ev)
	m.log.Info("order started", zap.String("order", name), zap.String("restaurant", restaurant))
	return true
}

// SetEntry queues user's entry on the order and returns immediately. The
// entry is applied after every entry queued before it; it is visible once
// Settled(name) closes.
func (m *Manager) SetEntry(name, user, text string) bool {
	l, ok := m.ledger(name)
	if !ok {
		return false
	}

	l.Enqueue(func(o order.Order) order.Order {
		next := o.WithEntry(user, text)

		m.journalMu.Lock()
		defer m.journalMu.Unlock()
		if l.Detached() {
			return next
		}
		ev := order.NewEvent(order.EventEntrySet, name)
		ev.User = user
		ev.Text = text
		m.record(ev)
		return next
	})
	m.log.Debug("entry queued", zap.String("order", name), zap.String("user", user))
	return true
}

// EndOrdering closes the order. Unknown names are a no-op. Steps still
// queued on the order finish into a detached ledger nobody reads.
func (m *Manager) EndOrdering(name string) {
	m.mu.Lock()
	l, ok := m.orders[name]
	if ok {
		delete(m.orders, name)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	m.journalMu.Lock()
	l.Detach()
	m.record(order.NewEvent(order.EventClosed, name))
	m.journalMu.Unlock()
	m.log.Info("order closed", zap.String("order", name))
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

// Peek calls cb exactly once with the order's entries as "<user>: <text>",
// after every entry queued before the call has been applied. It returns
// false, never calling cb, for an unknown order.
//
// cb runs on the order's ledger; it may call EndOrdering and Save but must
// not wait on the same order's Settled channel or call Sync.
func (m *Manager) Peek(name string, cb func(entries []string)) bool {
	l, ok := m.ledger(name)
	if !ok {
		return false
	}
	l.Read(func(o order.Order) {
		cb(o.Lines())
	})
	return true
}

// Restaurant returns the restaurant the order was started with.
func (m *Manager) Restaurant(name string) (string, bool) {
	l, ok := m.ledger(name)
	if !ok {
		return "", false
	}
	return l.Snapshot().Restaurant, true
}

// OrderNames lists active orders in ascending order.
func (m *Manager) OrderNames() []string {
	m.mu.Lock()
	names := make([]string, 0, len(m.orders))
	for name := range m.orders {
		names = append(names, name)
	}
	m.mu.Unlock()

	sort.Strings(names)
	return names
}

// Settled returns a channel that closes once every step queued on name so
// far has been applied. Unknown orders yield a closed channel.
func (m *Manager) Settled(name string) <-chan struct{} {
	l, ok := m.ledger(name)
	if !ok {
		done := make(chan struct{})
		close(done)
		return done
	}
	return l.Settled()
}

//
// ──────────────────────────────────────────────────────────
// Persistence
// ──────────────────────────────────────────────────────────
//

// Save writes the registry to the brain. Each order contributes its last
// resolved state; steps still pending are not captured.
func (m *Manager) Save(ctx context.Context) error {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	snapshot := m.snapshot()
	if err := m.brain.Save(ctx, snapshot); err != nil {
		m.log.Error("registry save failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	m.log.Debug("registry saved", zap.Int("orders", len(snapshot)))
	return nil
}

// Sync waits until every order has applied the steps queued so far, then
// saves. It gives up with ctx's error if ctx ends first.
func (m *Manager) Sync(ctx context.Context) error {
	m.mu.Lock()
	waits := make([]<-chan struct{}, 0, len(m.orders))
	for _, l := range m.orders {
		waits = append(waits, l.Settled())
	}
	m.mu.Unlock()

	for _, done := range waits {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.Save(ctx)
}

func (m *Manager) snapshot() map[string]order.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]order.Order, len(m.orders))
	for name, l := range m.orders {
		out[name] = l.Snapshot()
	}
	return out
}

func (m *Manager) ledger(name string) (*order.Ledger, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.orders[name]
	return l, ok
}

func (m *Manager) record(ev order.Event) {
	if m.journal == nil {
		return
	}
	if err := m.journal.Append(context.Background(), ev); err != nil {
		m.log.Warn("journal append failed",
			zap.String("order", ev.Order),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}
