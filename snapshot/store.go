package snapshot

import (
	"context"
	"fmt"
	"sync"

	"foodbot/domain/order"
	"foodbot/infra/brain"
)

// Store adapts Writer and Load to brain.Brain.
type Store struct {
	mu  sync.Mutex
	w   Writer
	seq uint64
}

var _ brain.Brain = (*Store)(nil)

func NewStore(dir string) *Store {
	return &Store{w: Writer{Dir: dir}}
}

// Seq is the sequence of the last snapshot read or written.
func (s *Store) Seq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

func (s *Store) Load(_ context.Context) (map[string]order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq, orders, err := Load(s.w.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", brain.ErrLoad, err)
	}
	s.seq = seq
	return orders, nil
}

func (s *Store) Save(_ context.Context, orders map[string]order.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.w.Write(s.seq+1, orders); err != nil {
		return fmt.Errorf("%w: %w", brain.ErrSave, err)
	}
	s.seq++
	return nil
}
