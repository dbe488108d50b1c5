package brain

import (
	"context"
	"errors"

	"github.com/cockroachdb/pebble"

	"foodbot/domain/order"
)

// Pebble stores the registry in a local pebble database.
type Pebble struct {
	db *pebble.DB
}

func OpenPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Pebble{db: db}, nil
}

func (p *Pebble) Close() error {
	return p.db.Close()
}

func (p *Pebble) Load(_ context.Context) (map[string]order.Order, error) {
	val, closer, err := p.db.Get([]byte(Key))
	if errors.Is(err, pebble.ErrNotFound) {
		return map[string]order.Order{}, nil
	}
	if err != nil {
		return nil, loadErr(err)
	}
	defer closer.Close()

	// val is only valid until closer.Close.
	orders, err := Decode(val)
	if err != nil {
		return nil, loadErr(err)
	}
	return orders, nil
}

func (p *Pebble) Save(_ context.Context, orders map[string]order.Order) error {
	data, err := Encode(orders)
	if err != nil {
		return saveErr(err)
	}
	if err := p.db.Set([]byte(Key), data, pebble.Sync); err != nil {
		return saveErr(err)
	}
	return nil
}
