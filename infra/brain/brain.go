// Package brain persists the order registry as one value under a fixed key.
package brain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"foodbot/domain/order"
)

// Key is the namespace every brain stores the registry under.
const Key = "foodbot.orders"

var (
	ErrLoad = errors.New("brain: load failed")
	ErrSave = errors.New("brain: save failed")
)

// Brain loads and saves the full registry snapshot. Load returns an empty,
// non-nil map when nothing was saved yet.
type Brain interface {
	Load(ctx context.Context) (map[string]order.Order, error)
	Save(ctx context.Context, orders map[string]order.Order) error
}

// Encode serializes a registry snapshot.
func Encode(orders map[string]order.Order) ([]byte, error) {
	if orders == nil {
		orders = map[string]order.Order{}
	}
	return json.Marshal(orders)
}

// Decode is the inverse of Encode. Entries maps are never nil and each
// order's Name matches its key.
func Decode(data []byte) (map[string]order.Order, error) {
	out := map[string]order.Order{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", Key, err)
	}
	for name, o := range out {
		o.Name = name
		if o.Entries == nil {
			o.Entries = map[string]string{}
		}
		out[name] = o
	}
	return out, nil
}

func loadErr(err error) error {
	return fmt.Errorf("%w: %w", ErrLoad, err)
}

func saveErr(err error) error {
	return fmt.Errorf("%w: %w", ErrSave, err)
}
