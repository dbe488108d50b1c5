package snapshot

import (
	"encoding/gob"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"foodbot/domain/order"
)

// Load reads the snapshot in dir. A missing file is an empty registry at
// sequence zero.
func Load(dir string) (uint64, map[string]order.Order, error) {
	orders := map[string]order.Order{}

	f, err := os.Open(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, orders, nil
	}
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return 0, nil, err
	}

	for _, e := range s.Orders {
		o := order.New(e.Name, e.Restaurant)
		for user, text := range e.Entries {
			o.Entries[user] = text
		}
		orders[e.Name] = o
	}
	return s.Seq, orders, nil
}
