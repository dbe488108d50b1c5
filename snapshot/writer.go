package snapshot

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"sort"
	"time"

	"foodbot/domain/order"
)

type Writer struct {
	Dir string
}

// Write replaces the snapshot file. The data goes to a temp file first so a
// crash mid-write leaves the previous snapshot intact.
func (w *Writer) Write(seq uint64, orders map[string]order.Order) error {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(w.Dir, FileName+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	s := Snapshot{
		Seq:     seq,
		Created: time.Now().UTC(),
		Orders:  make([]OrderEntry, 0, len(orders)),
	}
	for name, o := range orders {
		s.Orders = append(s.Orders, OrderEntry{
			Name:       name,
			Restaurant: o.Restaurant,
			Entries:    o.Clone().Entries,
		})
	}
	sort.Slice(s.Orders, func(i, j int) bool { return s.Orders[i].Name < s.Orders[j].Name })

	if err := gob.NewEncoder(f).Encode(&s); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(w.Dir, FileName))
}
