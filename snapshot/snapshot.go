package snapshot

import "time"

const FileName = "foodbot.orders.snap"

type Snapshot struct {
	Seq     uint64
	Created time.Time
	Orders  []OrderEntry
}

type OrderEntry struct {
	Name       string
	Restaurant string
	Entries    map[string]string
}
