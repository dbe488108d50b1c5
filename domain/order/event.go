package order

import "time"

type EventType string

const (
	EventStarted  EventType = "order.started"
	EventEntrySet EventType = "order.entry_set"
	EventClosed   EventType = "order.closed"
)

// Event is one lifecycle change of an order. Seq is assigned by the journal
// that records it.
type Event struct {
	V          int       `json:"v"`
	Seq        uint64    `json:"seq"`
	Type       EventType `json:"type"`
	Order      string    `json:"order"`
	Restaurant string    `json:"restaurant,omitempty"`
	User       string    `json:"user,omitempty"`
	Text       string    `json:"text,omitempty"`
	At         time.Time `json:"at"`
}

const EventVersion = 1

func NewEvent(t EventType, name string) Event {
	return Event{
		V:     EventVersion,
		Type:  t,
		Order: name,
		At:    time.Now().UTC(),
	}
}
