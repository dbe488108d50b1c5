package order

import "sort"

// Order is one named group order.
type Order struct {
	Name       string            `json:"name"`
	Restaurant string            `json:"restaurant,omitempty"`
	Entries    map[string]string `json:"entries"`
}

// New returns an empty order. restaurant may be empty.
func New(name, restaurant string) Order {
	return Order{
		Name:       name,
		Restaurant: restaurant,
		Entries:    make(map[string]string),
	}
}

// HasRestaurant reports whether the order was tagged with a restaurant.
func (o Order) HasRestaurant() bool {
	return o.Restaurant != ""
}

// Clone returns a deep copy.
func (o Order) Clone() Order {
	out := o
	out.Entries = make(map[string]string, len(o.Entries))
	for user, text := range o.Entries {
		out.Entries[user] = text
	}
	return out
}

// WithEntry returns a copy of o where user's entry is text.
// A previous entry for the same user is overwritten.
func (o Order) WithEntry(user, text string) Order {
	out := o.Clone()
	out.Entries[user] = text
	return out
}

// Lines renders the entries as "<user>: <text>", sorted by user.
func (o Order) Lines() []string {
	lines := make([]string, 0, len(o.Entries))
	for user, text := range o.Entries {
		lines = append(lines, Normalize(user)+": "+text)
	}
	sort.Strings(lines)
	return lines
}
