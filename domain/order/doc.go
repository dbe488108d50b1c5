// Package order holds the in-memory state of one group food order.
//
// An Order accumulates one entry per user. All mutations of an active
// order go through its Ledger, which applies them strictly in submission
// order even when an individual step takes time to resolve. Reads queued on
// the same Ledger observe every write submitted before them.
//
// The package has no persistence or transport concerns; those live in
// service and infra.
package order
