// Package service owns the registry of active food orders.
//
// Manager is the only write entry point. It coordinates:
//   - domain (order ledgers, one per active order)
//   - infra (the brain that persists the registry, the event journal)
//
// Existence checks are synchronous against the in-memory registry. Entry
// writes and reads are queued on the order's ledger and resolve later, in
// submission order.
package service
