// Package snapshot is a file-backed brain. Every save writes the full
// registry as one gob-encoded Snapshot, replacing the previous file
// atomically. Each snapshot carries a sequence number that grows by one per
// save, which makes it easy to tell which of two files is newer.
package snapshot
