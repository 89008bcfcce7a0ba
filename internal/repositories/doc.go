// Package repositories implements SQLite persistence for the artwork gallery.
//
// [ArtworkRepository] stores every generated image with the prompt and metric snapshot that produced it.
// Records are immutable once written: they can be listed, fetched and deleted but never updated.
//
// Sequence numbers provide stable, human-readable ordering (e.g., artwork #15) independent of UUIDs.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
