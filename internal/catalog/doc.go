// Package catalog persists VideoRecord entries in SQLite.
//
// Records are append-only from the pipeline's point of view: the poller and
// scanner insert, the API reads, nothing updates in place. A partial unique
// index on source_file_id makes the store the final authority on feed-level
// duplicates regardless of how producers interleave.
package catalog
