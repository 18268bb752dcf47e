// Package ingest turns feed messages into stored, catalogued recordings. It
// holds the duplicate detector, the file materializer, the serialized ingest
// pipeline, and the feed cursor poller that drives them.
package ingest
