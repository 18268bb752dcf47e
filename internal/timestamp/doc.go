// Package timestamp recovers best-effort recording times for incident videos.
//
// Two independent strategies exist and are never combined: feed delivery time
// (FromUnix) for messages, and filename pattern matching with filesystem and
// wall-clock fallbacks (FromFilename/ForFile) for scanned files. Every entry
// point is total: callers always receive a usable time.
package timestamp
