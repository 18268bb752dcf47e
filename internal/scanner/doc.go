// Package scanner catalogs recordings placed into the storage tree by hand.
// A scan is a one-shot pass triggered over the HTTP API; it never runs in the
// background.
package scanner
