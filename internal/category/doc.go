// Package category defines the closed set of incident classifications and the
// two classification paths: keyword search over free-text captions/labels for
// feed messages, and exact folder-name alias lookup for scanned directories.
package category
