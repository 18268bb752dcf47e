// Command nestvision is the CLI client for the nestvisiond daemon. All
// commands talk to the daemon's HTTP API; nothing here touches the catalog or
// the storage tree directly.
package main
