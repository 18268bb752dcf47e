// Package daemon hosts the long-running NestVision process: single-instance
// locking, the feed poller lifecycle, and the HTTP API the CLI talks to.
package daemon
