// Package feed wraps the incident message feed's bot HTTP API: long-poll
// update batches and remote file resolution. Requests are paced by a shared
// rate limiter so the poller and manual triggers cannot trip feed-side limits.
package feed
