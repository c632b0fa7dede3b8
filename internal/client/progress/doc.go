// Package progress follows a remote task until it reaches a terminal state.
//
// A Listener subscribes to the server-push progress stream of a task and
// reports each decoded event, then exactly one terminal outcome: success with
// the result download URL, or failure. Lost connections are retried with a
// linear backoff (attempt n waits n*ReconnectDelay) up to MaxReconnects
// consecutive failures; the counter resets on every decoded event. When the
// server has no usable stream, or polling is configured, the Listener polls
// the download endpoint every PollInterval instead.
//
// Subscription.Unsubscribe is idempotent and never blocks: it cancels the
// in-flight request and any pending timer. No callback starts after it
// returns.
package progress
