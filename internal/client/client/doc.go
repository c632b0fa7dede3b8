// Package client contains the remote-operation side of fileconv.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface) for the
//     conversion API: multipart upload of a conversion or compression job,
//     retrieval of the result download URL, the server-push progress stream,
//     and the history listings.
//  2. A concrete HTTP implementation (see HTTPClient) that reports upload
//     progress from bytes handed to the transport, tags every request with a
//     request id, and maps HTTP failures to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) for the
//     history cache, wiring SQLite and the embedded goose migrations.
//
// # Error Handling
//
// Failures match the sentinels in internal/common with errors.Is:
// ErrTransport (network, non-2xx, malformed body; see APIError for status
// and detail), ErrNotReady (download requested before the task completed).
// ErrStreamUnsupported marks a server without a usable progress stream.
//
// # Cancellation
//
// Every call honors its context. Cancelling the context of an in-flight
// Upload aborts the transfer; the call then returns an error wrapping
// context.Canceled.
package client
