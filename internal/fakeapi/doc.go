// Package fakeapi is an in-memory stand-in for the conversion API.
//
// It serves the same routes and wire formats as the real service (multipart
// submissions, the SSE progress stream, download handles and history) and
// lets callers script the progress stream per job. Tests mount Handler on an
// httptest.Server; cmd/fakeapi serves it for local runs of the CLI.
package fakeapi
