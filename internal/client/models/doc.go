// Package models defines the client-side data model of fileconv: the single
// orchestrated Task, the operation a caller submits, and the wire shapes of
// the remote API (submission answers, progress events, history rows).
package models
