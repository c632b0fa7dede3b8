// Package records persists the tasks started from this machine: which file
// (by content fingerprint) was sent, what was asked, and how it ended.
package records
