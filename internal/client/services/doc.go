// Package services sits between the CLI and the lower layers for everything
// that is not the running task itself: the history listing with its local
// cache, the record of tasks started on this machine, and saving results.
package services
