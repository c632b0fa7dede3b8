// Package cli is the fileconv command line.
//
// Execute loads the configuration, opens the local store and wires the HTTP
// client, the progress listener and the task controller into an App. The
// convert and compress commands submit one operation, draw its progress and
// save the result into the output directory. Ctrl-C cancels the running
// task. history lists past tasks (remote, or cached when the service is
// unreachable; --local for tasks started here) and formats prints the
// conversion matrix.
package cli
