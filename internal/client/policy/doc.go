// Package policy holds the static format and size rules checked before any
// request leaves the client: supported formats and the conversion matrix,
// compressible formats with their minimum target sizes, the upload size cap,
// page selection rules, and content sniffing against the file extension.
//
// Every rejection is a *ValidationError, which matches common.ErrValidation
// with errors.Is.
package policy
