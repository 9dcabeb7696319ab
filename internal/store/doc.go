// Package store abstracts the backing byte store behind a narrow
// read/write/exists interface.
//
// The pipeline's idempotency rules ("skip when the output already
// exists") and failure cleanup ("no partial artifacts left behind") are
// all expressed against this interface, so tests can use the in-memory
// implementation and assert call counts instead of touching the real
// filesystem.
package store
