// Package database provides SQLite-backed persistence for the service.
//
// It stores three things:
//
//   - derived_assets: the registrar records, at most one per
//     (source id, variant kind) pair
//   - sources: the source GIFs the pipeline has processed, used for
//     batch reprocessing and presentation queries
//   - settings: the key-value store holding the default rendering
//     strategy and the cached transcode capability verdict
//
// The database uses WAL mode with a busy timeout. All operations take a
// context and run under an internal deadline.
package database
