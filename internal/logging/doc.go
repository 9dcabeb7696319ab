// Package logging provides leveled, printf-style logging for the service.
//
// It is a thin facade over zerolog with a console writer, configured once
// from environment variables:
//
//   - DEBUG=1 (or true/yes/on) enables debug logging
//   - LOG_LEVEL=debug|info|warn|error sets the level explicitly
//
// The default level is info. Call sites use the printf helpers directly:
//
//	logging.Info("Registered %s variant for source %s", kind, id)
package logging
