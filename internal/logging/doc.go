// Package logging provides file-based logging with rotation for memoryforge.
// `memoryforge serve` calls SetupMCPMode, which writes debug-level JSON logs
// to the file at DefaultLogPath and never to stdout or stderr.
//
// The other commands do not set up this package; their log output uses
// slog's default handler.
package logging
