// Package logging constructs slog loggers for the daemon and CLI.
//
// Two output formats are supported: a compact console format for interactive
// use (colorized when stdout is a terminal) and line-delimited JSON for log
// files and collectors. Helpers mirror the slog attr constructors so call
// sites stay terse, and NewComponentLogger stamps a component attribute on
// derived loggers.
//
// Loggers are always passed explicitly; nothing in this package installs a
// global default.
package logging
