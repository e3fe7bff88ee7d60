// Package logging assembles structured slog loggers for mediaprobe.
//
// It owns the console and JSON handlers, routes log output to stderr (stdout
// belongs to the probe report) with an optional file copy, and exposes
// context-aware helpers so every line of a run can carry its run ID and the
// input being probed. A no-op logger is provided for tests and wiring code
// that cannot fail.
//
// WARN and ERROR lines are expected to say what happened, what it costs, and
// what to do next; WarnWithContext and ErrorWithContext enforce the keys.
package logging
