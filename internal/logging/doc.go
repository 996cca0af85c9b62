// Package logging assembles structured slog loggers and formatting helpers used
// across rigconvert.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code automatically
// tags log lines with run identifiers, stages, and asset ids. The package also
// provides a no-op logger for tests and wiring code that cannot fail, plus a
// tee helper that mirrors a run into its own JSON log file. Old run logs are
// pruned by PruneRunLogs.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape as the rest of the system.
package logging
