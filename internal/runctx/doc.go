// Package runctx stamps conversion run metadata onto contexts.
//
// The pipeline annotates the context with a run identifier, the active stage,
// and the asset currently being converted; internal/logging reads these back
// so every log line emitted during a run carries the same correlation fields.
package runctx
