// Package registry memoizes converted assets for one conversion run.
//
// A Registry keeps one source-id to target-id table per asset kind. The first
// GetOrInsert for a key computes the converted asset, persists it under the
// run's output root, and records the mapping; later calls return the cached id
// without computing or saving again. Failed computations leave the key unset
// so a later call may retry.
//
// Registries are created per run by the pipeline and discarded afterwards.
// Discard deletes every asset the registry persisted, newest first, which the
// pipeline uses to roll back a failed batch.
package registry
