package pipeline

import (
	"time"

	"rigconvert/internal/asset"
	"rigconvert/internal/registry"
	"rigconvert/internal/rig"
)

// PassThrough records an asset reused unchanged.
type PassThrough struct {
	Kind   asset.Kind
	ID     asset.ID
	Name   string
	Reason string
}

// Result summarizes a successful run.
type Result struct {
	RunID      string
	OutputRoot string
	// Rig is the converted root object graph and RigPath its store path.
	Rig     asset.ID
	RigPath string
	// Converted lists persisted conversions in the order they were made.
	Converted []registry.Entry
	Passed    []PassThrough
	// Changes is the rebind log of the duplicated rig.
	Changes  []rig.Change
	Duration time.Duration
}

// Counts returns converted and passed-through totals per kind.
func (r *Result) Counts() (converted, passed map[asset.Kind]int) {
	converted = make(map[asset.Kind]int)
	passed = make(map[asset.Kind]int)
	for _, e := range r.Converted {
		converted[e.Kind]++
	}
	for _, p := range r.Passed {
		passed[p.Kind]++
	}
	return converted, passed
}

// ConvertedID returns the converted id for a source, if the run produced one.
func (r *Result) ConvertedID(kind asset.Kind, source asset.ID) (asset.ID, bool) {
	for _, e := range r.Converted {
		if e.Kind == kind && e.Source == source {
			return e.Target, true
		}
	}
	return "", false
}
