// Package rig duplicates a rig hierarchy and rebinds its references.
//
// Duplication and rebinding are separate steps. Duplicate produces a
// structural deep copy with no identity of its own; Rebind then walks the
// copy and substitutes animation player controllers and renderer material
// slots through the run's substitution maps. Players are rebound before
// renderers so the explicit material rewrite is applied last.
package rig
