// Package controller rewrites animator controller state motions.
//
// Rewrite walks every layer, state machine, nested sub state machine, and
// state of a controller and substitutes clip and blend tree motions through
// a Motions table. Controllers without an affected state are returned as-is
// so the pipeline can pass them through without persisting a duplicate.
package controller
