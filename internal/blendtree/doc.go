// Package blendtree orders blend trees leaves-first and rewrites their child
// motions.
//
// Blend trees form a DAG: a tree may embed other trees as child motions.
// Order returns an order in which every embedded tree precedes the trees
// that embed it, and fails with a converr.CycleError when no order exists.
// Rewrite substitutes child clip and tree references through the maps built
// so far, returning the original tree when nothing changes.
package blendtree
