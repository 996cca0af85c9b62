// Package main hosts the rigconvert CLI entrypoint and command graph.
//
// The Cobra command tree imports rig bundles into the asset store, inspects
// what a conversion would touch, runs conversions (optionally as a dry run
// against an in-memory overlay), and exports rigs back to bundles. It
// centralizes configuration resolution, the store lock, and structured
// logging setup so subcommands stay small.
//
// Keep this package lean: new behavior belongs in the internal packages and
// is surfaced here through dedicated commands or flags.
package main
