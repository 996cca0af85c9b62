// Package asset defines the content graph that rigconvert reads and writes.
//
// Every persisted unit (material, texture, animation clip, blend tree,
// animator controller, rig) embeds a Meta header carrying its identity. The
// identity, not the content, is what the conversion registries key on: two
// handles with the same ID are the same asset.
//
// The Store interface is the only way the pipeline touches persistence. The
// concrete SQLite, in-memory, and overlay implementations live in
// internal/assetstore.
package asset
