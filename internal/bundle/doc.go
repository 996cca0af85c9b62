// Package bundle reads and writes YAML asset bundles.
//
// A bundle is a single YAML document listing textures, materials, clips,
// blend trees, controllers and rigs by id. Texture pixels live beside the
// document as PNG files or are described by a solid fill color. Import writes
// every asset into a store with its bundle id so references stay intact;
// Export walks a rig and writes everything it reaches.
package bundle
