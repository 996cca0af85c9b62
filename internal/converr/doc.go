// Package converr defines the conversion error taxonomy.
//
// Key responsibilities:
//   - Sentinel markers for each failure family (material, clip, blend tree,
//     controller, cyclic input, registry invariant) so callers can branch with
//     errors.Is.
//   - AssetError, which names the offending asset by kind, id, and display
//     name while keeping the full cause chain.
//   - The Wrap helper that prefixes stage and operation context while keeping
//     both the marker and the underlying cause reachable.
//
// Every stage of the pipeline reports failures through these types so the CLI
// can always show which asset failed and why.
package converr
