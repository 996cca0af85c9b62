// Package pipeline orchestrates one conversion run over a rig.
//
// A run discovers every asset reachable from the rig, then converts stage by
// stage: materials (with baked or resized textures), animation clips that
// swap converted materials, blend trees in leaves-first order, animator
// controllers, and finally a duplicated rig rebound to the converted
// materials and controllers. Each stage finishes before the next reads its
// substitution map.
//
// Any per-asset failure aborts the batch. Assets already persisted by the
// run are deleted and the first failure is returned with the offending
// asset's kind, id, and name. Blend tree cycles are detected during
// discovery, before anything is written.
//
// Progress is reported synchronously through an Observer; observers never
// influence control flow.
package pipeline
