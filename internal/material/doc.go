// Package material converts materials to a platform-approved shader and bakes
// their texture and color slots into a single main texture.
//
// Convert is pure with respect to the store: it loads source textures but
// never saves. The pipeline persists the returned material and textures
// through the conversion registry so shared sources convert once.
//
// Pixel composition is injectable through ComposeFunc. DefaultCompose
// multiplies the main texture by the main color and brightness scale, then
// adds the primary and secondary emission layers. Results larger than the
// policy's texture limit are downscaled with a Catmull-Rom filter.
package material
