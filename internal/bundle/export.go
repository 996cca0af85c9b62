package bundle

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"rigconvert/internal/asset"
	"rigconvert/internal/converr"
	"rigconvert/internal/logging"
	"rigconvert/internal/textutil"
)

// DocumentName is the file Export writes inside the target directory.
const DocumentName = "bundle.yaml"

const textureDir = "textures"

// Export writes the rig and every asset it reaches into dir as a bundle.
// Texture pixels are written as PNG files under dir/textures.
func Export(ctx context.Context, store asset.Store, rigID asset.ID, dir string, logger *slog.Logger) (*Document, error) {
	logger = logging.NewComponentLogger(logger, "bundle")
	w := &walker{ctx: ctx, store: store, seen: make(map[asset.ID]bool)}
	doc, textures, err := w.collect(rigID)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Join(dir, textureDir), 0o755); err != nil {
		return nil, fmt.Errorf("create bundle directory: %w", err)
	}
	for _, tex := range textures {
		name := textutil.AssetFileName(tex.Name, tex.ID.Short(), ".png")
		if err := writePNG(filepath.Join(dir, textureDir, name), tex.Image()); err != nil {
			return nil, fmt.Errorf("write texture %s: %w", asset.Describe(tex), err)
		}
		doc.Textures = append(doc.Textures, Texture{Meta: tex.Meta, File: path.Join(textureDir, name)})
	}
	target := filepath.Join(dir, DocumentName)
	if err := WriteFile(target, doc); err != nil {
		return nil, err
	}
	logger.Info("bundle exported",
		logging.String(logging.FieldEventType, "bundle_exported"),
		logging.String("bundle", target),
		logging.String("rig_id", string(rigID)),
		logging.Int("textures", len(doc.Textures)),
		logging.Int("materials", len(doc.Materials)),
		logging.Int("clips", len(doc.Clips)),
		logging.Int("blend_trees", len(doc.BlendTrees)),
		logging.Int("controllers", len(doc.Controllers)),
	)
	return doc, nil
}

type walker struct {
	ctx      context.Context
	store    asset.Store
	seen     map[asset.ID]bool
	doc      Document
	textures []*asset.Texture
}

func (w *walker) collect(rigID asset.ID) (*Document, []*asset.Texture, error) {
	w.doc.Version = Version
	rig, err := asset.Load[*asset.Rig](w.ctx, w.store, rigID)
	if err != nil {
		return nil, nil, converr.Wrap(converr.ErrValidation, "export", "load rig", string(rigID), err)
	}
	if rig.Root == nil {
		return nil, nil, converr.Wrap(converr.ErrValidation, "export", "load rig", asset.Describe(rig)+" has no root node", nil)
	}
	w.seen[rig.ID] = true
	for _, id := range rig.MaterialSlots() {
		if err := w.material(id); err != nil {
			return nil, nil, err
		}
	}
	for _, id := range rig.Controllers() {
		if err := w.controller(id); err != nil {
			return nil, nil, err
		}
	}
	w.doc.Rigs = append(w.doc.Rigs, rig)
	return &w.doc, w.textures, nil
}

func (w *walker) visit(id asset.ID) bool {
	if id.IsZero() || w.seen[id] {
		return false
	}
	w.seen[id] = true
	return true
}

func (w *walker) fail(kind asset.Kind, id asset.ID, err error) error {
	return converr.Wrap(converr.ErrValidation, "export", "load "+string(kind), string(id), err)
}

func (w *walker) material(id asset.ID) error {
	if !w.visit(id) {
		return nil
	}
	m, err := asset.Load[*asset.Material](w.ctx, w.store, id)
	if err != nil {
		return w.fail(asset.KindMaterial, id, err)
	}
	for _, texID := range m.Textures {
		if !w.visit(texID) {
			continue
		}
		tex, err := asset.Load[*asset.Texture](w.ctx, w.store, texID)
		if err != nil {
			return w.fail(asset.KindTexture, texID, err)
		}
		w.textures = append(w.textures, tex)
	}
	w.doc.Materials = append(w.doc.Materials, m)
	return nil
}

func (w *walker) motion(m asset.Motion) error {
	if !w.visit(m.ID) {
		return nil
	}
	switch m.Kind {
	case asset.MotionClip:
		clip, err := asset.Load[*asset.AnimationClip](w.ctx, w.store, m.ID)
		if err != nil {
			return w.fail(asset.KindClip, m.ID, err)
		}
		for _, id := range clip.MaterialReferences() {
			if err := w.material(id); err != nil {
				return err
			}
		}
		w.doc.Clips = append(w.doc.Clips, clip)
	case asset.MotionBlend:
		tree, err := asset.Load[*asset.BlendTree](w.ctx, w.store, m.ID)
		if err != nil {
			return w.fail(asset.KindBlendTree, m.ID, err)
		}
		for _, child := range tree.Children {
			if err := w.motion(child.Motion); err != nil {
				return err
			}
		}
		w.doc.BlendTrees = append(w.doc.BlendTrees, tree)
	}
	return nil
}

func (w *walker) controller(id asset.ID) error {
	if !w.visit(id) {
		return nil
	}
	c, err := asset.Load[*asset.AnimatorController](w.ctx, w.store, id)
	if err != nil {
		return w.fail(asset.KindController, id, err)
	}
	for _, m := range c.Motions() {
		if err := w.motion(m); err != nil {
			return err
		}
	}
	w.doc.Controllers = append(w.doc.Controllers, c)
	return nil
}
