package bundle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"rigconvert/internal/asset"
	"rigconvert/internal/converr"
	"rigconvert/internal/logging"
	"rigconvert/internal/textutil"
)

// ImportRoot is the store directory used for bundle entries without a path.
const ImportRoot = "Imported"

const defaultFillSize = 4

// Imported records one asset written by Import.
type Imported struct {
	Kind asset.Kind
	ID   asset.ID
	Name string
	Path string
}

// Import reads the bundle at file and saves every entry into store, keeping
// bundle ids. All references are checked before anything is written.
// References may point at assets already present in the store.
func Import(ctx context.Context, store asset.Store, file string, logger *slog.Logger) ([]Imported, error) {
	logger = logging.NewComponentLogger(logger, "bundle")
	doc, err := ReadFile(file)
	if err != nil {
		return nil, converr.Wrap(converr.ErrValidation, "import", "read bundle", file, err)
	}
	declared, err := doc.ids()
	if err != nil {
		return nil, converr.Wrap(converr.ErrValidation, "import", "index ids", file, err)
	}
	if err := checkReferences(ctx, store, doc, declared); err != nil {
		return nil, converr.Wrap(converr.ErrValidation, "import", "check references", file, err)
	}

	textures := make([]*asset.Texture, 0, len(doc.Textures))
	for _, entry := range doc.Textures {
		tex, err := loadTexture(filepath.Dir(file), entry)
		if err != nil {
			return nil, converr.Wrap(converr.ErrValidation, "import", "load texture", asset.Describe(&asset.Texture{Meta: entry.Meta}), err)
		}
		textures = append(textures, tex)
	}

	var out []Imported
	save := func(a asset.Asset) error {
		h := a.Header()
		target := h.Path
		if strings.TrimSpace(target) == "" {
			target = defaultPath(a)
		}
		id, err := store.Save(ctx, a, target)
		if err != nil {
			return converr.Wrap(converr.ErrStore, "import", "save", asset.Describe(a), err)
		}
		out = append(out, Imported{Kind: a.Kind(), ID: id, Name: h.Name, Path: h.Path})
		return nil
	}
	for _, tex := range textures {
		if err := save(tex); err != nil {
			return out, err
		}
	}
	assets, _ := doc.assets()
	for _, a := range assets {
		if err := save(a); err != nil {
			return out, err
		}
	}

	logger.Info("bundle imported",
		logging.String(logging.FieldEventType, "bundle_imported"),
		logging.String("bundle", file),
		logging.Int("assets", len(out)),
	)
	return out, nil
}

func defaultPath(a asset.Asset) string {
	name := textutil.SanitizeFileName(a.Header().Name)
	if name == "" {
		name = string(a.Header().ID)
	}
	return path.Join(ImportRoot, a.Kind().Directory(), name+a.Kind().Extension())
}

func loadTexture(dir string, entry Texture) (*asset.Texture, error) {
	switch {
	case entry.File != "" && entry.Fill != "":
		return nil, errors.New("texture sets both file and fill")
	case entry.File != "":
		file := entry.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, filepath.FromSlash(file))
		}
		img, err := readImage(file)
		if err != nil {
			return nil, err
		}
		tex := asset.TextureFromImage(entry.Name, img)
		tex.Meta = entry.Meta
		return tex, nil
	case entry.Fill != "":
		c, err := asset.ParseColor(entry.Fill)
		if err != nil {
			return nil, err
		}
		w, h := entry.Width, entry.Height
		if w <= 0 {
			w = defaultFillSize
		}
		if h <= 0 {
			h = defaultFillSize
		}
		tex := asset.SolidTexture(entry.Name, w, h, c)
		tex.Meta = entry.Meta
		return tex, nil
	default:
		return nil, errors.New("texture needs a file or a fill color")
	}
}

type reference struct {
	from asset.Asset
	kind asset.Kind
	id   asset.ID
}

func references(a asset.Asset) []reference {
	var out []reference
	add := func(kind asset.Kind, id asset.ID) {
		if !id.IsZero() {
			out = append(out, reference{from: a, kind: kind, id: id})
		}
	}
	motion := func(m asset.Motion) {
		switch m.Kind {
		case asset.MotionClip:
			add(asset.KindClip, m.ID)
		case asset.MotionBlend:
			add(asset.KindBlendTree, m.ID)
		}
	}
	switch v := a.(type) {
	case *asset.Material:
		for _, id := range v.Textures {
			add(asset.KindTexture, id)
		}
	case *asset.AnimationClip:
		for _, id := range v.MaterialReferences() {
			add(asset.KindMaterial, id)
		}
	case *asset.BlendTree:
		for _, child := range v.Children {
			motion(child.Motion)
		}
	case *asset.AnimatorController:
		for _, m := range v.Motions() {
			motion(m)
		}
	case *asset.Rig:
		if v.Root == nil {
			return out
		}
		for _, id := range v.MaterialSlots() {
			add(asset.KindMaterial, id)
		}
		for _, id := range v.Controllers() {
			add(asset.KindController, id)
		}
	}
	return out
}

func checkReferences(ctx context.Context, store asset.Store, doc *Document, declared map[asset.ID]asset.Kind) error {
	var errs []error
	stored := make(map[asset.ID]asset.Kind)
	assets, _ := doc.assets()
	for _, a := range assets {
		if rig, ok := a.(*asset.Rig); ok && rig.Root == nil {
			errs = append(errs, fmt.Errorf("rig %s has no root node", asset.Describe(rig)))
		}
		for _, ref := range references(a) {
			kind, ok := declared[ref.id]
			if !ok {
				kind, ok = stored[ref.id]
			}
			if !ok {
				existing, err := store.Load(ctx, ref.id)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s references unknown %s %s: %w", asset.Describe(a), ref.kind, ref.id, err))
					continue
				}
				kind = existing.Kind()
				stored[ref.id] = kind
			}
			if kind != ref.kind {
				errs = append(errs, fmt.Errorf("%s references %s as %s, but it is a %s", asset.Describe(a), ref.id, ref.kind, kind))
			}
		}
	}
	return errors.Join(errs...)
}
