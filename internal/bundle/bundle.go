package bundle

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rigconvert/internal/asset"
)

// Version is the bundle format version written by Export.
const Version = 1

// Texture describes a texture by file or fill.
type Texture struct {
	asset.Meta `yaml:",inline"`
	// File is a PNG path relative to the bundle document.
	File string `yaml:"file,omitempty"`
	// Fill is a hex color used when File is empty.
	Fill   string `yaml:"fill,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
}

// Document is the on-disk bundle layout.
type Document struct {
	Version     int                         `yaml:"version"`
	Textures    []Texture                   `yaml:"textures,omitempty"`
	Materials   []*asset.Material           `yaml:"materials,omitempty"`
	Clips       []*asset.AnimationClip      `yaml:"clips,omitempty"`
	BlendTrees  []*asset.BlendTree          `yaml:"blend_trees,omitempty"`
	Controllers []*asset.AnimatorController `yaml:"controllers,omitempty"`
	Rigs        []*asset.Rig                `yaml:"rigs,omitempty"`
}

// ReadFile decodes a bundle document. Unknown fields are rejected.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}
	if doc.Version == 0 {
		doc.Version = Version
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("bundle %s: unsupported version %d", path, doc.Version)
	}
	return &doc, nil
}

// WriteFile encodes doc to path.
func WriteFile(path string, doc *Document) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}
	return nil
}

// assets returns the non-texture assets in import order and the number of
// empty entries.
func (d *Document) assets() ([]asset.Asset, int) {
	var out []asset.Asset
	empty := 0
	for _, m := range d.Materials {
		if m == nil {
			empty++
			continue
		}
		out = append(out, m)
	}
	for _, c := range d.Clips {
		if c == nil {
			empty++
			continue
		}
		out = append(out, c)
	}
	for _, t := range d.BlendTrees {
		if t == nil {
			empty++
			continue
		}
		out = append(out, t)
	}
	for _, c := range d.Controllers {
		if c == nil {
			empty++
			continue
		}
		out = append(out, c)
	}
	for _, r := range d.Rigs {
		if r == nil {
			empty++
			continue
		}
		out = append(out, r)
	}
	return out, empty
}

// ids indexes every declared id by kind and reports duplicates.
func (d *Document) ids() (map[asset.ID]asset.Kind, error) {
	out := make(map[asset.ID]asset.Kind)
	var errs []error
	add := func(kind asset.Kind, meta *asset.Meta) {
		if meta.ID.IsZero() {
			errs = append(errs, fmt.Errorf("%s %q has no id", kind, meta.Name))
			return
		}
		if prev, ok := out[meta.ID]; ok {
			errs = append(errs, fmt.Errorf("id %s declared twice (%s and %s)", meta.ID, prev, kind))
			return
		}
		out[meta.ID] = kind
	}
	for i := range d.Textures {
		add(asset.KindTexture, &d.Textures[i].Meta)
	}
	assets, empty := d.assets()
	if empty > 0 {
		errs = append(errs, fmt.Errorf("%d empty bundle entries", empty))
	}
	for _, a := range assets {
		add(a.Kind(), a.Header())
	}
	return out, errors.Join(errs...)
}
