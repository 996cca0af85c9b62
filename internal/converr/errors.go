package converr

import (
	"errors"
	"fmt"
	"strings"

	"rigconvert/internal/asset"
)

var (
	ErrMaterialConversion   = errors.New("material conversion failed")
	ErrClipConversion       = errors.New("animation clip conversion failed")
	ErrBlendTreeConversion  = errors.New("blend tree conversion failed")
	ErrControllerConversion = errors.New("animator controller conversion failed")
	ErrCyclicBlendTree      = errors.New("cyclic blend tree reference")
	ErrRegistryConflict     = errors.New("registry key conflict")
	ErrStore                = errors.New("asset store failure")
	ErrValidation           = errors.New("validation error")
	ErrConfiguration        = errors.New("configuration error")
)

// Classification values returned by ErrorKind.
const (
	KindInput      = "input"
	KindConversion = "conversion"
	KindInternal   = "internal"
	KindStore      = "store"
)

// Classifier lets errors declare how the CLI should present them.
type Classifier interface {
	ErrorKind() string
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker. The marker should be one of the exported sentinel errors.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrStore
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "conversion failure"
	}
	return strings.Join(parts, ": ")
}

// AssetError reports a failure converting one specific asset.
type AssetError struct {
	Marker error
	Kind   asset.Kind
	ID     asset.ID
	Name   string
	// Detail carries kind-specific context such as the source shader name.
	Detail string
	Err    error
}

func (e *AssetError) Error() string {
	var b strings.Builder
	b.WriteString(e.Marker.Error())
	b.WriteString(": ")
	if name := strings.TrimSpace(e.Name); name != "" {
		fmt.Fprintf(&b, "%s (%s)", name, e.ID)
	} else {
		b.WriteString(string(e.ID))
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AssetError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Marker}
	}
	return []error{e.Marker, e.Err}
}

// ErrorKind classifies the failure for presentation.
func (e *AssetError) ErrorKind() string {
	var cls Classifier
	if e.Err != nil && errors.As(e.Err, &cls) {
		return cls.ErrorKind()
	}
	if errors.Is(e.Err, ErrStore) {
		return KindStore
	}
	return KindConversion
}

func assetError(marker error, kind asset.Kind, meta *asset.Meta, detail string, cause error) *AssetError {
	e := &AssetError{Marker: marker, Kind: kind, Detail: detail, Err: cause}
	if meta != nil {
		e.ID = meta.ID
		e.Name = meta.Name
	}
	return e
}

// MaterialFailed reports a failed material conversion.
func MaterialFailed(m *asset.Material, cause error) error {
	if m == nil {
		return assetError(ErrMaterialConversion, asset.KindMaterial, nil, "", cause)
	}
	detail := ""
	if m.Shader != "" {
		detail = fmt.Sprintf("shader %q", m.Shader)
	}
	return assetError(ErrMaterialConversion, asset.KindMaterial, &m.Meta, detail, cause)
}

// ClipFailed reports a failed animation clip conversion.
func ClipFailed(c *asset.AnimationClip, cause error) error {
	var meta *asset.Meta
	if c != nil {
		meta = &c.Meta
	}
	return assetError(ErrClipConversion, asset.KindClip, meta, "", cause)
}

// BlendTreeFailed reports a failed blend tree conversion.
func BlendTreeFailed(t *asset.BlendTree, cause error) error {
	var meta *asset.Meta
	if t != nil {
		meta = &t.Meta
	}
	return assetError(ErrBlendTreeConversion, asset.KindBlendTree, meta, "", cause)
}

// ControllerFailed reports a failed animator controller conversion.
func ControllerFailed(c *asset.AnimatorController, cause error) error {
	var meta *asset.Meta
	if c != nil {
		meta = &c.Meta
	}
	return assetError(ErrControllerConversion, asset.KindController, meta, "", cause)
}

// CycleError reports blend trees that reference each other in a loop.
type CycleError struct {
	IDs []asset.ID
}

func (e *CycleError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = string(id)
	}
	return fmt.Sprintf("%s among blend trees: %s", ErrCyclicBlendTree, strings.Join(ids, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicBlendTree }

func (e *CycleError) ErrorKind() string { return KindInput }

// ConflictError reports a second registry write for an existing key. It
// indicates a bug and should never reach a caller.
type ConflictError struct {
	Kind asset.Kind
	ID   asset.ID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s %s already mapped", ErrRegistryConflict, e.Kind, e.ID)
}

func (e *ConflictError) Unwrap() error { return ErrRegistryConflict }

func (e *ConflictError) ErrorKind() string { return KindInternal }

// Classify returns the presentation class of err, defaulting to conversion.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var cls Classifier
	if errors.As(err, &cls) {
		return cls.ErrorKind()
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration), errors.Is(err, asset.ErrNotFound):
		return KindInput
	case errors.Is(err, ErrStore):
		return KindStore
	default:
		return KindConversion
	}
}

// Hint returns a user-facing next step for the failure class.
func Hint(err error) string {
	switch Classify(err) {
	case KindInput:
		return "fix the source asset named above and rerun the conversion"
	case KindInternal:
		return "this is a bug; rerun with --log-level debug and report the log"
	case KindStore:
		return "check the asset store path and permissions"
	case KindConversion:
		return "inspect the named asset; no converted assets were kept"
	default:
		return ""
	}
}
