package assetstore

import (
	"encoding/json"
	"fmt"

	"rigconvert/internal/asset"
)

func encodeAsset(a asset.Asset) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", a.Kind(), err)
	}
	return data, nil
}

func newAsset(kind asset.Kind) (asset.Asset, error) {
	switch kind {
	case asset.KindMaterial:
		return &asset.Material{}, nil
	case asset.KindTexture:
		return &asset.Texture{}, nil
	case asset.KindClip:
		return &asset.AnimationClip{}, nil
	case asset.KindBlendTree:
		return &asset.BlendTree{}, nil
	case asset.KindController:
		return &asset.AnimatorController{}, nil
	case asset.KindRig:
		return &asset.Rig{}, nil
	default:
		return nil, fmt.Errorf("unsupported asset kind %q", kind)
	}
}

func decodeAsset(kind asset.Kind, payload []byte) (asset.Asset, error) {
	a, err := newAsset(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, a); err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return a, nil
}
