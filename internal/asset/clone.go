package asset

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// Clone returns a deep copy of src. Maps, slices, and nested pointers are
// duplicated so the copy can be rewritten without touching src.
func Clone[T any](src *T) (*T, error) {
	if src == nil {
		return nil, nil
	}
	var dst T
	if err := deepcopy.Copy(&dst, src); err != nil {
		return nil, fmt.Errorf("deep copy %T: %w", src, err)
	}
	return &dst, nil
}
