// Package tensorutils provides utilities for working with gorgonia
// tensors
package tensorutils

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Slice implements a struct that can be used for slicing tensors.
//
// Given a tensor T and a Slice S, T.Slice(..., S, ...) is equivalent to
// T[..., S.start:S.end:S.step, ...]
type Slice struct {
	start, end, step int
}

// Start returns the start index for the tensor slice
func (s Slice) Start() int {
	return s.start
}

// End returns the ending index for the tensor slice
func (s Slice) End() int {
	return s.end
}

// Step returns the step for the tensor slice
func (s Slice) Step() int {
	return s.step
}

// NewSlice returns a new Slice that can be used to slice tensors
func NewSlice(start, stop, step int) Slice {
	return Slice{start, stop, step}
}

// ZeroRow zeroes the sub-tensor t[i] of a rank-3 tensor t
func ZeroRow(t *tensor.Dense, i int) error {
	view, err := t.Slice(NewSlice(i, i+1, 1))
	if err != nil {
		return fmt.Errorf("zeroRow: %v", err)
	}
	view.(*tensor.Dense).Zero()
	return nil
}

// SameShape returns an error describing the mismatch if a and b do not
// share an identical shape, and nil otherwise
func SameShape(a, b *tensor.Dense) error {
	if !a.Shape().Eq(b.Shape()) {
		return fmt.Errorf("sameShape: shape mismatch \n\twant(%v) "+
			"\n\thave(%v)", a.Shape(), b.Shape())
	}
	return nil
}
