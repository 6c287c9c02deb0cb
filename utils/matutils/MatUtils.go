// Package matutils implements utility functions for working with
// batched mat.Matrix structs, where each row describes one environment
// instance
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// VecClip performs an element-wise clipping of a vector's values such
// that each value is at least min and at most max
func VecClip(a *mat.VecDense, min, max float64) {
	for i := 0; i < a.Len(); i++ {
		value := a.AtVec(i)

		if value < min {
			a.SetVec(i, min)
		} else if value > max {
			a.SetVec(i, max)
		}
	}
}

// ColClip clips column j of a so that every value in the column is at
// least min and at most max
func ColClip(a *mat.Dense, j int, min, max float64) {
	r, _ := a.Dims()
	for i := 0; i < r; i++ {
		value := a.At(i, j)

		if value < min {
			a.Set(i, j, min)
		} else if value > max {
			a.Set(i, j, max)
		}
	}
}

// RowNorms computes the Euclidean norm of every row of the difference
// a - b, storing the result in dst. The matrices a and b must have
// identical dimensions and dst must have one element per row.
func RowNorms(a, b *mat.Dense, dst *mat.VecDense) {
	ra, ca := a.Dims()
	rb, cb := b.Dims()
	if ra != rb || ca != cb {
		panic(fmt.Sprintf("rowNorms: dimension mismatch (%v, %v) != (%v, %v)",
			ra, ca, rb, cb))
	}
	if dst.Len() != ra {
		panic(fmt.Sprintf("rowNorms: destination length %v must match "+
			"row count %v", dst.Len(), ra))
	}

	diff := make([]float64, ca)
	for i := 0; i < ra; i++ {
		floats.SubTo(diff, a.RawRowView(i), b.RawRowView(i))
		dst.SetVec(i, floats.Norm(diff, 2))
	}
}

// SetRow copies src into row i of dst
func SetRow(dst *mat.Dense, i int, src []float64) {
	_, c := dst.Dims()
	if len(src) != c {
		panic(fmt.Sprintf("setRow: source length %v must match column "+
			"count %v", len(src), c))
	}
	copy(dst.RawRowView(i), src)
}
