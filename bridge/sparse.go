// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

// Sparse triplet wire format: a frame with exactly these columns is a
// (row, col, value) encoding whose last row holds (rows, cols, unused) as
// a shape terminator. Indices are 1-based on the foreign side.
var sparseMarkerColumns = [3]string{"__DR__i", "__DR__j", "__DR__x"}

// isSparseTriplet reports whether the frame's column names are exactly
// the sparse marker triple, in order.
func isSparseTriplet(f *Frame) bool {
	names := f.ColumnNames()
	if len(names) != len(sparseMarkerColumns) {
		return false
	}
	for i, n := range names {
		if n != sparseMarkerColumns[i] {
			return false
		}
	}
	return true
}

// SparseMatrix is a COO-encoded sparse matrix reconstructed from the
// triplet wire format. Indices are 0-based.
type SparseMatrix struct {
	Rows, Cols int
	RowIndex   []int
	ColIndex   []int
	Values     []float64
}

// NNZ returns the number of stored entries.
func (m *SparseMatrix) NNZ() int { return len(m.Values) }

// At returns the entry at (i, j), zero when no triplet stores it.
func (m *SparseMatrix) At(i, j int) float64 {
	var v float64
	for k := range m.Values {
		if m.RowIndex[k] == i && m.ColIndex[k] == j {
			v += m.Values[k]
		}
	}
	return v
}

// decodeSparseFrame rebuilds a sparse matrix from a triplet frame: the
// terminator row is read for the shape and stripped, and the remaining
// indices shift from the foreign 1-based convention to 0-based.
func decodeSparseFrame(f *Frame) (*SparseMatrix, error) {
	rows, err := f.Float64s(0)
	if err != nil {
		return nil, err
	}
	cols, err := f.Float64s(1)
	if err != nil {
		return nil, err
	}
	vals, err := f.Float64s(2)
	if err != nil {
		return nil, err
	}

	n := len(vals)
	if n == 0 {
		return nil, newError(KindInvalidTransformOutput,
			"sparse triplet frame is missing its shape terminator row")
	}
	last := n - 1
	m := &SparseMatrix{
		Rows:     int(rows[last]),
		Cols:     int(cols[last]),
		RowIndex: make([]int, 0, last),
		ColIndex: make([]int, 0, last),
		Values:   make([]float64, 0, last),
	}
	if m.Rows < 0 || m.Cols < 0 {
		return nil, newError(KindInvalidTransformOutput,
			"sparse triplet terminator declares invalid shape (%d, %d)", m.Rows, m.Cols)
	}
	for k := 0; k < last; k++ {
		ri, ci := int(rows[k])-1, int(cols[k])-1
		if ri < 0 || ri >= m.Rows || ci < 0 || ci >= m.Cols {
			return nil, newError(KindInvalidTransformOutput,
				"sparse triplet (%d, %d) is outside the declared shape (%d, %d)",
				int(rows[k]), int(cols[k]), m.Rows, m.Cols)
		}
		m.RowIndex = append(m.RowIndex, ri)
		m.ColIndex = append(m.ColIndex, ci)
		m.Values = append(m.Values, vals[k])
	}
	return m, nil
}
