package bridge

import "testing"

func tripletFrame(t *testing.T, ri, ci, xs []float64) *Frame {
	t.Helper()
	return mustBuildFrame(t, NewFrameBuilder().
		Float64Column(sparseMarkerColumns[0], ri, nil).
		Float64Column(sparseMarkerColumns[1], ci, nil).
		Float64Column(sparseMarkerColumns[2], xs, nil))
}

func TestIsSparseTriplet(t *testing.T) {
	f := tripletFrame(t, []float64{1}, []float64{1}, []float64{0})
	if !isSparseTriplet(f) {
		t.Fatal("triplet frame not recognized")
	}

	dense := mustBuildFrame(t, NewFrameBuilder().
		Float64Column("x1", []float64{1}, nil).
		Float64Column("x2", []float64{2}, nil))
	if isSparseTriplet(dense) {
		t.Fatal("dense frame misidentified as a triplet frame")
	}
}

func TestDecodeSparseFrame(t *testing.T) {
	// Two diagonal entries plus the (rows, cols, unused) terminator.
	f := tripletFrame(t,
		[]float64{1, 2, 2},
		[]float64{1, 2, 2},
		[]float64{5.0, 7.0, 0},
	)
	m, err := decodeSparseFrame(f)
	mustNoErr(t, err)
	if m.Rows != 2 || m.Cols != 2 {
		t.Fatalf("shape (%d, %d), want (2, 2)", m.Rows, m.Cols)
	}
	if m.NNZ() != 2 {
		t.Fatalf("nnz %d, want 2", m.NNZ())
	}
	if m.At(0, 0) != 5.0 || m.At(1, 1) != 7.0 {
		t.Fatalf("diagonal entries (%v, %v), want (5, 7)", m.At(0, 0), m.At(1, 1))
	}
	if m.At(0, 1) != 0 || m.At(1, 0) != 0 {
		t.Fatal("unstored entries must read as zero")
	}
}

func TestDecodeSparseFrameEmptyMatrix(t *testing.T) {
	// A terminator-only frame is a valid matrix with no stored entries.
	f := tripletFrame(t, []float64{3}, []float64{4}, []float64{0})
	m, err := decodeSparseFrame(f)
	mustNoErr(t, err)
	if m.Rows != 3 || m.Cols != 4 || m.NNZ() != 0 {
		t.Fatalf("got shape (%d, %d) nnz %d, want (3, 4) nnz 0", m.Rows, m.Cols, m.NNZ())
	}
}

func TestDecodeSparseFrameMissingTerminator(t *testing.T) {
	f := tripletFrame(t, nil, nil, nil)
	_, err := decodeSparseFrame(f)
	mustKindErr(t, err, ErrInvalidTransformOutput)
}

func TestDecodeSparseFrameOutOfBoundsTriplet(t *testing.T) {
	f := tripletFrame(t,
		[]float64{5, 2},
		[]float64{1, 2},
		[]float64{1.0, 0},
	)
	_, err := decodeSparseFrame(f)
	mustKindErr(t, err, ErrInvalidTransformOutput)
}
