package bridge

import (
	"math"
	"reflect"
	"testing"
)

func mustBuildFrame(t *testing.T, b *FrameBuilder) *Frame {
	t.Helper()
	f, err := b.Build()
	if err != nil {
		t.Fatalf("building frame: %v", err)
	}
	t.Cleanup(f.Release)
	return f
}

func TestFrameBuilderPreservesColumnOrder(t *testing.T) {
	f := mustBuildFrame(t, NewFrameBuilder().
		StringColumn("name", []string{"a", "b"}, nil).
		Float64Column("x", []float64{1, 2}, nil).
		BoolColumn("ok", []bool{true, false}, nil))

	want := []string{"name", "x", "ok"}
	if got := f.ColumnNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("column names %v, want %v", got, want)
	}
	if f.NumRows() != 2 || f.NumCols() != 3 {
		t.Fatalf("shape (%d, %d), want (2, 3)", f.NumRows(), f.NumCols())
	}
}

func TestFrameBuilderRejectsRaggedColumns(t *testing.T) {
	_, err := NewFrameBuilder().
		Float64Column("x", []float64{1, 2, 3}, nil).
		Float64Column("y", []float64{1}, nil).
		Build()
	mustKindErr(t, err, ErrUnsupportedValue)
}

func TestFrameFloat64sNullsAreNaN(t *testing.T) {
	f := mustBuildFrame(t, NewFrameBuilder().
		Float64Column("x", []float64{1, 0, 3}, []bool{true, false, true}))

	xs, err := f.Float64s(0)
	mustNoErr(t, err)
	if xs[0] != 1 || xs[2] != 3 {
		t.Fatalf("valid entries mangled: %v", xs)
	}
	if !math.IsNaN(xs[1]) {
		t.Fatalf("null entry is %v, want NaN", xs[1])
	}
}

func TestFrameFloat64sRejectsStringColumn(t *testing.T) {
	f := mustBuildFrame(t, NewFrameBuilder().
		StringColumn("s", []string{"a"}, nil))
	_, err := f.Float64s(0)
	mustKindErr(t, err, ErrUnsupportedValue)
}

func TestFrameColumnByName(t *testing.T) {
	f := mustBuildFrame(t, NewFrameBuilder().
		Float64Column("x", []float64{1}, nil).
		StringColumn("s", []string{"a"}, nil))

	if _, ok := f.ColumnByName("s"); !ok {
		t.Fatal("column s not found")
	}
	if _, ok := f.ColumnByName("missing"); ok {
		t.Fatal("found a column that does not exist")
	}
}

func TestEmptyFrame(t *testing.T) {
	f := mustBuildFrame(t, NewFrameBuilder())
	if f.NumRows() != 0 || f.NumCols() != 0 {
		t.Fatalf("shape (%d, %d), want (0, 0)", f.NumRows(), f.NumCols())
	}
}
