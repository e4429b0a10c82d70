// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Frame is an ordered collection of equal-length named columns backed by
// an Arrow record. Column order is significant: sparse decoding relies on
// it.
type Frame struct {
	rec arrow.Record
}

// newFrame wraps a record, taking over one reference.
func newFrame(rec arrow.Record) *Frame { return &Frame{rec: rec} }

// Record exposes the underlying Arrow record.
func (f *Frame) Record() arrow.Record { return f.rec }

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return int(f.rec.NumRows()) }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return int(f.rec.NumCols()) }

// ColumnNames returns the column names in frame order.
func (f *Frame) ColumnNames() []string {
	schema := f.rec.Schema()
	names := make([]string, schema.NumFields())
	for i := range names {
		names[i] = schema.Field(i).Name
	}
	return names
}

// Column returns column i.
func (f *Frame) Column(i int) arrow.Array { return f.rec.Column(i) }

// ColumnByName returns the first column with the given name.
func (f *Frame) ColumnByName(name string) (arrow.Array, bool) {
	indices := f.rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, false
	}
	return f.rec.Column(indices[0]), true
}

// Float64s returns column i as float64 values. Integer columns are
// widened; nulls come back as NaN.
func (f *Frame) Float64s(i int) ([]float64, error) {
	col := f.rec.Column(i)
	out := make([]float64, col.Len())
	switch c := col.(type) {
	case *array.Float64:
		for j := range out {
			if c.IsNull(j) {
				out[j] = math.NaN()
			} else {
				out[j] = c.Value(j)
			}
		}
	case *array.Int64:
		for j := range out {
			if c.IsNull(j) {
				out[j] = math.NaN()
			} else {
				out[j] = float64(c.Value(j))
			}
		}
	default:
		return nil, newError(KindUnsupportedValue,
			"column %q is not numeric (%T)", f.rec.Schema().Field(i).Name, col)
	}
	return out, nil
}

// Strings returns column i as strings. Nulls come back empty.
func (f *Frame) Strings(i int) ([]string, error) {
	c, ok := f.rec.Column(i).(*array.String)
	if !ok {
		return nil, newError(KindUnsupportedValue,
			"column %q is not a string column (%T)", f.rec.Schema().Field(i).Name, f.rec.Column(i))
	}
	out := make([]string, c.Len())
	for j := range out {
		if !c.IsNull(j) {
			out[j] = c.Value(j)
		}
	}
	return out, nil
}

// Release frees the underlying Arrow buffers. The frame must not be used
// afterwards.
func (f *Frame) Release() {
	if f.rec != nil {
		f.rec.Release()
		f.rec = nil
	}
}

// FrameBuilder assembles a Frame column by column. All columns must have
// the same length; Build reports the first violation.
type FrameBuilder struct {
	mem    memory.Allocator
	fields []arrow.Field
	cols   []arrow.Array
	rows   int
	err    error
}

// NewFrameBuilder returns an empty builder.
func NewFrameBuilder() *FrameBuilder {
	return &FrameBuilder{mem: memory.NewGoAllocator(), rows: -1}
}

func (b *FrameBuilder) checkLen(name string, n int) bool {
	if b.err != nil {
		return false
	}
	if b.rows == -1 {
		b.rows = n
		return true
	}
	if n != b.rows {
		b.err = newError(KindUnsupportedValue,
			"column %q has %d values, want %d", name, n, b.rows)
		return false
	}
	return true
}

// Float64Column appends a numeric column. valid marks non-null entries
// and may be nil for a column with no nulls.
func (b *FrameBuilder) Float64Column(name string, values []float64, valid []bool) *FrameBuilder {
	if !b.checkLen(name, len(values)) {
		return b
	}
	ab := array.NewFloat64Builder(b.mem)
	defer ab.Release()
	ab.AppendValues(values, valid)
	b.fields = append(b.fields, arrow.Field{Name: name, Type: arrow.PrimitiveTypes.Float64, Nullable: valid != nil})
	b.cols = append(b.cols, ab.NewArray())
	return b
}

// StringColumn appends a string column.
func (b *FrameBuilder) StringColumn(name string, values []string, valid []bool) *FrameBuilder {
	if !b.checkLen(name, len(values)) {
		return b
	}
	ab := array.NewStringBuilder(b.mem)
	defer ab.Release()
	ab.AppendValues(values, valid)
	b.fields = append(b.fields, arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: valid != nil})
	b.cols = append(b.cols, ab.NewArray())
	return b
}

// BoolColumn appends a boolean column.
func (b *FrameBuilder) BoolColumn(name string, values []bool, valid []bool) *FrameBuilder {
	if !b.checkLen(name, len(values)) {
		return b
	}
	ab := array.NewBooleanBuilder(b.mem)
	defer ab.Release()
	ab.AppendValues(values, valid)
	b.fields = append(b.fields, arrow.Field{Name: name, Type: arrow.FixedWidthTypes.Boolean, Nullable: valid != nil})
	b.cols = append(b.cols, ab.NewArray())
	return b
}

// Build assembles the frame. The builder must not be reused afterwards.
func (b *FrameBuilder) Build() (*Frame, error) {
	if b.err != nil {
		for _, c := range b.cols {
			c.Release()
		}
		return nil, b.err
	}
	rows := b.rows
	if rows == -1 {
		rows = 0
	}
	schema := arrow.NewSchema(b.fields, nil)
	rec := array.NewRecord(schema, b.cols, int64(rows))
	for _, c := range b.cols {
		c.Release()
	}
	return newFrame(rec), nil
}

// singleColumnFrame builds a one-column numeric frame, the normal form for
// bare prediction vectors.
func singleColumnFrame(name string, xs []float64) (*Frame, error) {
	return NewFrameBuilder().Float64Column(name, xs, nil).Build()
}
