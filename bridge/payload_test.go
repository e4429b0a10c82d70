package bridge

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func TestReadTabularPayloadCSV(t *testing.T) {
	f, err := ReadTabularPayload([]byte("x1,x2\n1,2\n3,4\n"), MimeCSV)
	mustNoErr(t, err)
	defer f.Release()

	if got := f.ColumnNames(); !reflect.DeepEqual(got, []string{"x1", "x2"}) {
		t.Fatalf("column names %v", got)
	}
	x1, err := f.Float64s(0)
	mustNoErr(t, err)
	if !reflect.DeepEqual(x1, []float64{1, 3}) {
		t.Fatalf("x1 = %v", x1)
	}
}

func TestReadTabularPayloadEmptyMimeIsCSV(t *testing.T) {
	f, err := ReadTabularPayload([]byte("a\n1\n"), "")
	mustNoErr(t, err)
	defer f.Release()
	if f.NumRows() != 1 {
		t.Fatalf("rows %d, want 1", f.NumRows())
	}
}

func TestReadTabularPayloadGzippedCSV(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("x\n7\n8\n")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := ReadTabularPayload(buf.Bytes(), MimeCSV)
	mustNoErr(t, err)
	defer f.Release()

	xs, err := f.Float64s(0)
	mustNoErr(t, err)
	if !reflect.DeepEqual(xs, []float64{7, 8}) {
		t.Fatalf("xs = %v", xs)
	}
}

func TestReadTabularPayloadMTX(t *testing.T) {
	mtx := "%%MatrixMarket matrix coordinate real general\n" +
		"% comment\n" +
		"2 2 2\n" +
		"1 1 5.0\n" +
		"2 2 7.0\n"
	f, err := ReadTabularPayload([]byte(mtx), MimeMTX)
	mustNoErr(t, err)
	defer f.Release()

	if !isSparseTriplet(f) {
		t.Fatalf("mtx payload did not decode to a triplet frame: %v", f.ColumnNames())
	}
	m, err := decodeSparseFrame(f)
	mustNoErr(t, err)
	if m.Rows != 2 || m.Cols != 2 || m.NNZ() != 2 {
		t.Fatalf("got shape (%d, %d) nnz %d", m.Rows, m.Cols, m.NNZ())
	}
	if m.At(0, 0) != 5.0 || m.At(1, 1) != 7.0 {
		t.Fatalf("entries (%v, %v)", m.At(0, 0), m.At(1, 1))
	}
}

func TestReadTabularPayloadMTXPatternMatrix(t *testing.T) {
	mtx := "%%MatrixMarket matrix coordinate pattern general\n" +
		"1 2 1\n" +
		"1 2\n"
	f, err := ReadTabularPayload([]byte(mtx), MimeMTX)
	mustNoErr(t, err)
	defer f.Release()

	m, err := decodeSparseFrame(f)
	mustNoErr(t, err)
	if m.At(0, 1) != 1.0 {
		t.Fatalf("pattern entry %v, want implicit 1", m.At(0, 1))
	}
}

func TestReadTabularPayloadMTXEntryCountMismatch(t *testing.T) {
	mtx := "2 2 3\n1 1 5.0\n"
	_, err := ReadTabularPayload([]byte(mtx), MimeMTX)
	mustKindErr(t, err, ErrUnsupportedValue)
}

func TestReadTabularPayloadUnknownMime(t *testing.T) {
	_, err := ReadTabularPayload([]byte("x"), "application/octet-stream")
	mustKindErr(t, err, ErrUnsupportedValue)
}
