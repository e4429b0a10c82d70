// © Copyright 2026, DataRobot, Inc. and its affiliates.
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	arrowcsv "github.com/apache/arrow-go/v18/arrow/csv"
	"github.com/klauspost/compress/gzip"
)

// PayloadFormat identifies a structured payload encoding the bridge can
// decode for the foreign side.
type PayloadFormat string

const (
	FormatCSV PayloadFormat = "csv"
	FormatMTX PayloadFormat = "mtx"
)

// Mime types recognized by ReadTabularPayload. An empty mime type is
// treated as CSV.
const (
	MimeCSV = "text/csv"
	MimeMTX = "text/mtx"
)

// ReadTabularPayload decodes a structured payload into a frame. CSV
// payloads decode into typed columns with inferred schemas; MatrixMarket
// (MTX) payloads decode into the sparse triplet frame so sparse inputs
// and outputs share one representation. Gzip-compressed payloads are
// detected by magic bytes and decompressed first.
func ReadTabularPayload(data []byte, mimetype string) (*Frame, error) {
	data, err := maybeGunzip(data)
	if err != nil {
		return nil, err
	}
	switch mimetype {
	case "", MimeCSV:
		return readCSV(data)
	case MimeMTX:
		return readMTX(data)
	default:
		return nil, newError(KindUnsupportedValue, "unsupported payload mimetype %q", mimetype)
	}
}

func maybeGunzip(data []byte) ([]byte, error) {
	if len(data) < 2 || data[0] != 0x1f || data[1] != 0x8b {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening gzip payload: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing gzip payload: %w", err)
	}
	return out, nil
}

func readCSV(data []byte) (*Frame, error) {
	rdr := arrowcsv.NewInferringReader(bytes.NewReader(data),
		arrowcsv.WithHeader(true),
		arrowcsv.WithChunk(-1),
	)
	defer rdr.Release()

	if !rdr.Next() {
		if err := rdr.Err(); err != nil && err != io.EOF {
			return nil, fmt.Errorf("reading csv payload: %w", err)
		}
		return NewFrameBuilder().Build()
	}
	rec := rdr.Record()
	rec.Retain() // keep the record alive after the reader is released
	return newFrame(rec), nil
}

// readMTX parses the MatrixMarket coordinate format into a triplet frame,
// appending the (rows, cols, unused) terminator row.
func readMTX(data []byte) (*Frame, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header bool
	var rows, cols, nnz int
	var ri, ci, xs []float64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		fields := strings.Fields(line)
		if !header {
			if len(fields) != 3 {
				return nil, newError(KindUnsupportedValue,
					"mtx payload: malformed size line %q", line)
			}
			var err error
			if rows, err = strconv.Atoi(fields[0]); err == nil {
				if cols, err = strconv.Atoi(fields[1]); err == nil {
					nnz, err = strconv.Atoi(fields[2])
				}
			}
			if err != nil {
				return nil, newError(KindUnsupportedValue,
					"mtx payload: malformed size line %q", line)
			}
			header = true
			continue
		}
		if len(fields) < 2 {
			return nil, newError(KindUnsupportedValue,
				"mtx payload: malformed entry %q", line)
		}
		i, err1 := strconv.ParseFloat(fields[0], 64)
		j, err2 := strconv.ParseFloat(fields[1], 64)
		x := 1.0 // pattern matrices omit the value field
		var err3 error
		if len(fields) > 2 {
			x, err3 = strconv.ParseFloat(fields[2], 64)
		}
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, newError(KindUnsupportedValue,
				"mtx payload: malformed entry %q", line)
		}
		ri = append(ri, i)
		ci = append(ci, j)
		xs = append(xs, x)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading mtx payload: %w", err)
	}
	if !header {
		return nil, newError(KindUnsupportedValue, "mtx payload: missing size line")
	}
	if len(xs) != nnz {
		return nil, newError(KindUnsupportedValue,
			"mtx payload: declared %d entries, found %d", nnz, len(xs))
	}

	// Terminator row carries the shape, matching the transform wire format.
	ri = append(ri, float64(rows))
	ci = append(ci, float64(cols))
	xs = append(xs, 0)
	return NewFrameBuilder().
		Float64Column(sparseMarkerColumns[0], ri, nil).
		Float64Column(sparseMarkerColumns[1], ci, nil).
		Float64Column(sparseMarkerColumns[2], xs, nil).
		Build()
}
