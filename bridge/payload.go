package bridge

import (
	"encoding/binary"
	"math"
)

// PayloadWriter packs fields into a fixed-size Command/Message payload
// array in declaration order. It never grows the underlying array: a
// write past the end panics, which is a programmer error (a payload
// that doesn't fit its tag's declared shape).
type PayloadWriter struct {
	buf []byte
	off int
}

// NewPayloadWriter wraps buf for sequential writes starting at offset 0.
func NewPayloadWriter(buf []byte) *PayloadWriter {
	return &PayloadWriter{buf: buf}
}

func (w *PayloadWriter) PutUint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *PayloadWriter) PutFloat32(v float32) {
	w.PutUint32(math.Float32bits(v))
}

func (w *PayloadWriter) PutUint8(v uint8) {
	w.buf[w.off] = v
	w.off++
}

func (w *PayloadWriter) PutBool(v bool) {
	if v {
		w.PutUint8(1)
	} else {
		w.PutUint8(0)
	}
}

func (w *PayloadWriter) PutUint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], v)
	w.off += 8
}

func (w *PayloadWriter) PutInt64(v int64) {
	w.PutUint64(uint64(v))
}

func (w *PayloadWriter) PutFloat64(v float64) {
	w.PutUint64(math.Float64bits(v))
}

// Bytes returns the bytes written so far, for copying into a fixed-size
// Command/Message payload array.
func (w *PayloadWriter) Bytes() []byte {
	return w.buf[:w.off]
}

// PayloadReader unpacks fields from a payload array in the same order
// they were written.
type PayloadReader struct {
	buf []byte
	off int
}

// NewPayloadReader wraps buf for sequential reads starting at offset 0.
func NewPayloadReader(buf []byte) *PayloadReader {
	return &PayloadReader{buf: buf}
}

func (r *PayloadReader) Uint32() uint32 {
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v
}

func (r *PayloadReader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

func (r *PayloadReader) Uint8() uint8 {
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *PayloadReader) Bool() bool {
	return r.Uint8() != 0
}

func (r *PayloadReader) Uint64() uint64 {
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v
}

func (r *PayloadReader) Int64() int64 {
	return int64(r.Uint64())
}

func (r *PayloadReader) Float64() float64 {
	return math.Float64frombits(r.Uint64())
}
