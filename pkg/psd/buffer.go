package psd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// reader decodes structural fields from an in-memory blob under a
// single Format. The first failure is sticky: subsequent reads return
// zero values and callers check Err once per record.
type reader struct {
	f    Format
	bo   binary.ByteOrder
	data []byte
	off  int
	err  error
}

func newReader(data []byte, f Format) *reader {
	return &reader{f: f, bo: f.ByteOrder(), data: data}
}

// take returns the next n bytes without copying, or nil after
// recording a truncation error.
func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrTruncated, n, r.off, len(r.data))
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return r.bo.Uint16(b)
}

func (r *reader) i16() int16 { return int16(r.u16()) }

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return r.bo.Uint32(b)
}

func (r *reader) i32() int32 { return int32(r.u32()) }

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return r.bo.Uint64(b)
}

func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *reader) f64() float64 { return math.Float64frombits(r.u64()) }

// key reads 4 on-wire bytes as a canonical key, undoing the byte
// reversal of the little-endian variants.
func (r *reader) key() Key {
	b := r.take(4)
	if b == nil {
		return ""
	}
	var k [4]byte
	copy(k[:], b)
	return r.f.DecodeKey(k)
}

// rawKey reads 4 bytes without byte-order treatment. Used by the
// always-big-endian resource block scheme.
func (r *reader) rawKey() Key {
	b := r.take(4)
	if b == nil {
		return ""
	}
	return Key(b)
}

// size reads the size field of a record with the given key.
func (r *reader) size(k Key) int64 {
	if r.f.SizeLen(k) == 8 {
		return int64(r.u64())
	}
	return int64(r.u32())
}

// defaultSize reads a size field that does not belong to a keyed
// record, such as a channel data length.
func (r *reader) defaultSize() int64 {
	if r.f.DefaultSizeLen() == 8 {
		return int64(r.u64())
	}
	return int64(r.u32())
}

// bytes returns a copy of the next n bytes.
func (r *reader) bytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// pascal reads a Pascal string and skips to a multiple of pad bytes
// counted from the length byte.
func (r *reader) pascal(pad int) string {
	n := int(r.u8())
	s := string(r.bytes(n))
	if pad > 1 {
		r.skip((pad - (n+1)%pad) % pad)
	}
	return s
}

// peek returns the next n bytes without consuming them, or nil when
// fewer remain. Peeking past the end is not an error.
func (r *reader) peek(n int) []byte {
	if r.err != nil || r.off+n > len(r.data) {
		return nil
	}
	return r.data[r.off : r.off+n]
}

func (r *reader) skip(n int) { r.take(n) }

func (r *reader) seek(off int) {
	if r.err != nil {
		return
	}
	if off < 0 || off > len(r.data) {
		r.err = fmt.Errorf("%w: seek to %d of %d", ErrTruncated, off, len(r.data))
		return
	}
	r.off = off
}

func (r *reader) pos() int { return r.off }

func (r *reader) remaining() int { return len(r.data) - r.off }

func (r *reader) Err() error { return r.err }

// writer encodes structural fields into a buffer under a single
// Format. Record payloads are built in full before the enclosing size
// field is emitted, so no seek-back patching is needed on the sink.
type writer struct {
	f   Format
	bo  binary.ByteOrder
	buf bytes.Buffer
}

func newWriter(f Format) *writer {
	return &writer{f: f, bo: f.ByteOrder()}
}

func (w *writer) u8(v uint8) { w.buf.WriteByte(v) }

func (w *writer) u16(v uint16) {
	var b [2]byte
	w.bo.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) i16(v int16) { w.u16(uint16(v)) }

func (w *writer) u32(v uint32) {
	var b [4]byte
	w.bo.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) i32(v int32) { w.u32(uint32(v)) }

func (w *writer) u64(v uint64) {
	var b [8]byte
	w.bo.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) f32(v float32) { w.u32(math.Float32bits(v)) }

func (w *writer) f64(v float64) { w.u64(math.Float64bits(v)) }

// key writes the on-wire bytes of a key, reversed under the
// little-endian variants.
func (w *writer) key(k Key) {
	b := w.f.EncodeKey(k)
	w.buf.Write(b[:])
}

// rawKey writes 4 key bytes without byte-order treatment.
func (w *writer) rawKey(k Key) {
	var b [4]byte
	copy(b[:], k)
	w.buf.Write(b[:])
}

// size writes the size field of a record with the given key.
func (w *writer) size(v int64, k Key) {
	if w.f.SizeLen(k) == 8 {
		w.u64(uint64(v))
		return
	}
	w.u32(uint32(v))
}

func (w *writer) defaultSize(v int64) {
	if w.f.DefaultSizeLen() == 8 {
		w.u64(uint64(v))
		return
	}
	w.u32(uint32(v))
}

func (w *writer) raw(b []byte) { w.buf.Write(b) }

// pascal writes a Pascal string truncated to 255 bytes, zero padded to
// a multiple of pad counted from the length byte.
func (w *writer) pascal(s string, pad int) {
	if len(s) > 255 {
		s = s[:255]
	}
	w.u8(uint8(len(s)))
	w.buf.WriteString(s)
	if pad > 1 {
		for i := (pad - (len(s)+1)%pad) % pad; i > 0; i-- {
			w.buf.WriteByte(0)
		}
	}
}

// pad extends the buffer with zero bytes to a multiple of align.
func (w *writer) pad(align int) {
	if align > 1 {
		for w.buf.Len()%align != 0 {
			w.buf.WriteByte(0)
		}
	}
}

func (w *writer) len() int { return w.buf.Len() }

func (w *writer) bytes() []byte { return w.buf.Bytes() }
