package psd

import (
	"bytes"
	"encoding/binary"
	"math"
)

// DType is the per-sample element type of a layer list. It is fixed
// per layer list by the list's key: Layr is uint8, Lr16 is uint16 and
// Lr32 is float32.
type DType int

const (
	DTypeUint8 DType = iota
	DTypeUint16
	DTypeFloat32
)

// ItemSize returns the sample width in bytes, or 0 for an invalid
// DType.
func (d DType) ItemSize() int {
	switch d {
	case DTypeUint8:
		return 1
	case DTypeUint16:
		return 2
	case DTypeFloat32:
		return 4
	}
	return 0
}

func (d DType) String() string {
	switch d {
	case DTypeUint8:
		return "uint8"
	case DTypeUint16:
		return "uint16"
	case DTypeFloat32:
		return "float32"
	}
	return "invalid"
}

// Plane is a 2-D raster of samples backed by big-endian bytes.
// Channel and pattern sample bytes are always big-endian on the wire,
// for every format variant; Pix keeps that representation so RAW
// encoding is a plain copy.
type Plane struct {
	DType DType
	Rows  int
	Cols  int
	Pix   []byte
}

// NewPlane returns a zero-filled plane.
func NewPlane(d DType, rows, cols int) *Plane {
	return &Plane{DType: d, Rows: rows, Cols: cols, Pix: make([]byte, rows*cols*d.ItemSize())}
}

// NumSamples returns Rows*Cols.
func (p *Plane) NumSamples() int { return p.Rows * p.Cols }

// Uint returns the integer sample at (row, col). Valid for the
// integer dtypes.
func (p *Plane) Uint(row, col int) uint32 {
	i := (row*p.Cols + col) * p.DType.ItemSize()
	switch p.DType {
	case DTypeUint8:
		return uint32(p.Pix[i])
	case DTypeUint16:
		return uint32(binary.BigEndian.Uint16(p.Pix[i:]))
	}
	return binary.BigEndian.Uint32(p.Pix[i:])
}

// SetUint stores an integer sample at (row, col).
func (p *Plane) SetUint(row, col int, v uint32) {
	i := (row*p.Cols + col) * p.DType.ItemSize()
	switch p.DType {
	case DTypeUint8:
		p.Pix[i] = uint8(v)
	case DTypeUint16:
		binary.BigEndian.PutUint16(p.Pix[i:], uint16(v))
	default:
		binary.BigEndian.PutUint32(p.Pix[i:], v)
	}
}

// Float returns the float32 sample at (row, col).
func (p *Plane) Float(row, col int) float32 {
	i := (row*p.Cols + col) * 4
	return math.Float32frombits(binary.BigEndian.Uint32(p.Pix[i:]))
}

// SetFloat stores a float32 sample at (row, col).
func (p *Plane) SetFloat(row, col int, v float32) {
	i := (row*p.Cols + col) * 4
	binary.BigEndian.PutUint32(p.Pix[i:], math.Float32bits(v))
}

// Fill sets every integer sample to v.
func (p *Plane) Fill(v uint32) {
	for r := 0; r < p.Rows; r++ {
		for c := 0; c < p.Cols; c++ {
			p.SetUint(r, c, v)
		}
	}
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	q := *p
	q.Pix = append([]byte(nil), p.Pix...)
	return &q
}

// Equal reports whether two planes hold the same samples.
func (p *Plane) Equal(q *Plane) bool {
	if p == nil || q == nil {
		return p == q
	}
	return p.DType == q.DType && p.Rows == q.Rows && p.Cols == q.Cols && bytes.Equal(p.Pix, q.Pix)
}
