package psd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// CompressionType identifies the on-wire representation of a channel
// raster plane.
type CompressionType int16

const (
	CompressionUnknown      CompressionType = -1
	CompressionRaw          CompressionType = 0
	CompressionRLE          CompressionType = 1 // per-scanline PackBits
	CompressionZip          CompressionType = 2
	CompressionZipPredicted CompressionType = 3
)

func (c CompressionType) String() string {
	switch c {
	case CompressionRaw:
		return "RAW"
	case CompressionRLE:
		return "RLE"
	case CompressionZip:
		return "ZIP"
	case CompressionZipPredicted:
		return "ZIP_PREDICTED"
	}
	return "UNKNOWN"
}

// rleSizeLen is the width of the per-scanline compressed-length fields
// of the RLE table: 2 bytes under the 32-bit variants, 4 under 64-bit.
func rleSizeLen(f Format) int {
	if f.Is64Bit() {
		return 4
	}
	return 2
}

// EncodePlane encodes a plane into its on-wire representation under
// the given compression kind. The result does not include the 2-byte
// compression code. An empty plane encodes to zero bytes.
func EncodePlane(p *Plane, kind CompressionType, f Format) ([]byte, error) {
	if p.DType.ItemSize() == 0 {
		return nil, fmt.Errorf("%w: dtype %d", ErrUnsupportedDType, p.DType)
	}
	if p.NumSamples() == 0 {
		return nil, nil
	}

	switch kind {
	case CompressionRaw:
		return append([]byte(nil), p.Pix...), nil

	case CompressionZip:
		return zlibCompress(p.Pix), nil

	case CompressionZipPredicted:
		return zlibCompress(predictorEncode(p)), nil

	case CompressionRLE:
		bo := f.ByteOrder()
		width := rleSizeLen(f)
		rowBytes := p.Cols * p.DType.ItemSize()
		lines := make([][]byte, p.Rows)
		for r := 0; r < p.Rows; r++ {
			lines[r] = packbitsEncode(p.Pix[r*rowBytes : (r+1)*rowBytes])
		}
		var buf bytes.Buffer
		var field [4]byte
		for _, line := range lines {
			if width == 2 {
				bo.PutUint16(field[:2], uint16(len(line)))
				buf.Write(field[:2])
			} else {
				bo.PutUint32(field[:4], uint32(len(line)))
				buf.Write(field[:4])
			}
		}
		for _, line := range lines {
			buf.Write(line)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, int(kind))
}

// DecodePlane decodes on-wire channel bytes into a plane of the given
// shape and dtype. An empty shape yields a zero-filled plane without
// consuming any bytes.
func DecodePlane(data []byte, kind CompressionType, d DType, rows, cols int, f Format) (*Plane, error) {
	if d.ItemSize() == 0 {
		return nil, fmt.Errorf("%w: dtype %d", ErrUnsupportedDType, d)
	}
	p := NewPlane(d, rows, cols)
	want := len(p.Pix)
	if want == 0 {
		return p, nil
	}

	switch kind {
	case CompressionRaw:
		if len(data) < want {
			return nil, fmt.Errorf("%w: raw plane needs %d bytes, have %d", ErrTruncated, want, len(data))
		}
		copy(p.Pix, data)
		return p, nil

	case CompressionZip:
		raw, err := zlibDecompress(data, want)
		if err != nil {
			return nil, err
		}
		copy(p.Pix, raw)
		return p, nil

	case CompressionZipPredicted:
		raw, err := zlibDecompress(data, want)
		if err != nil {
			return nil, err
		}
		copy(p.Pix, raw)
		predictorDecode(p)
		return p, nil

	case CompressionRLE:
		bo := f.ByteOrder()
		width := rleSizeLen(f)
		if len(data) < rows*width {
			return nil, fmt.Errorf("%w: RLE length table", ErrTruncated)
		}
		rowBytes := cols * d.ItemSize()
		off := rows * width
		for r := 0; r < rows; r++ {
			var n int
			if width == 2 {
				n = int(bo.Uint16(data[r*width:]))
			} else {
				n = int(bo.Uint32(data[r*width:]))
			}
			if off+n > len(data) {
				return nil, fmt.Errorf("%w: RLE scanline %d", ErrTruncated, r)
			}
			line, err := packbitsDecode(data[off:off+n], rowBytes)
			if err != nil {
				return nil, fmt.Errorf("RLE scanline %d: %w", r, err)
			}
			copy(p.Pix[r*rowBytes:], line)
			off += n
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, int(kind))
}

// predictorEncode applies the horizontal predictor used by
// ZIP_PREDICTED. Integer dtypes take element deltas across each row;
// float32 rows are split into byte planes and then byte-differenced,
// matching the TIFF floating-point predictor.
func predictorEncode(p *Plane) []byte {
	out := make([]byte, len(p.Pix))
	rowBytes := p.Cols * p.DType.ItemSize()

	switch p.DType {
	case DTypeUint8:
		for r := 0; r < p.Rows; r++ {
			row := p.Pix[r*rowBytes : (r+1)*rowBytes]
			dst := out[r*rowBytes:]
			prev := byte(0)
			for i, v := range row {
				dst[i] = v - prev
				prev = v
			}
		}
	case DTypeUint16:
		for r := 0; r < p.Rows; r++ {
			row := p.Pix[r*rowBytes : (r+1)*rowBytes]
			dst := out[r*rowBytes : (r+1)*rowBytes]
			prev := uint16(0)
			for c := 0; c < p.Cols; c++ {
				v := binary.BigEndian.Uint16(row[c*2:])
				binary.BigEndian.PutUint16(dst[c*2:], v-prev)
				prev = v
			}
		}
	default: // float32
		tmp := make([]byte, rowBytes)
		for r := 0; r < p.Rows; r++ {
			row := p.Pix[r*rowBytes : (r+1)*rowBytes]
			for c := 0; c < p.Cols; c++ {
				for k := 0; k < 4; k++ {
					tmp[k*p.Cols+c] = row[c*4+k]
				}
			}
			dst := out[r*rowBytes:]
			prev := byte(0)
			for i, v := range tmp {
				dst[i] = v - prev
				prev = v
			}
		}
	}
	return out
}

// predictorDecode reverses predictorEncode in place.
func predictorDecode(p *Plane) {
	rowBytes := p.Cols * p.DType.ItemSize()

	switch p.DType {
	case DTypeUint8:
		for r := 0; r < p.Rows; r++ {
			row := p.Pix[r*rowBytes : (r+1)*rowBytes]
			acc := byte(0)
			for i := range row {
				acc += row[i]
				row[i] = acc
			}
		}
	case DTypeUint16:
		for r := 0; r < p.Rows; r++ {
			row := p.Pix[r*rowBytes : (r+1)*rowBytes]
			acc := uint16(0)
			for c := 0; c < p.Cols; c++ {
				acc += binary.BigEndian.Uint16(row[c*2:])
				binary.BigEndian.PutUint16(row[c*2:], acc)
			}
		}
	default: // float32
		tmp := make([]byte, rowBytes)
		for r := 0; r < p.Rows; r++ {
			row := p.Pix[r*rowBytes : (r+1)*rowBytes]
			acc := byte(0)
			for i := range row {
				acc += row[i]
				tmp[i] = acc
			}
			for c := 0; c < p.Cols; c++ {
				for k := 0; k < 4; k++ {
					row[c*4+k] = tmp[k*p.Cols+c]
				}
			}
		}
	}
}

// packbitsEncode compresses one scanline with Apple PackBits. The
// 0x80 no-op code is never emitted.
func packbitsEncode(src []byte) []byte {
	dst := make([]byte, 0, len(src)+len(src)/128+1)
	i := 0
	for i < len(src) {
		run := 1
		for i+run < len(src) && run < 128 && src[i+run] == src[i] {
			run++
		}
		if run >= 2 {
			dst = append(dst, byte(257-run), src[i])
			i += run
			continue
		}
		start := i
		i++
		for i < len(src) && i-start < 128 {
			if i+2 < len(src) && src[i] == src[i+1] && src[i+1] == src[i+2] {
				break
			}
			i++
		}
		dst = append(dst, byte(i-start-1))
		dst = append(dst, src[start:i]...)
	}
	return dst
}

// packbitsDecode expands one scanline, expecting exactly want bytes.
func packbitsDecode(src []byte, want int) ([]byte, error) {
	dst := make([]byte, 0, want)
	for i := 0; i < len(src); {
		n := int8(src[i])
		i++
		switch {
		case n >= 0:
			cnt := int(n) + 1
			if i+cnt > len(src) {
				return nil, fmt.Errorf("%w: PackBits literal run", ErrTruncated)
			}
			dst = append(dst, src[i:i+cnt]...)
			i += cnt
		case n == -128:
			// no-op
		default:
			if i >= len(src) {
				return nil, fmt.Errorf("%w: PackBits repeat run", ErrTruncated)
			}
			for cnt := 1 - int(n); cnt > 0; cnt-- {
				dst = append(dst, src[i])
			}
			i++
		}
	}
	if len(dst) != want {
		return nil, fmt.Errorf("%w: PackBits scanline decoded to %d bytes, want %d", ErrTruncated, len(dst), want)
	}
	return dst, nil
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(b) //nolint:errcheck // bytes.Buffer writes cannot fail
	zw.Close()  //nolint:errcheck
	return buf.Bytes()
}

func zlibDecompress(b []byte, want int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("opening zlib stream: %w", err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("reading zlib stream: %w", err)
	}
	if len(raw) != want {
		return nil, fmt.Errorf("%w: zlib stream yields %d bytes, want %d", ErrTruncated, len(raw), want)
	}
	return raw, nil
}
