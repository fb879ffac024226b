// Package tifftag locates raw private tag values inside classic TIFF
// and BigTIFF containers without decoding the raster. It walks the IFD
// chain only; compression, tiling and color handling are out of scope.
//
// The TIFF specification is at http://partners.adobe.com/public/developer/en/tiff/TIFF6.pdf
package tifftag

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrNotTIFF     = errors.New("❌ not a TIFF file")
	ErrBadIFD      = errors.New("❌ malformed IFD")
	ErrNoSuchPage  = errors.New("❌ page index past the end of the IFD chain")
	ErrTagNotFound = errors.New("❌ tag not present in the IFD")
)

const (
	leHeader = "II" // little-endian byte-order mark
	beHeader = "MM" // big-endian byte-order mark

	classicVersion = 42
	bigVersion     = 43

	classicIFDLen = 12
	bigIFDLen     = 20
)

// The length of one instance of each data type in bytes. BigTIFF adds
// the 8-byte types 16-18.
var typeLengths = map[uint16]uint64{
	1: 1, 2: 1, 3: 2, 4: 4, 5: 8,
	6: 1, 7: 1, 8: 2, 9: 4, 10: 8,
	11: 4, 12: 8, 13: 4,
	16: 8, 17: 8, 18: 8,
}

const maxChunkSize = 10 << 20 // 10M

// readAt reads n bytes at off, growing the buffer in chunks so a
// corrupt length field cannot force a giant allocation up front.
func readAt(r io.ReaderAt, n uint64, off int64) ([]byte, error) {
	if int64(n) < 0 || n != uint64(int(n)) {
		return nil, io.ErrUnexpectedEOF
	}
	if n < maxChunkSize {
		buf := make([]byte, n)
		if _, err := r.ReadAt(buf, off); err != nil {
			if err != io.EOF || n > 0 {
				return nil, err
			}
		}
		return buf, nil
	}

	var buf []byte
	chunk := make([]byte, maxChunkSize)
	for n > 0 {
		next := n
		if next > maxChunkSize {
			next = maxChunkSize
		}
		if _, err := r.ReadAt(chunk[:next], off); err != nil {
			return nil, err
		}
		buf = append(buf, chunk[:next]...)
		n -= next
		off += int64(next)
	}
	return buf, nil
}

// File is an open TIFF container positioned for tag lookup.
type File struct {
	r   io.ReaderAt
	bo  binary.ByteOrder
	big bool

	firstIFD uint64
}

// Open validates the header and remembers the offset of the first IFD.
func Open(r io.ReaderAt) (*File, error) {
	p := make([]byte, 16)
	if _, err := r.ReadAt(p[:8], 0); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}

	f := &File{r: r}
	switch string(p[0:2]) {
	case leHeader:
		f.bo = binary.LittleEndian
	case beHeader:
		f.bo = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: byte-order mark %q", ErrNotTIFF, p[0:2])
	}

	switch f.bo.Uint16(p[2:4]) {
	case classicVersion:
		f.firstIFD = uint64(f.bo.Uint32(p[4:8]))
	case bigVersion:
		// BigTIFF: offset size field (must be 8), reserved, then the
		// 8-byte offset of the first IFD.
		if _, err := r.ReadAt(p[:16], 0); err != nil {
			return nil, err
		}
		if f.bo.Uint16(p[4:6]) != 8 || f.bo.Uint16(p[6:8]) != 0 {
			return nil, fmt.Errorf("%w: bad BigTIFF offset size", ErrNotTIFF)
		}
		f.big = true
		f.firstIFD = f.bo.Uint64(p[8:16])
	default:
		return nil, fmt.Errorf("%w: version %d", ErrNotTIFF, f.bo.Uint16(p[2:4]))
	}
	return f, nil
}

// ByteOrder returns the container byte order.
func (f *File) ByteOrder() binary.ByteOrder { return f.bo }

// IsBig reports whether the container is BigTIFF.
func (f *File) IsBig() bool { return f.big }

// ifd returns the entry block of the IFD with the given page index.
func (f *File) ifd(page int) ([]byte, error) {
	off := f.firstIFD
	for {
		if off == 0 {
			return nil, fmt.Errorf("%w: %d", ErrNoSuchPage, page)
		}

		var count uint64
		var entryLen uint64 = classicIFDLen
		if f.big {
			p, err := readAt(f.r, 8, int64(off))
			if err != nil {
				return nil, err
			}
			count = f.bo.Uint64(p)
			entryLen = bigIFDLen
			off += 8
		} else {
			p, err := readAt(f.r, 2, int64(off))
			if err != nil {
				return nil, err
			}
			count = uint64(f.bo.Uint16(p))
			off += 2
		}

		entries, err := readAt(f.r, count*entryLen, int64(off))
		if err != nil {
			return nil, err
		}
		if page == 0 {
			return entries, nil
		}
		page--

		// Next-IFD pointer follows the entry block.
		nextOff := int64(off + count*entryLen)
		if f.big {
			p, err := readAt(f.r, 8, nextOff)
			if err != nil {
				return nil, err
			}
			off = f.bo.Uint64(p)
		} else {
			p, err := readAt(f.r, 4, nextOff)
			if err != nil {
				return nil, err
			}
			off = uint64(f.bo.Uint32(p))
		}
	}
}

// Value returns the raw value bytes of the given tag on the given page.
// Inline values (those that fit the entry's value field) and pointed-to
// values are both handled; the returned slice is always a copy.
func (f *File) Value(tag uint16, page int) ([]byte, error) {
	entries, err := f.ifd(page)
	if err != nil {
		return nil, err
	}

	entryLen := classicIFDLen
	inline := 4
	if f.big {
		entryLen = bigIFDLen
		inline = 8
	}

	for i := 0; i+entryLen <= len(entries); i += entryLen {
		e := entries[i : i+entryLen]
		if f.bo.Uint16(e[0:2]) != tag {
			continue
		}

		typ := f.bo.Uint16(e[2:4])
		unit, ok := typeLengths[typ]
		if !ok {
			return nil, fmt.Errorf("%w: tag %d has datatype %d", ErrBadIFD, tag, typ)
		}

		var count uint64
		if f.big {
			count = f.bo.Uint64(e[4:12])
		} else {
			count = uint64(f.bo.Uint32(e[4:8]))
		}
		datalen := unit * count

		valueField := e[entryLen-inline:]
		if datalen <= uint64(inline) {
			return append([]byte(nil), valueField[:datalen]...), nil
		}
		var off uint64
		if f.big {
			off = f.bo.Uint64(valueField)
		} else {
			off = uint64(f.bo.Uint32(valueField))
		}
		return readAt(f.r, datalen, int64(off))
	}
	return nil, fmt.Errorf("%w: tag %d page %d", ErrTagNotFound, tag, page)
}
