// Package psd reads and writes the Adobe Photoshop ImageSourceData
// (TIFF tag 37724) and ImageResources (TIFF tag 34377) binary blobs
// found in layered TIFF files.
//
// The blob format is specified in the Adobe Photoshop TIFF Technical
// Notes (March 22, 2002) and the Adobe Photoshop File Formats
// Specification (November 2019).
package psd

import (
	"encoding/binary"
	"fmt"
)

// Format identifies one of the four PSD format variants. The variant
// determines the byte order of all structural integers and whether
// selected record keys carry 4- or 8-byte size fields.
//
// Every structure in a decoded tree was produced under a single Format
// and must be re-encoded under a single Format.
type Format int

const (
	// FormatBE32 is the classic big-endian variant, signature "8BIM".
	FormatBE32 Format = iota
	// FormatLE32 is the little-endian variant, signature "MIB8".
	FormatLE32
	// FormatBE64 is the big-endian BigTIFF variant, signature "8B64".
	FormatBE64
	// FormatLE64 is the little-endian BigTIFF variant, signature "46B8".
	FormatLE64
)

var formatSignatures = [4][4]byte{
	{'8', 'B', 'I', 'M'},
	{'M', 'I', 'B', '8'},
	{'8', 'B', '6', '4'},
	{'4', '6', 'B', '8'},
}

// largeSizeKeys lists the keys that carry an 8-byte size field under
// the 64-bit format variants. All other keys always use 4 bytes.
var largeSizeKeys = map[Key]struct{}{
	KeyUserMask:             {},
	KeyLayer:                {},
	KeyLayer16:              {},
	KeyLayer32:              {},
	KeyMergedTransparency:   {},
	KeyMergedTransparency16: {},
	KeyMergedTransparency32: {},
	KeyAlpha:                {},
	KeyFilterMask:           {},
	KeyLinkedLayer2:         {},
	KeyFilterEffects:        {},
	KeyFilterEffects2:       {},
	KeyPixelSourceDataCC15:  {},
}

// FormatFromSignature returns the Format matching a 4-byte record
// signature, or ErrUnknownFormat.
func FormatFromSignature(sig []byte) (Format, error) {
	if len(sig) >= 4 {
		var b [4]byte
		copy(b[:], sig)
		for f, s := range formatSignatures {
			if b == s {
				return Format(f), nil
			}
		}
	}
	return FormatBE32, fmt.Errorf("%w: %q", ErrUnknownFormat, sig)
}

// Signature returns the 4-byte record signature of the format.
func (f Format) Signature() [4]byte {
	return formatSignatures[f]
}

// ByteOrder returns the byte order of all structural integers.
func (f Format) ByteOrder() binary.ByteOrder {
	if f == FormatLE32 || f == FormatLE64 {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// Is64Bit reports whether the format uses 8-byte size fields for the
// large-size keys.
func (f Format) Is64Bit() bool {
	return f == FormatBE64 || f == FormatLE64
}

// SizeLen returns the width in bytes of the size field of a record
// with the given key.
func (f Format) SizeLen(k Key) int {
	if f.Is64Bit() {
		if _, ok := largeSizeKeys[k]; ok {
			return 8
		}
	}
	return 4
}

// DefaultSizeLen returns the width of size fields that do not belong
// to a keyed record, such as channel data lengths.
func (f Format) DefaultSizeLen() int {
	if f.Is64Bit() {
		return 8
	}
	return 4
}

// EncodeKey returns the on-wire bytes of a key. Keys are stored
// byte-reversed under the little-endian variants.
func (f Format) EncodeKey(k Key) [4]byte {
	var b [4]byte
	copy(b[:], k)
	if f.ByteOrder() == binary.LittleEndian {
		b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	}
	return b
}

// DecodeKey returns the canonical key for 4 on-wire bytes.
func (f Format) DecodeKey(b [4]byte) Key {
	if f.ByteOrder() == binary.LittleEndian {
		b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	}
	return Key(b[:])
}

func (f Format) String() string {
	sig := f.Signature()
	return string(sig[:])
}
