package psd

import (
	"bytes"
	"fmt"
)

// resourceSignature opens every image resource block. The resource
// scheme is defined to always be big-endian, independent of the
// ImageSourceData format variant.
const resourceSignature = "8BIM"

// Well-known image resource ids with typed payloads. Everything else
// is preserved as opaque bytes.
const (
	ResourceAlphaNames      uint16 = 1006
	ResourceCaption         uint16 = 1008
	ResourceBackgroundColor uint16 = 1010
	ResourceThumbnailV4     uint16 = 1033
	ResourceThumbnail       uint16 = 1036
	ResourceVersionInfo     uint16 = 1057

	// Canonical buckets for the reserved id ranges.
	ResourcePathInfo       uint16 = 2000 // 2000-2997
	ResourcePluginResource uint16 = 4000 // 4000-4999
)

// CanonicalResourceID folds the reserved path-info and plugin ranges
// to their canonical bucket ids.
func CanonicalResourceID(id uint16) uint16 {
	switch {
	case id >= 2000 && id <= 2997:
		return ResourcePathInfo
	case id >= 4000 && id <= 4999:
		return ResourcePluginResource
	}
	return id
}

// ResourcePayload is the typed value of one resource block.
type ResourcePayload interface {
	encodeResource(w *writer) error
	equalResource(other ResourcePayload) bool
}

// ResourceBytes is an opaque resource payload.
type ResourceBytes struct {
	Data []byte
}

func (p *ResourceBytes) encodeResource(w *writer) error {
	w.raw(p.Data)
	return nil
}

func (p *ResourceBytes) equalResource(other ResourcePayload) bool {
	o, ok := other.(*ResourceBytes)
	return ok && bytes.Equal(p.Data, o.Data)
}

// ResourceString is a Pascal string payload.
type ResourceString struct {
	Value string
}

func (p *ResourceString) encodeResource(w *writer) error {
	w.pascal(p.Value, 1)
	return nil
}

func (p *ResourceString) equalResource(other ResourcePayload) bool {
	o, ok := other.(*ResourceString)
	return ok && *p == *o
}

// ResourceStrings is a series of Pascal strings, used by the alpha
// channel names resource.
type ResourceStrings struct {
	Values []string
}

func (p *ResourceStrings) encodeResource(w *writer) error {
	for _, v := range p.Values {
		w.pascal(v, 1)
	}
	return nil
}

func (p *ResourceStrings) equalResource(other ResourcePayload) bool {
	o, ok := other.(*ResourceStrings)
	if !ok || len(p.Values) != len(o.Values) {
		return false
	}
	for i, v := range p.Values {
		if v != o.Values[i] {
			return false
		}
	}
	return true
}

// ResourceColor is a color payload: space and 4 16-bit components.
type ResourceColor struct {
	Space      ColorSpace
	Components [4]int32
}

func (p *ResourceColor) encodeResource(w *writer) error {
	w.i16(int16(p.Space))
	writeColorComponents(w, p.Space, p.Components)
	return nil
}

func (p *ResourceColor) equalResource(other ResourcePayload) bool {
	o, ok := other.(*ResourceColor)
	return ok && *p == *o
}

// ResourceVersion is the version info resource (id 1057).
type ResourceVersion struct {
	Version           uint32
	HasRealMergedData bool
	Writer            string
	Reader            string
	FileVersion       uint32
}

func (p *ResourceVersion) encodeResource(w *writer) error {
	w.u32(p.Version)
	if p.HasRealMergedData {
		w.u8(1)
	} else {
		w.u8(0)
	}
	writeUnicode(w, p.Writer)
	writeUnicode(w, p.Reader)
	w.u32(p.FileVersion)
	return nil
}

func (p *ResourceVersion) equalResource(other ResourcePayload) bool {
	o, ok := other.(*ResourceVersion)
	return ok && *p == *o
}

// ResourceThumbnailData is the thumbnail resource (ids 1033, 1036).
// The raster bytes stay as stored, JFIF for format 1.
type ResourceThumbnailData struct {
	ThumbFormat    uint32
	Width          uint32
	Height         uint32
	WidthBytes     uint32
	TotalSize      uint32
	CompressedSize uint32
	BitsPerPixel   uint16
	Planes         uint16
	Data           []byte
}

func (p *ResourceThumbnailData) encodeResource(w *writer) error {
	w.u32(p.ThumbFormat)
	w.u32(p.Width)
	w.u32(p.Height)
	w.u32(p.WidthBytes)
	w.u32(p.TotalSize)
	w.u32(p.CompressedSize)
	w.u16(p.BitsPerPixel)
	w.u16(p.Planes)
	w.raw(p.Data)
	return nil
}

func (p *ResourceThumbnailData) equalResource(other ResourcePayload) bool {
	o, ok := other.(*ResourceThumbnailData)
	if !ok {
		return false
	}
	return p.ThumbFormat == o.ThumbFormat && p.Width == o.Width && p.Height == o.Height &&
		p.WidthBytes == o.WidthBytes && p.TotalSize == o.TotalSize &&
		p.CompressedSize == o.CompressedSize && p.BitsPerPixel == o.BitsPerPixel &&
		p.Planes == o.Planes && bytes.Equal(p.Data, o.Data)
}

// ResourceBlock is one image resource: numeric id, short name and a
// typed payload.
type ResourceBlock struct {
	ID      uint16
	Name    string
	Payload ResourcePayload
}

// Equal reports structural equality of two resource blocks.
func (b *ResourceBlock) Equal(o *ResourceBlock) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.ID == o.ID && b.Name == o.Name && b.Payload.equalResource(o.Payload)
}

// ImageResources is the decoded value of TIFF tag 34377.
type ImageResources struct {
	Name   string
	Blocks []*ResourceBlock
}

// UnpackImageResources decodes an ImageResources tag value. The
// scheme is always big-endian; there is no leading signature before
// the first block.
func UnpackImageResources(data []byte, opts *ReadOptions) (*ImageResources, error) {
	r := newReader(data, FormatBE32)
	res := &ImageResources{}

	for r.remaining() >= 4 {
		if !bytes.Equal(r.peek(4), []byte(resourceSignature)) {
			break
		}
		r.rawKey()
		id := r.u16()
		name := r.pascal(2)
		size := int(r.u32())
		start := r.pos()
		if err := r.Err(); err != nil {
			return nil, err
		}
		if start+size > len(data) {
			if opts.strict() {
				return nil, fmt.Errorf("%w: resource %d claims %d bytes, %d remain", ErrRecordOverrun, id, size, len(data)-start)
			}
			opts.logger().Warn("resource block overruns tag value, clamping", "id", id, "size", size)
			size = len(data) - start
		}

		payload, err := decodeResourcePayload(id, r.data[start:start+size])
		if err != nil {
			return nil, fmt.Errorf("%w: resource %d: %v", ErrInvalidResource, id, err)
		}
		res.Blocks = append(res.Blocks, &ResourceBlock{ID: id, Name: name, Payload: payload})

		r.seek(start + size + size%2)
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func decodeResourcePayload(id uint16, data []byte) (ResourcePayload, error) {
	r := newReader(data, FormatBE32)

	switch CanonicalResourceID(id) {
	case ResourceAlphaNames:
		p := &ResourceStrings{}
		for r.remaining() > 0 {
			p.Values = append(p.Values, r.pascal(1))
			if err := r.Err(); err != nil {
				return nil, err
			}
		}
		return p, nil

	case ResourceCaption:
		p := &ResourceString{Value: r.pascal(1)}
		return p, r.Err()

	case ResourceBackgroundColor:
		p := &ResourceColor{Space: ColorSpace(r.i16())}
		readColorComponents(r, p.Space, &p.Components)
		return p, r.Err()

	case ResourceVersionInfo:
		p := &ResourceVersion{Version: r.u32(), HasRealMergedData: r.u8() != 0}
		p.Writer = readUnicode(r)
		p.Reader = readUnicode(r)
		p.FileVersion = r.u32()
		return p, r.Err()

	case ResourceThumbnailV4, ResourceThumbnail:
		p := &ResourceThumbnailData{
			ThumbFormat:    r.u32(),
			Width:          r.u32(),
			Height:         r.u32(),
			WidthBytes:     r.u32(),
			TotalSize:      r.u32(),
			CompressedSize: r.u32(),
			BitsPerPixel:   r.u16(),
			Planes:         r.u16(),
		}
		p.Data = r.bytes(r.remaining())
		return p, r.Err()
	}

	// Path info, plugin resources and everything else stay opaque.
	return &ResourceBytes{Data: append([]byte(nil), data...)}, nil
}

// Pack encodes the resource blocks as an ImageResources tag value.
func (res *ImageResources) Pack() ([]byte, error) {
	w := newWriter(FormatBE32)
	for _, b := range res.Blocks {
		pw := newWriter(FormatBE32)
		if err := b.Payload.encodeResource(pw); err != nil {
			return nil, err
		}
		w.rawKey(resourceSignature)
		w.u16(b.ID)
		w.pascal(b.Name, 2)
		w.u32(uint32(pw.len()))
		w.raw(pw.bytes())
		if pw.len()%2 != 0 {
			w.u8(0)
		}
	}
	return w.bytes(), nil
}

// TiffTag returns the extratag tuple for the resource blocks.
func (res *ImageResources) TiffTag() (tag uint16, typ uint16, count int, value []byte, writeonce bool, err error) {
	value, err = res.Pack()
	if err != nil {
		return 0, 0, 0, nil, false, err
	}
	return TagImageResources, tiffTypeUndefined, len(value), value, true, nil
}

// Equal reports structural equality; the advisory name is excluded.
func (res *ImageResources) Equal(o *ImageResources) bool {
	if res == nil || o == nil {
		return res == o
	}
	if len(res.Blocks) != len(o.Blocks) {
		return false
	}
	for i, b := range res.Blocks {
		if !b.Equal(o.Blocks[i]) {
			return false
		}
	}
	return true
}
