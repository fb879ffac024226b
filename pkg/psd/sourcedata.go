package psd

import (
	"bytes"
	"fmt"
)

// TIFF tag numbers of the two Photoshop blobs.
const (
	TagImageSourceData = 37724
	TagImageResources  = 34377
)

// tiffTypeUndefined is the TIFF data type code used when storing
// either blob as an extratag.
const tiffTypeUndefined = 7

// imageSourceDataSignature is the fixed header of the
// ImageSourceData tag value.
const imageSourceDataSignature = "Adobe Photoshop Document Data Block\x00"

// ImageSourceData is the decoded value of TIFF tag 37724: the layer
// list, the global user mask and every other tagged-info section of a
// layered TIFF.
//
// The tree is immutable by convention once decoded; Pack never
// mutates it.
type ImageSourceData struct {
	Format   Format
	Name     string
	Layers   *Layers
	UserMask *UserMask
	Info     []Structure
}

// UnpackImageSourceData decodes an ImageSourceData tag value. The
// format variant is detected from the first record signature. A blob
// without a layer list or user mask gets empty defaults and a warning
// diagnostic, not an error.
func UnpackImageSourceData(data []byte, opts *ReadOptions) (*ImageSourceData, error) {
	log := opts.logger()

	if len(data) < len(imageSourceDataSignature) ||
		!bytes.Equal(data[:len(imageSourceDataSignature)], []byte(imageSourceDataSignature)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSignature, truncateForLog(data))
	}
	body := data[len(imageSourceDataSignature):]

	d := &ImageSourceData{Format: FormatBE32}
	if len(body) >= 4 {
		f, err := FormatFromSignature(body[:4])
		if err != nil {
			return nil, err
		}
		d.Format = f

		r := newReader(body, f)
		structures, err := readStructures(r, len(body), opts, 4)
		if err != nil {
			return nil, err
		}
		for _, s := range structures {
			switch v := s.(type) {
			case *Layers:
				if d.Layers == nil {
					d.Layers = v
					continue
				}
			case *UserMask:
				if d.UserMask == nil {
					d.UserMask = v
					continue
				}
			}
			d.Info = append(d.Info, s)
		}
	}

	if d.Layers == nil {
		log.Warn("no layer list section found, substituting an empty one")
		d.Layers = &Layers{K: KeyLayer}
	}
	if d.UserMask == nil {
		log.Warn("no user mask section found, substituting a default one")
		d.UserMask = &UserMask{ColorSpace: ColorSpaceDummy, Flag: 128}
	}
	return d, nil
}

// Pack encodes the tree as an ImageSourceData tag value under the
// given format variant. Opaque Unknown sections read under a
// different variant are dropped with a diagnostic.
func (d *ImageSourceData) Pack(f Format, opts *WriteOptions) ([]byte, error) {
	w := newWriter(f)
	w.raw([]byte(imageSourceDataSignature))

	sections := make([]Structure, 0, len(d.Info)+2)
	if d.Layers != nil {
		sections = append(sections, d.Layers)
	}
	if d.UserMask != nil {
		sections = append(sections, d.UserMask)
	}
	sections = append(sections, d.Info...)

	if _, err := writeStructures(w, opts, 4, sections...); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}

// TiffTag returns the extratag tuple accepted by TIFF writers:
// tag number, type code 7 (undefined), byte count, value, and the
// write-once flag.
func (d *ImageSourceData) TiffTag(f Format, opts *WriteOptions) (tag uint16, typ uint16, count int, value []byte, writeonce bool, err error) {
	value, err = d.Pack(f, opts)
	if err != nil {
		return 0, 0, 0, nil, false, err
	}
	return TagImageSourceData, tiffTypeUndefined, len(value), value, true, nil
}

// Equal reports structural equality of the decoded trees. The
// advisory name and the format variant do not participate.
func (d *ImageSourceData) Equal(o *ImageSourceData) bool {
	if d == nil || o == nil {
		return d == o
	}
	if !layersEqual(d.Layers, o.Layers) {
		return false
	}
	if (d.UserMask == nil) != (o.UserMask == nil) {
		return false
	}
	if d.UserMask != nil && !d.UserMask.equal(o.UserMask) {
		return false
	}
	if len(d.Info) != len(o.Info) {
		return false
	}
	for i, s := range d.Info {
		if !s.equal(o.Info[i]) {
			return false
		}
	}
	return true
}

func layersEqual(a, b *Layers) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.equal(b)
}

func truncateForLog(b []byte) []byte {
	if len(b) > 16 {
		return b[:16]
	}
	return b
}
