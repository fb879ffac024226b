package psd

import (
	"bytes"
	"fmt"
)

// Rectangle is a layer or mask bounding box in document coordinates.
type Rectangle struct {
	Top    int32
	Left   int32
	Bottom int32
	Right  int32
}

// Shape returns the (rows, cols) raster shape of the rectangle. A
// degenerate rectangle is empty.
func (rc Rectangle) Shape() (rows, cols int) {
	if rc.Bottom > rc.Top {
		rows = int(rc.Bottom - rc.Top)
	}
	if rc.Right > rc.Left {
		cols = int(rc.Right - rc.Left)
	}
	return rows, cols
}

func (rc Rectangle) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", rc.Top, rc.Left, rc.Bottom, rc.Right)
}

// Layers is an ordered layer list. The key selects the sample type of
// every channel in the list: Layr is uint8, Lr16 uint16, Lr32 float32.
type Layers struct {
	K               Key
	Layers          []*Layer
	HasTransparency bool
}

// DType returns the per-channel sample type selected by the list key.
func (ls *Layers) DType() DType {
	switch ls.K {
	case KeyLayer16:
		return DTypeUint16
	case KeyLayer32:
		return DTypeFloat32
	}
	return DTypeUint8
}

// Shape returns the extent covered by all layer and mask rectangles.
func (ls *Layers) Shape() (rows, cols int) {
	for _, la := range ls.Layers {
		if int(la.Rect.Bottom) > rows {
			rows = int(la.Rect.Bottom)
		}
		if int(la.Rect.Right) > cols {
			cols = int(la.Rect.Right)
		}
		if la.Mask != nil && la.Mask.Rect != nil {
			if int(la.Mask.Rect.Bottom) > rows {
				rows = int(la.Mask.Rect.Bottom)
			}
			if int(la.Mask.Rect.Right) > cols {
				cols = int(la.Mask.Rect.Right)
			}
		}
	}
	return rows, cols
}

func (ls *Layers) Key() Key { return ls.K }

// decodeLayers reads the layer list: a signed layer count, all layer
// records, then all channel image payloads in the same per-channel
// order. The file interleaves every record header before any pixel
// data, so image decoding is a second pass.
func decodeLayers(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	ls := &Layers{K: k}
	count := int(r.i16())
	if count < 0 {
		ls.HasTransparency = true
		count = -count
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		la, err := decodeLayer(r, opts)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		ls.Layers = append(ls.Layers, la)
	}

	d := ls.DType()
	for i, la := range ls.Layers {
		for _, ch := range la.Channels {
			rows, cols := la.Rect.Shape()
			if ch.ID < ChannelTransparencyMask {
				rows, cols = 0, 0
				if la.Mask != nil && la.Mask.Rect != nil {
					rows, cols = la.Mask.Rect.Shape()
				}
			}
			if err := ch.readImage(r, d, rows, cols); err != nil {
				return nil, fmt.Errorf("layer %d channel %d: %w", i, ch.ID, err)
			}
		}
	}
	return ls, nil
}

func (ls *Layers) payload(w *writer, opts *WriteOptions) error {
	n := len(ls.Layers)
	if ls.HasTransparency {
		w.i16(int16(-n))
	} else {
		w.i16(int16(n))
	}

	// Layer records first, gathering each layer's channel payload
	// bytes; the payload blocks follow all records.
	imageData := make([][]byte, 0, n)
	for _, la := range ls.Layers {
		data, err := la.writeRecord(w, opts)
		if err != nil {
			return err
		}
		imageData = append(imageData, data)
	}
	for _, data := range imageData {
		w.raw(data)
	}

	// The layer info section length must be a multiple of 2.
	w.pad(2)
	return nil
}

func (ls *Layers) equal(other Structure) bool {
	o, ok := other.(*Layers)
	if !ok || ls.K != o.K || ls.HasTransparency != o.HasTransparency || len(ls.Layers) != len(o.Layers) {
		return false
	}
	for i, la := range ls.Layers {
		if !la.Equal(o.Layers[i]) {
			return false
		}
	}
	return true
}

// Layer is one layer record: bounds, channel list, blend settings,
// optional mask and the nested tagged-info list.
type Layer struct {
	Name           string
	Channels       []*Channel
	Rect           Rectangle
	Mask           *LayerMask
	Opacity        uint8
	BlendMode      Key
	BlendingRanges []int32
	Clipping       ClippingType
	Flags          LayerFlags
	Info           []Structure
}

// Shape returns the raster shape of the layer rectangle.
func (la *Layer) Shape() (rows, cols int) { return la.Rect.Shape() }

// decodeLayer reads one layer record. Channel image data is read
// separately by decodeLayers after all records.
func decodeLayer(r *reader, opts *ReadOptions) (*Layer, error) {
	la := &Layer{
		Rect: Rectangle{Top: r.i32(), Left: r.i32(), Bottom: r.i32(), Right: r.i32()},
	}
	count := int(r.u16())
	for i := 0; i < count; i++ {
		la.Channels = append(la.Channels, &Channel{
			ID:         ChannelID(r.i16()),
			dataLength: r.defaultSize(),
		})
	}

	sig := r.f.Signature()
	if b := r.take(4); r.err == nil && !bytes.Equal(b, sig[:]) {
		return nil, fmt.Errorf("%w: layer blend signature %q", ErrUnknownFormat, b)
	}
	la.BlendMode = r.key()
	la.Opacity = r.u8()
	la.Clipping = ClippingType(r.u8())
	la.Flags = LayerFlags(r.u8())
	r.skip(1) // filler

	extra := int(r.u32())
	end := r.pos() + extra
	if err := r.Err(); err != nil {
		return nil, err
	}

	mask, err := decodeLayerMask(r)
	if err != nil {
		return nil, err
	}
	la.Mask = mask

	nbytes := int(r.u32())
	la.BlendingRanges = make([]int32, 0, nbytes/4)
	for i := 0; i < nbytes/4; i++ {
		la.BlendingRanges = append(la.BlendingRanges, r.i32())
	}

	la.Name = r.pascal(4)
	if err := r.Err(); err != nil {
		return nil, err
	}

	la.Info, err = readStructures(r, end, opts, 2)
	if err != nil {
		return nil, err
	}

	r.seek(end)
	return la, r.Err()
}

// writeRecord emits the layer record and returns the layer's channel
// image payload bytes for the caller to append after all records.
func (la *Layer) writeRecord(w *writer, opts *WriteOptions) ([]byte, error) {
	w.i32(la.Rect.Top)
	w.i32(la.Rect.Left)
	w.i32(la.Rect.Bottom)
	w.i32(la.Rect.Right)
	w.u16(uint16(len(la.Channels)))

	var imageData []byte
	for _, ch := range la.Channels {
		data, err := ch.encodeImage(w.f, opts.compression())
		if err != nil {
			return nil, err
		}
		w.i16(int16(ch.ID))
		w.defaultSize(int64(len(data)))
		imageData = append(imageData, data...)
	}

	sig := w.f.Signature()
	w.raw(sig[:])
	blend := la.BlendMode
	if blend == "" {
		blend = BlendNormal
	}
	w.key(blend)
	w.u8(la.Opacity)
	w.u8(uint8(la.Clipping))
	w.u8(uint8(la.Flags))
	w.u8(0) // filler

	ew := newWriter(w.f)
	encodeLayerMask(ew, la.Mask)
	ew.u32(uint32(4 * len(la.BlendingRanges)))
	for _, v := range la.BlendingRanges {
		ew.i32(v)
	}
	ew.pascal(la.Name, 4)
	if _, err := writeStructures(ew, opts, 2, la.Info...); err != nil {
		return nil, err
	}
	w.u32(uint32(ew.len()))
	w.raw(ew.bytes())

	return imageData, nil
}

// Equal reports structural equality. The display name is advisory and
// does not participate.
func (la *Layer) Equal(o *Layer) bool {
	if la == nil || o == nil {
		return la == o
	}
	if la.Rect != o.Rect || la.Opacity != o.Opacity || la.BlendMode != o.BlendMode ||
		la.Clipping != o.Clipping || la.Flags != o.Flags ||
		len(la.BlendingRanges) != len(o.BlendingRanges) ||
		len(la.Channels) != len(o.Channels) || len(la.Info) != len(o.Info) {
		return false
	}
	for i, v := range la.BlendingRanges {
		if v != o.BlendingRanges[i] {
			return false
		}
	}
	for i, ch := range la.Channels {
		if !ch.Equal(o.Channels[i]) {
			return false
		}
	}
	if !la.Mask.Equal(o.Mask) {
		return false
	}
	for i, s := range la.Info {
		if !s.equal(o.Info[i]) {
			return false
		}
	}
	return true
}

// Channel is one compressed raster plane of a layer. Non-negative IDs
// are color planes; negative IDs are transparency and mask planes.
type Channel struct {
	ID          ChannelID
	Compression CompressionType
	Data        *Plane

	// dataLength is the payload length declared by the channel header,
	// consumed when the deferred image data is read.
	dataLength int64
}

// readImage reads the channel's 2-byte compression code and decodes
// the remaining declared bytes into a plane of the given shape.
func (c *Channel) readImage(r *reader, d DType, rows, cols int) error {
	if c.dataLength < 2 {
		return fmt.Errorf("%w: channel data length %d", ErrTruncated, c.dataLength)
	}
	c.Compression = CompressionType(r.i16())
	data := r.take(int(c.dataLength) - 2)
	if err := r.Err(); err != nil {
		return err
	}
	p, err := DecodePlane(data, c.Compression, d, rows, cols, r.f)
	if err != nil {
		return err
	}
	c.Data = p
	return nil
}

// encodeImage returns the channel image payload: compression code
// plus encoded plane bytes. A non-unknown override replaces the
// stored compression kind.
func (c *Channel) encodeImage(f Format, override CompressionType) ([]byte, error) {
	if c.Data == nil {
		return nil, fmt.Errorf("%w: channel %d has no plane", ErrUnsupportedDType, c.ID)
	}
	kind := c.Compression
	if override != CompressionUnknown {
		kind = override
	}
	data, err := EncodePlane(c.Data, kind, f)
	if err != nil {
		return nil, err
	}
	w := newWriter(f)
	w.u16(uint16(kind))
	w.raw(data)
	return w.bytes(), nil
}

// Equal reports whether two channels hold the same plane under the
// same id. The stored compression kind is advisory.
func (c *Channel) Equal(o *Channel) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.ID == o.ID && c.Data.Equal(o.Data)
}
