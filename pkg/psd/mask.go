package psd

// LayerMask is the layer mask / adjustment layer data of one layer
// record. Rect is the sole presence discriminator: a nil Rect encodes
// as the zero-size form. The optional density and feather parameters
// are present exactly when their fields are non-nil; encoding derives
// the parameter flag byte purely from field presence.
type LayerMask struct {
	DefaultColor      uint8
	Rect              *Rectangle
	Flags             MaskFlags
	UserMaskDensity   *uint8
	UserMaskFeather   *float64
	VectorMaskDensity *uint8
	VectorMaskFeather *float64
	RealFlags         *MaskFlags
	RealBackground    *uint8
	RealRect          *Rectangle
}

// Shape returns the raster shape of the mask rectangle, empty when
// the mask is absent.
func (m *LayerMask) Shape() (rows, cols int) {
	if m == nil || m.Rect == nil {
		return 0, 0
	}
	return m.Rect.Shape()
}

// ParamFlags returns the parameter presence bits derived from the
// optional fields.
func (m *LayerMask) ParamFlags() MaskParameterFlags {
	var flags MaskParameterFlags
	if m.UserMaskDensity != nil {
		flags |= MaskParamUserDensity
	}
	if m.UserMaskFeather != nil {
		flags |= MaskParamUserFeather
	}
	if m.VectorMaskDensity != nil {
		flags |= MaskParamVectorDensity
	}
	if m.VectorMaskFeather != nil {
		flags |= MaskParamVectorFeather
	}
	return flags
}

// decodeLayerMask reads the size-discriminated mask block of a layer
// record: 0 is absent, exactly 20 is the base layout plus 2 padding
// bytes, anything else carries optional parameters and the real mask
// trailer.
func decodeLayerMask(r *reader) (*LayerMask, error) {
	size := int(r.u32())
	if size == 0 {
		return nil, r.Err()
	}
	start := r.pos()

	m := &LayerMask{}
	m.Rect = &Rectangle{Top: r.i32(), Left: r.i32(), Bottom: r.i32(), Right: r.i32()}
	m.DefaultColor = r.u8()
	m.Flags = MaskFlags(r.u8())

	if m.Flags&MaskApplied != 0 {
		params := MaskParameterFlags(r.u8())
		if params&MaskParamUserDensity != 0 {
			v := r.u8()
			m.UserMaskDensity = &v
		}
		if params&MaskParamUserFeather != 0 {
			v := r.f64()
			m.UserMaskFeather = &v
		}
		if params&MaskParamVectorDensity != 0 {
			v := r.u8()
			m.VectorMaskDensity = &v
		}
		if params&MaskParamVectorFeather != 0 {
			v := r.f64()
			m.VectorMaskFeather = &v
		}
	}

	if size == 20 {
		r.skip(2) // padding
	} else {
		realFlags := MaskFlags(r.u8())
		realBackground := r.u8()
		realRect := Rectangle{Top: r.i32(), Left: r.i32(), Bottom: r.i32(), Right: r.i32()}
		// An all-zero trailer is the placeholder written when no real
		// mask exists; fold it back to absent.
		if realFlags != 0 || realBackground != 0 || realRect != (Rectangle{}) {
			m.RealFlags = &realFlags
			m.RealBackground = &realBackground
			m.RealRect = &realRect
		}
	}

	r.seek(start + size)
	return m, r.Err()
}

// encodeLayerMask writes the size-prefixed mask block. A nil mask or
// nil rectangle writes the zero-size form.
func encodeLayerMask(w *writer, m *LayerMask) {
	if m == nil || m.Rect == nil {
		w.u32(0)
		return
	}

	params := m.ParamFlags()
	flags := m.Flags
	if params != 0 {
		flags |= MaskApplied
	}

	mw := newWriter(w.f)
	mw.i32(m.Rect.Top)
	mw.i32(m.Rect.Left)
	mw.i32(m.Rect.Bottom)
	mw.i32(m.Rect.Right)
	if m.DefaultColor != 0 {
		mw.u8(255)
	} else {
		mw.u8(0)
	}
	mw.u8(uint8(flags))

	if params != 0 {
		mw.u8(uint8(params))
		if m.UserMaskDensity != nil {
			mw.u8(*m.UserMaskDensity)
		}
		if m.UserMaskFeather != nil {
			mw.f64(*m.UserMaskFeather)
		}
		if m.VectorMaskDensity != nil {
			mw.u8(*m.VectorMaskDensity)
		}
		if m.VectorMaskFeather != nil {
			mw.f64(*m.VectorMaskFeather)
		}
		// The real mask trailer is mandatory in the long form.
		var realFlags MaskFlags
		var realBackground uint8
		var realRect Rectangle
		if m.RealFlags != nil {
			realFlags = *m.RealFlags
		}
		if m.RealBackground != nil {
			realBackground = *m.RealBackground
		}
		if m.RealRect != nil {
			realRect = *m.RealRect
		}
		mw.u8(uint8(realFlags))
		mw.u8(realBackground)
		mw.i32(realRect.Top)
		mw.i32(realRect.Left)
		mw.i32(realRect.Bottom)
		mw.i32(realRect.Right)
	} else {
		mw.u8(0)
		mw.u8(0)
	}

	w.u32(uint32(mw.len()))
	w.raw(mw.bytes())
}

// Equal reports structural equality including all optional fields.
func (m *LayerMask) Equal(o *LayerMask) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.DefaultColor == o.DefaultColor &&
		rectPtrEqual(m.Rect, o.Rect) &&
		m.Flags == o.Flags &&
		u8PtrEqual(m.UserMaskDensity, o.UserMaskDensity) &&
		f64PtrEqual(m.UserMaskFeather, o.UserMaskFeather) &&
		u8PtrEqual(m.VectorMaskDensity, o.VectorMaskDensity) &&
		f64PtrEqual(m.VectorMaskFeather, o.VectorMaskFeather) &&
		maskFlagsPtrEqual(m.RealFlags, o.RealFlags) &&
		u8PtrEqual(m.RealBackground, o.RealBackground) &&
		rectPtrEqual(m.RealRect, o.RealRect)
}

func rectPtrEqual(a, b *Rectangle) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func u8PtrEqual(a, b *uint8) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func f64PtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func maskFlagsPtrEqual(a, b *MaskFlags) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// UserMask is the global user mask table, resource key LMsk.
type UserMask struct {
	ColorSpace ColorSpace
	Components [4]int32
	Opacity    uint16
	Flag       uint8
}

func decodeUserMask(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	m := &UserMask{ColorSpace: ColorSpace(r.i16())}
	readColorComponents(r, m.ColorSpace, &m.Components)
	m.Opacity = r.u16()
	m.Flag = r.u8()
	return m, r.Err()
}

func (m *UserMask) Key() Key { return KeyUserMask }

func (m *UserMask) payload(w *writer, opts *WriteOptions) error {
	w.i16(int16(m.ColorSpace))
	writeColorComponents(w, m.ColorSpace, m.Components)
	w.u16(m.Opacity)
	w.u8(m.Flag)
	w.u8(0)
	return nil
}

// equal ignores the trailing flag byte, which is always 128.
func (m *UserMask) equal(other Structure) bool {
	o, ok := other.(*UserMask)
	return ok && m.ColorSpace == o.ColorSpace && m.Components == o.Components && m.Opacity == o.Opacity
}

// FilterMask is the CS3 filter mask, resource key FMsk.
type FilterMask struct {
	ColorSpace ColorSpace
	Components [4]int32
	Opacity    uint16
}

func decodeFilterMask(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	m := &FilterMask{ColorSpace: ColorSpace(r.i16())}
	readColorComponents(r, m.ColorSpace, &m.Components)
	m.Opacity = r.u16()
	return m, r.Err()
}

func (m *FilterMask) Key() Key { return KeyFilterMask }

func (m *FilterMask) payload(w *writer, opts *WriteOptions) error {
	w.i16(int16(m.ColorSpace))
	writeColorComponents(w, m.ColorSpace, m.Components)
	w.u16(m.Opacity)
	return nil
}

func (m *FilterMask) equal(other Structure) bool {
	o, ok := other.(*FilterMask)
	return ok && *m == *o
}

// Lab components are signed; every other color space is unsigned.
func readColorComponents(r *reader, cs ColorSpace, dst *[4]int32) {
	for i := range dst {
		if cs == ColorSpaceLab {
			dst[i] = int32(r.i16())
		} else {
			dst[i] = int32(r.u16())
		}
	}
}

func writeColorComponents(w *writer, cs ColorSpace, c [4]int32) {
	for _, v := range c {
		if cs == ColorSpaceLab {
			w.i16(int16(v))
		} else {
			w.u16(uint16(v))
		}
	}
}
