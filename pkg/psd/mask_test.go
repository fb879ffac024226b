package psd

import (
	"encoding/binary"
	"math"
	"testing"
)

func maskRoundTrip(t *testing.T, m *LayerMask, f Format) *LayerMask {
	t.Helper()
	w := newWriter(f)
	encodeLayerMask(w, m)
	r := newReader(w.bytes(), f)
	got, err := decodeLayerMask(r)
	if err != nil {
		t.Fatalf("decodeLayerMask: %v", err)
	}
	if r.remaining() != 0 {
		t.Fatalf("%d bytes left after the mask block", r.remaining())
	}
	return got
}

func TestLayerMaskAbsent(t *testing.T) {
	w := newWriter(FormatBE32)
	encodeLayerMask(w, nil)
	if len(w.bytes()) != 4 {
		t.Fatalf("absent mask encoded to %d bytes, want 4", len(w.bytes()))
	}
	if got := maskRoundTrip(t, nil, FormatBE32); got != nil {
		t.Errorf("absent mask decoded to %#v", got)
	}
}

func TestLayerMaskShortForm(t *testing.T) {
	m := &LayerMask{
		DefaultColor: 255,
		Rect:         &Rectangle{Top: 1, Left: 2, Bottom: 9, Right: 12},
		Flags:        MaskRelative | MaskDisabled,
	}

	w := newWriter(FormatBE32)
	encodeLayerMask(w, m)
	// u32 size + 16 rect + color + flags + 2 padding.
	if len(w.bytes()) != 24 {
		t.Fatalf("short form encoded to %d bytes, want 24", len(w.bytes()))
	}
	if size := binary.BigEndian.Uint32(w.bytes()); size != 20 {
		t.Fatalf("declared size %d, want 20", size)
	}

	got := maskRoundTrip(t, m, FormatBE32)
	if !got.Equal(m) {
		t.Errorf("round trip changed the mask: %#v", got)
	}
}

func TestLayerMaskUserFeatherOnly(t *testing.T) {
	feather := 2.5
	m := &LayerMask{
		DefaultColor:    255,
		Rect:            &Rectangle{Top: 0, Left: 0, Bottom: 4, Right: 4},
		Flags:           MaskApplied,
		UserMaskFeather: &feather,
	}

	w := newWriter(FormatBE32)
	encodeLayerMask(w, m)
	data := w.bytes()

	// rect + color + flags + param byte + float + real trailer.
	if size := binary.BigEndian.Uint32(data); size != 16+1+1+1+8+1+1+16 {
		t.Fatalf("declared size %d, want 45", size)
	}
	if params := data[4+16+2]; MaskParameterFlags(params) != MaskParamUserFeather {
		t.Fatalf("parameter byte = %#x, want user feather only", params)
	}
	if v := math.Float64frombits(binary.BigEndian.Uint64(data[4+16+3:])); v != feather {
		t.Fatalf("encoded feather = %v, want %v", v, feather)
	}

	got := maskRoundTrip(t, m, FormatBE32)
	if got.UserMaskFeather == nil || *got.UserMaskFeather != feather {
		t.Fatalf("feather not recovered: %#v", got)
	}
	if got.UserMaskDensity != nil || got.VectorMaskDensity != nil || got.VectorMaskFeather != nil {
		t.Errorf("unexpected parameters decoded: %#v", got)
	}
	if got.RealFlags != nil || got.RealBackground != nil || got.RealRect != nil {
		t.Errorf("all-zero real trailer was not folded to absent: %#v", got)
	}
	if !got.Equal(m) {
		t.Errorf("round trip changed the mask")
	}
}

func TestLayerMaskParamsFlagDerived(t *testing.T) {
	// Parameters force the flag bit on encode even when the caller
	// left it unset.
	density := uint8(96)
	m := &LayerMask{
		Rect:            &Rectangle{Bottom: 2, Right: 2},
		UserMaskDensity: &density,
	}

	got := maskRoundTrip(t, m, FormatLE32)
	if got.Flags&MaskApplied == 0 {
		t.Errorf("flag bit not set on the wire")
	}
	if got.UserMaskDensity == nil || *got.UserMaskDensity != density {
		t.Errorf("density not recovered: %#v", got)
	}
}

func TestLayerMaskRealTrailer(t *testing.T) {
	density := uint8(200)
	realFlags := MaskInvert
	realBackground := uint8(255)
	m := &LayerMask{
		DefaultColor:    255,
		Rect:            &Rectangle{Top: 1, Left: 1, Bottom: 5, Right: 5},
		Flags:           MaskApplied,
		UserMaskDensity: &density,
		RealFlags:       &realFlags,
		RealBackground:  &realBackground,
		RealRect:        &Rectangle{Top: 0, Left: 0, Bottom: 6, Right: 6},
	}

	for _, f := range []Format{FormatBE32, FormatLE64} {
		got := maskRoundTrip(t, m, f)
		if !got.Equal(m) {
			t.Errorf("%v: round trip changed the mask", f)
		}
	}
}

func TestUserMaskEqualIgnoresFlag(t *testing.T) {
	a := &UserMask{ColorSpace: ColorSpaceRGB, Components: [4]int32{65535, 0, 0, 0}, Opacity: 50, Flag: 128}
	b := &UserMask{ColorSpace: ColorSpaceRGB, Components: [4]int32{65535, 0, 0, 0}, Opacity: 50, Flag: 0}
	if !a.equal(b) {
		t.Errorf("flag byte participated in equality")
	}
	b.Opacity = 51
	if a.equal(b) {
		t.Errorf("opacity change not detected")
	}
}

func TestUserMaskLabComponentsSigned(t *testing.T) {
	m := &UserMask{ColorSpace: ColorSpaceLab, Components: [4]int32{5000, -300, 300, 0}, Opacity: 100, Flag: 128}
	data := encodeSection(t, FormatBE32, 4, m)
	got := decodeSection(t, FormatBE32, data, nil, 4)
	if len(got) != 1 {
		t.Fatalf("decoded %d structures, want 1", len(got))
	}
	if !m.equal(got[0]) {
		t.Errorf("Lab components changed across the round trip: %#v", got[0])
	}
}
