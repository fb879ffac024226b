package psd

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func testLogger(t *testing.T) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  t.Name(),
		Level: hclog.Trace,
	})
}

// makeChannel builds a channel with a deterministic sample pattern.
func makeChannel(id ChannelID, d DType, rows, cols int) *Channel {
	p := NewPlane(d, rows, cols)
	fillPlane(p)
	return &Channel{ID: id, Compression: CompressionRaw, Data: p}
}

// makeSourceData builds a two-layer tree covering channels, masks,
// blending ranges and nested info sections.
func makeSourceData(k Key) *ImageSourceData {
	var d DType
	switch k {
	case KeyLayer16:
		d = DTypeUint16
	case KeyLayer32:
		d = DTypeFloat32
	default:
		d = DTypeUint8
	}

	background := &Layer{
		Name: "background",
		Rect: Rectangle{Top: 0, Left: 0, Bottom: 8, Right: 5},
		Channels: []*Channel{
			makeChannel(0, d, 8, 5),
			makeChannel(1, d, 8, 5),
			makeChannel(2, d, 8, 5),
			makeChannel(ChannelTransparencyMask, d, 8, 5),
		},
		BlendMode:      BlendNormal,
		Opacity:        255,
		Flags:          LayerVisible,
		BlendingRanges: []int32{65535, 65535, 65535, 65535},
		Info: []Structure{
			&UnicodeString{K: KeyUnicodeLayerName, Value: "background"},
			&Integer{K: KeyLayerID, Value: 1},
			&Boolean{K: KeyBlendClipping, Value: true},
			&SheetColor{K: KeySheetColor, Color: [4]uint16{3, 0, 0, 0}},
		},
	}

	masked := &Layer{
		Name: "masked",
		Rect: Rectangle{Top: 2, Left: 3, Bottom: 6, Right: 9},
		Channels: []*Channel{
			makeChannel(0, d, 4, 6),
			makeChannel(ChannelUserMask, d, 3, 3),
		},
		Mask: &LayerMask{
			DefaultColor: 255,
			Rect:         &Rectangle{Top: 1, Left: 1, Bottom: 4, Right: 4},
			Flags:        MaskRelative,
		},
		BlendMode: BlendMultiply,
		Opacity:   128,
		Clipping:  ClippingNonBase,
		Info: []Structure{
			&UnicodeString{K: KeyUnicodeLayerName, Value: "masked"},
			&Integer{K: KeyLayerID, Value: 2},
			&SectionDivider{K: KeySectionDivider, Kind: 0},
		},
	}

	return &ImageSourceData{
		Name: "layered",
		Layers: &Layers{
			K:               k,
			Layers:          []*Layer{background, masked},
			HasTransparency: true,
		},
		UserMask: &UserMask{
			ColorSpace: ColorSpaceRGB,
			Components: [4]int32{65535, 0, 0, 0},
			Opacity:    50,
			Flag:       128,
		},
		Info: []Structure{
			&PatternBlock{K: KeyPattern, Data: []byte{1, 2, 3, 4, 5, 6, 7}},
			&Boolean{K: KeyTransparencyShapes, Value: true},
		},
	}
}

func TestImageSourceDataRoundTrip(t *testing.T) {
	logger := testLogger(t)
	formats := []Format{FormatBE32, FormatLE32, FormatBE64, FormatLE64}
	kinds := []CompressionType{CompressionRaw, CompressionRLE, CompressionZip, CompressionZipPredicted}

	for _, k := range []Key{KeyLayer, KeyLayer16, KeyLayer32} {
		for _, f := range formats {
			for _, kind := range kinds {
				t.Run(string(k)+"/"+f.String()+"/"+kind.String(), func(t *testing.T) {
					isd := makeSourceData(k)

					blob, err := isd.Pack(f, &WriteOptions{Compression: kind, Logger: logger})
					if err != nil {
						t.Fatalf("Pack: %v", err)
					}

					got, err := UnpackImageSourceData(blob, &ReadOptions{PreserveUnknown: true, Logger: logger})
					if err != nil {
						t.Fatalf("UnpackImageSourceData: %v", err)
					}
					if got.Format != f {
						t.Errorf("detected format %v, want %v", got.Format, f)
					}
					if !got.Equal(isd) {
						t.Errorf("round trip changed the tree")
					}
					if got.Layers.DType() != isd.Layers.DType() {
						t.Errorf("dtype %v, want %v", got.Layers.DType(), isd.Layers.DType())
					}
					for _, la := range got.Layers.Layers {
						for _, ch := range la.Channels {
							if ch.Compression != kind {
								t.Errorf("channel %d decoded with %v, want %v", ch.ID, ch.Compression, kind)
							}
						}
					}
				})
			}
		}
	}
}

func TestSingleLayerScenario(t *testing.T) {
	p := NewPlane(DTypeUint8, 10, 10)
	p.Fill(255)
	isd := &ImageSourceData{
		Layers: &Layers{
			K: KeyLayer,
			Layers: []*Layer{{
				Name:      "flat",
				Rect:      Rectangle{Top: 0, Left: 0, Bottom: 10, Right: 10},
				Channels:  []*Channel{{ID: 0, Compression: CompressionRaw, Data: p}},
				BlendMode: BlendNormal,
				Opacity:   255,
			}},
		},
		UserMask: &UserMask{ColorSpace: ColorSpaceDummy, Flag: 128},
	}

	blob, err := isd.Pack(FormatBE32, nil)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	// The raw channel payload is the 100 samples verbatim.
	if !bytes.Contains(blob, bytes.Repeat([]byte{255}, 100)) {
		t.Errorf("raw samples not found in the blob")
	}

	got, err := UnpackImageSourceData(blob, nil)
	if err != nil {
		t.Fatalf("UnpackImageSourceData: %v", err)
	}
	if !got.Equal(isd) {
		t.Fatalf("round trip changed the tree")
	}

	got.Layers.Layers[0].Channels[0].Data.SetUint(5, 5, 0)
	if got.Equal(isd) {
		t.Errorf("changed sample not detected")
	}
}

func TestImageSourceDataEqualSemantics(t *testing.T) {
	a := makeSourceData(KeyLayer)
	b := makeSourceData(KeyLayer)

	if !a.Equal(b) {
		t.Fatalf("identical trees compare unequal")
	}

	// Advisory fields do not participate.
	b.Name = "renamed"
	b.Layers.Layers[0].Name = "renamed layer"
	b.Layers.Layers[0].Channels[0].Compression = CompressionZip
	b.UserMask.Flag = 0
	if !a.Equal(b) {
		t.Errorf("advisory fields participated in equality")
	}

	// A single changed sample does.
	b.Layers.Layers[0].Channels[0].Data.SetUint(3, 2, 42)
	if a.Equal(b) {
		t.Errorf("changed sample not detected")
	}
}

func TestImageSourceDataBadSignature(t *testing.T) {
	if _, err := UnpackImageSourceData([]byte("not a photoshop blob"), nil); err == nil {
		t.Errorf("junk accepted")
	}
}

func TestImageSourceDataEmptyBody(t *testing.T) {
	// A blob holding only the header decodes to empty defaults.
	got, err := UnpackImageSourceData([]byte(imageSourceDataSignature), &ReadOptions{Logger: testLogger(t)})
	if err != nil {
		t.Fatalf("UnpackImageSourceData: %v", err)
	}
	if got.Layers == nil || len(got.Layers.Layers) != 0 {
		t.Errorf("Layers = %#v, want an empty list", got.Layers)
	}
	if got.UserMask == nil {
		t.Errorf("UserMask missing")
	}
}

func TestImageSourceDataEmptyLayerRect(t *testing.T) {
	logger := testLogger(t)
	isd := &ImageSourceData{
		Layers: &Layers{
			K: KeyLayer,
			Layers: []*Layer{{
				Name:      "degenerate",
				Rect:      Rectangle{},
				Channels:  []*Channel{{ID: 0, Compression: CompressionRLE, Data: NewPlane(DTypeUint8, 0, 0)}},
				BlendMode: BlendNormal,
				Opacity:   255,
			}},
		},
		UserMask: &UserMask{ColorSpace: ColorSpaceDummy, Flag: 128},
	}

	blob, err := isd.Pack(FormatBE32, &WriteOptions{Logger: logger})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	got, err := UnpackImageSourceData(blob, &ReadOptions{Logger: logger})
	if err != nil {
		t.Fatalf("UnpackImageSourceData: %v", err)
	}
	if !got.Equal(isd) {
		t.Errorf("round trip changed the tree")
	}
}

func TestImageSourceDataForeignUnknownDropped(t *testing.T) {
	isd := makeSourceData(KeyLayer)
	isd.Info = append(isd.Info, &Unknown{K: "AbCd", Format: FormatLE32, Data: []byte{1, 2, 3, 4}})

	blob, err := isd.Pack(FormatBE32, &WriteOptions{Logger: testLogger(t)})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	got, err := UnpackImageSourceData(blob, nil)
	if err != nil {
		t.Fatalf("UnpackImageSourceData: %v", err)
	}
	for _, s := range got.Info {
		if s.Key() == "AbCd" {
			t.Errorf("opaque foreign-format section survived the re-encode")
		}
	}
}

func TestLayersShape(t *testing.T) {
	ls := makeSourceData(KeyLayer).Layers
	rows, cols := ls.Shape()
	if rows != 8 || cols != 9 {
		t.Errorf("Shape() = %dx%d, want 8x9", rows, cols)
	}
}

func TestTiffTagTuple(t *testing.T) {
	isd := makeSourceData(KeyLayer)
	tag, typ, count, value, writeonce, err := isd.TiffTag(FormatBE32, nil)
	if err != nil {
		t.Fatalf("TiffTag: %v", err)
	}
	if tag != TagImageSourceData || typ != 7 || !writeonce {
		t.Errorf("tag tuple = (%d, %d, %v)", tag, typ, writeonce)
	}
	if count != len(value) || count == 0 {
		t.Errorf("count %d does not match %d value bytes", count, len(value))
	}
}
