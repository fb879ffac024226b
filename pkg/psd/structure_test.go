package psd

import (
	"bytes"
	"errors"
	"testing"
)

// encodeSection packs structures into a tagged-list section.
func encodeSection(t *testing.T, f Format, align int, structures ...Structure) []byte {
	t.Helper()
	w := newWriter(f)
	if _, err := writeStructures(w, nil, align, structures...); err != nil {
		t.Fatalf("writeStructures: %v", err)
	}
	return w.bytes()
}

// decodeSection reads a tagged-list section back.
func decodeSection(t *testing.T, f Format, data []byte, opts *ReadOptions, align int) []Structure {
	t.Helper()
	r := newReader(data, f)
	structures, err := readStructures(r, len(data), opts, align)
	if err != nil {
		t.Fatalf("readStructures: %v", err)
	}
	return structures
}

func TestStructureRoundTrip(t *testing.T) {
	subtype := uint32(1)
	structures := []Structure{
		&Boolean{K: KeyBlendClipping, Value: true},
		&Integer{K: KeyLayerID, Value: -7},
		&Word{K: KeyLayerNameSource, Data: [4]byte{'l', 'a', 'y', 'r'}},
		&UnicodeString{K: KeyUnicodeLayerName, Value: "Grüne Ebene"},
		&SectionDivider{K: KeySectionDivider, Kind: 2, BlendMode: BlendMultiply, Subtype: &subtype},
		&SheetColor{K: KeySheetColor, Color: [4]uint16{1, 0, 0, 0}},
		&ReferencePoint{K: KeyReferencePoint, X: 1.5, Y: -2.25},
		&Exposure{K: KeyExposure, Version: 1, Exposure: 0.5, Offset: -0.1, Gamma: 1.2},
		&MetadataSettings{K: KeyMetadataSetting, Items: []MetadataSetting{
			{Signature: "8BIM", Key: "cust", CopyOnSheet: true, Data: []byte{1, 2, 3}},
		}},
		&TextEngineData{K: KeyTextEngineData, Data: []byte("engine data")},
		&PatternBlock{K: KeyPattern, Data: []byte{9, 9, 9, 9, 9}},
		&Empty{K: KeyAnnotations},
	}

	for _, f := range []Format{FormatBE32, FormatLE32, FormatBE64, FormatLE64} {
		for _, align := range []int{2, 4} {
			t.Run(f.String(), func(t *testing.T) {
				data := encodeSection(t, f, align, structures...)
				got := decodeSection(t, f, data, nil, align)
				if len(got) != len(structures) {
					t.Fatalf("decoded %d structures, want %d", len(got), len(structures))
				}
				for i, s := range structures {
					if !s.equal(got[i]) {
						t.Errorf("structure %d (%q) changed across the round trip", i, s.Key())
					}
				}
			})
		}
	}
}

func TestUnknownPreservedVerbatim(t *testing.T) {
	u := &Unknown{K: "AbCd", Format: FormatLE32, Data: []byte{1, 2, 3, 4, 5}}
	data := encodeSection(t, FormatLE32, 4, u)

	got := decodeSection(t, FormatLE32, data, nil, 4)
	if len(got) != 1 {
		t.Fatalf("decoded %d structures, want 1", len(got))
	}
	if !u.equal(got[0]) {
		t.Errorf("Unknown changed across the round trip: %#v", got[0])
	}

	// Re-encoding under the same format is byte-identical.
	data2 := encodeSection(t, FormatLE32, 4, got[0])
	if !bytes.Equal(data, data2) {
		t.Errorf("re-encoded bytes differ:\n% X\n% X", data, data2)
	}
}

func TestUnknownDroppedUnderForeignFormat(t *testing.T) {
	u := &Unknown{K: "AbCd", Format: FormatLE32, Data: []byte{1, 2, 3}}
	b := &Boolean{K: KeyKnockout, Value: true}

	data := encodeSection(t, FormatBE32, 4, u, b)
	got := decodeSection(t, FormatBE32, data, nil, 4)
	if len(got) != 1 {
		t.Fatalf("decoded %d structures, want 1 (opaque section dropped)", len(got))
	}
	if !b.equal(got[0]) {
		t.Errorf("surviving structure is %#v", got[0])
	}
}

func TestUnknownSkippedWithoutPreserve(t *testing.T) {
	u := &Unknown{K: "AbCd", Format: FormatBE32, Data: []byte{1, 2, 3}}
	b := &Boolean{K: KeyKnockout, Value: true}
	data := encodeSection(t, FormatBE32, 4, u, b)

	opts := &ReadOptions{PreserveUnknown: false}
	got := decodeSection(t, FormatBE32, data, opts, 4)
	if len(got) != 1 {
		t.Fatalf("decoded %d structures, want 1", len(got))
	}
	if !b.equal(got[0]) {
		t.Errorf("surviving structure is %#v", got[0])
	}
}

func TestRecordOverrun(t *testing.T) {
	// A record that claims 100 payload bytes with only 4 present.
	w := newWriter(FormatBE32)
	sig := FormatBE32.Signature()
	w.raw(sig[:])
	w.key("AbCd")
	w.u32(100)
	w.raw([]byte{1, 2, 3, 4})
	data := w.bytes()

	t.Run("strict", func(t *testing.T) {
		r := newReader(data, FormatBE32)
		_, err := readStructures(r, len(data), &ReadOptions{PreserveUnknown: true, Strict: true}, 4)
		if !errors.Is(err, ErrRecordOverrun) {
			t.Errorf("err = %v, want ErrRecordOverrun", err)
		}
	})

	t.Run("lenient", func(t *testing.T) {
		got := decodeSection(t, FormatBE32, data, nil, 4)
		if len(got) != 1 {
			t.Fatalf("decoded %d structures, want 1", len(got))
		}
		u, ok := got[0].(*Unknown)
		if !ok {
			t.Fatalf("decoded %#v, want *Unknown", got[0])
		}
		if !bytes.Equal(u.Data, []byte{1, 2, 3, 4}) {
			t.Errorf("clamped payload = % X, want the 4 available bytes", u.Data)
		}
	})
}

func TestStrictAcceptsUnpaddedFinalRecord(t *testing.T) {
	// A final record whose declared size ends flush with the section,
	// with no alignment padding after it, is valid input in both modes.
	w := newWriter(FormatBE32)
	sig := FormatBE32.Signature()
	w.raw(sig[:])
	w.key("AbCd")
	w.u32(5)
	w.raw([]byte{1, 2, 3, 4, 5})
	data := w.bytes()

	for _, strict := range []bool{true, false} {
		r := newReader(data, FormatBE32)
		got, err := readStructures(r, len(data), &ReadOptions{PreserveUnknown: true, Strict: strict}, 4)
		if err != nil {
			t.Fatalf("strict=%v: readStructures: %v", strict, err)
		}
		if len(got) != 1 {
			t.Fatalf("strict=%v: decoded %d structures, want 1", strict, len(got))
		}
		u, ok := got[0].(*Unknown)
		if !ok || !bytes.Equal(u.Data, []byte{1, 2, 3, 4, 5}) {
			t.Errorf("strict=%v: decoded %#v", strict, got[0])
		}
	}
}

func TestHeaderCrossingSectionBoundary(t *testing.T) {
	// Trailing bytes that open with the signature but cannot hold a
	// full record header end the walk; the size field must never be
	// read from past the section end.
	b := &Boolean{K: KeyKnockout, Value: true}
	section := encodeSection(t, FormatBE32, 4, b)
	sig := FormatBE32.Signature()
	section = append(section, sig[:]...)
	section = append(section, 'A', 'b', 'C', 'd')
	end := len(section)

	// Bytes past the section belong to the enclosing blob; a size
	// field read across the boundary would see 0xAAAAAAAA.
	data := append(section, bytes.Repeat([]byte{0xAA}, 8)...)

	for _, strict := range []bool{true, false} {
		r := newReader(data, FormatBE32)
		got, err := readStructures(r, end, &ReadOptions{PreserveUnknown: true, Strict: strict}, 4)
		if err != nil {
			t.Fatalf("strict=%v: readStructures: %v", strict, err)
		}
		if len(got) != 1 {
			t.Fatalf("strict=%v: decoded %d structures, want 1", strict, len(got))
		}
		if !b.equal(got[0]) {
			t.Errorf("strict=%v: decoded %#v", strict, got[0])
		}
	}
}

func TestPaddingCountsFromPayloadStart(t *testing.T) {
	// A 5-byte opaque payload under align 4 must occupy 8 bytes after
	// the size field, and the next record must still decode.
	u := &Unknown{K: "AbCd", Format: FormatBE32, Data: []byte{1, 2, 3, 4, 5}}
	b := &Boolean{K: KeyKnockout, Value: true}
	data := encodeSection(t, FormatBE32, 4, u, b)

	if want := (4 + 4 + 4 + 8) + (4 + 4 + 4 + 4); len(data) != want {
		t.Fatalf("section is %d bytes, want %d", len(data), want)
	}

	got := decodeSection(t, FormatBE32, data, nil, 4)
	if len(got) != 2 {
		t.Fatalf("decoded %d structures, want 2", len(got))
	}
	if !u.equal(got[0]) || !b.equal(got[1]) {
		t.Errorf("round trip changed the structures")
	}
}

func TestEmptyRecordRoundTrip(t *testing.T) {
	e := &Empty{K: KeyMergedTransparency}
	for _, f := range []Format{FormatBE32, FormatBE64} {
		data := encodeSection(t, f, 4, e)
		got := decodeSection(t, f, data, nil, 4)
		if len(got) != 1 {
			t.Fatalf("decoded %d structures, want 1", len(got))
		}
		if !e.equal(got[0]) {
			t.Errorf("%v: Empty changed across the round trip: %#v", f, got[0])
		}
	}
}
