package psd

import (
	"bytes"
	"fmt"
	"unicode/utf16"
)

// Boolean is a 1-byte flag record (3 padding bytes follow on wire).
type Boolean struct {
	K     Key
	Value bool
}

func decodeBoolean(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	v := r.u8()
	return &Boolean{K: k, Value: v != 0}, r.Err()
}

func (b *Boolean) Key() Key { return b.K }

func (b *Boolean) payload(w *writer, opts *WriteOptions) error {
	if b.Value {
		w.u8(1)
	} else {
		w.u8(0)
	}
	w.raw([]byte{0, 0, 0})
	return nil
}

func (b *Boolean) equal(other Structure) bool {
	o, ok := other.(*Boolean)
	return ok && *b == *o
}

// Integer is a 32-bit integer record.
type Integer struct {
	K     Key
	Value int32
}

func decodeInteger(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	v := r.i32()
	return &Integer{K: k, Value: v}, r.Err()
}

func (n *Integer) Key() Key { return n.K }

func (n *Integer) payload(w *writer, opts *WriteOptions) error {
	w.i32(n.Value)
	return nil
}

func (n *Integer) equal(other Structure) bool {
	o, ok := other.(*Integer)
	return ok && *n == *o
}

// Word holds 4 raw payload bytes, preserved verbatim.
type Word struct {
	K    Key
	Data [4]byte
}

func decodeWord(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	b := r.take(4)
	if err := r.Err(); err != nil {
		return nil, err
	}
	s := &Word{K: k}
	copy(s.Data[:], b)
	return s, nil
}

func (s *Word) Key() Key { return s.K }

func (s *Word) payload(w *writer, opts *WriteOptions) error {
	w.raw(s.Data[:])
	return nil
}

func (s *Word) equal(other Structure) bool {
	o, ok := other.(*Word)
	return ok && *s == *o
}

// UnicodeString is a count-prefixed UTF-16 string record in the
// format's byte order.
type UnicodeString struct {
	K     Key
	Value string
}

func decodeUnicodeString(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	v := readUnicode(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return &UnicodeString{K: k, Value: v}, nil
}

func (s *UnicodeString) Key() Key { return s.K }

func (s *UnicodeString) payload(w *writer, opts *WriteOptions) error {
	writeUnicode(w, s.Value)
	return nil
}

// readUnicode reads a count-prefixed UTF-16 string in the reader's
// byte order.
func readUnicode(r *reader) string {
	n := int(r.u32())
	units := make([]uint16, 0, n)
	for i := 0; i < n && r.Err() == nil; i++ {
		units = append(units, r.u16())
	}
	return string(utf16.Decode(units))
}

func writeUnicode(w *writer, s string) {
	units := utf16.Encode([]rune(s))
	w.u32(uint32(len(units)))
	for _, u := range units {
		w.u16(u)
	}
}

func (s *UnicodeString) equal(other Structure) bool {
	o, ok := other.(*UnicodeString)
	return ok && *s == *o
}

// SectionDivider marks group boundaries in the layer stack. Blend
// mode and subtype are optional trailing fields selected by the
// record size.
type SectionDivider struct {
	K         Key
	Kind      uint32
	BlendMode Key     // empty when absent
	Subtype   *uint32 // nil when absent
}

func decodeSectionDivider(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	s := &SectionDivider{K: k, Kind: r.u32()}
	if size >= 12 {
		r.skip(4) // signature precedes the blend key
		s.BlendMode = r.key()
	}
	if size >= 16 {
		v := r.u32()
		s.Subtype = &v
	}
	return s, r.Err()
}

func (s *SectionDivider) Key() Key { return s.K }

func (s *SectionDivider) payload(w *writer, opts *WriteOptions) error {
	w.u32(s.Kind)
	if s.BlendMode != "" {
		sig := w.f.Signature()
		w.raw(sig[:])
		w.key(s.BlendMode)
	}
	if s.Subtype != nil {
		if s.BlendMode == "" {
			return fmt.Errorf("%w: section divider subtype requires a blend mode", ErrForeignFormat)
		}
		w.u32(*s.Subtype)
	}
	return nil
}

func (s *SectionDivider) equal(other Structure) bool {
	o, ok := other.(*SectionDivider)
	if !ok || s.K != o.K || s.Kind != o.Kind || s.BlendMode != o.BlendMode {
		return false
	}
	if (s.Subtype == nil) != (o.Subtype == nil) {
		return false
	}
	return s.Subtype == nil || *s.Subtype == *o.Subtype
}

// SheetColor is the sheet color setting, 4 16-bit components.
type SheetColor struct {
	K     Key
	Color [4]uint16
}

func decodeSheetColor(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	s := &SheetColor{K: k}
	for i := range s.Color {
		s.Color[i] = r.u16()
	}
	return s, r.Err()
}

func (s *SheetColor) Key() Key { return s.K }

func (s *SheetColor) payload(w *writer, opts *WriteOptions) error {
	for _, c := range s.Color {
		w.u16(c)
	}
	return nil
}

func (s *SheetColor) equal(other Structure) bool {
	o, ok := other.(*SheetColor)
	return ok && *s == *o
}

// ReferencePoint is a pair of float64 document coordinates.
type ReferencePoint struct {
	K    Key
	X, Y float64
}

func decodeReferencePoint(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	s := &ReferencePoint{K: k, X: r.f64(), Y: r.f64()}
	return s, r.Err()
}

func (s *ReferencePoint) Key() Key { return s.K }

func (s *ReferencePoint) payload(w *writer, opts *WriteOptions) error {
	w.f64(s.X)
	w.f64(s.Y)
	return nil
}

func (s *ReferencePoint) equal(other Structure) bool {
	o, ok := other.(*ReferencePoint)
	return ok && *s == *o
}

// Exposure is the exposure adjustment triple.
type Exposure struct {
	K        Key
	Version  uint16
	Exposure float32
	Offset   float32
	Gamma    float32
}

func decodeExposure(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	s := &Exposure{K: k, Version: r.u16(), Exposure: r.f32(), Offset: r.f32(), Gamma: r.f32()}
	return s, r.Err()
}

func (s *Exposure) Key() Key { return s.K }

func (s *Exposure) payload(w *writer, opts *WriteOptions) error {
	w.u16(s.Version)
	w.f32(s.Exposure)
	w.f32(s.Offset)
	w.f32(s.Gamma)
	return nil
}

func (s *Exposure) equal(other Structure) bool {
	o, ok := other.(*Exposure)
	return ok && *s == *o
}

// MetadataSetting is one item of a metadata settings list.
type MetadataSetting struct {
	Signature   Key
	Key         Key
	CopyOnSheet bool
	Data        []byte
}

// MetadataSettings is the 'shmd' metadata settings list.
type MetadataSettings struct {
	K     Key
	Items []MetadataSetting
}

func decodeMetadataSettings(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	count := int(r.u32())
	s := &MetadataSettings{K: k}
	for i := 0; i < count && r.Err() == nil; i++ {
		item := MetadataSetting{Signature: r.key(), Key: r.key()}
		item.CopyOnSheet = r.u8() != 0
		r.skip(3)
		item.Data = r.bytes(int(r.u32()))
		s.Items = append(s.Items, item)
	}
	return s, r.Err()
}

func (s *MetadataSettings) Key() Key { return s.K }

func (s *MetadataSettings) payload(w *writer, opts *WriteOptions) error {
	w.u32(uint32(len(s.Items)))
	for _, item := range s.Items {
		w.key(item.Signature)
		w.key(item.Key)
		if item.CopyOnSheet {
			w.u8(1)
		} else {
			w.u8(0)
		}
		w.raw([]byte{0, 0, 0})
		w.u32(uint32(len(item.Data)))
		w.raw(item.Data)
	}
	return nil
}

func (s *MetadataSettings) equal(other Structure) bool {
	o, ok := other.(*MetadataSettings)
	if !ok || s.K != o.K || len(s.Items) != len(o.Items) {
		return false
	}
	for i, item := range s.Items {
		oi := o.Items[i]
		if item.Signature != oi.Signature || item.Key != oi.Key ||
			item.CopyOnSheet != oi.CopyOnSheet || !bytes.Equal(item.Data, oi.Data) {
			return false
		}
	}
	return true
}

// TextEngineData is the 'Txt2' text engine blob, preserved opaquely.
type TextEngineData struct {
	K    Key
	Data []byte
}

func decodeTextEngineData(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	s := &TextEngineData{K: k, Data: r.bytes(size)}
	return s, r.Err()
}

func (s *TextEngineData) Key() Key { return s.K }

func (s *TextEngineData) payload(w *writer, opts *WriteOptions) error {
	w.raw(s.Data)
	return nil
}

func (s *TextEngineData) equal(other Structure) bool {
	o, ok := other.(*TextEngineData)
	return ok && s.K == o.K && bytes.Equal(s.Data, o.Data)
}

// PatternBlock is a pattern data block, preserved but not interpreted.
type PatternBlock struct {
	K    Key
	Data []byte
}

func decodePatternBlock(r *reader, k Key, size int, opts *ReadOptions) (Structure, error) {
	s := &PatternBlock{K: k, Data: r.bytes(size)}
	return s, r.Err()
}

func (s *PatternBlock) Key() Key { return s.K }

func (s *PatternBlock) payload(w *writer, opts *WriteOptions) error {
	w.raw(s.Data)
	return nil
}

func (s *PatternBlock) equal(other Structure) bool {
	o, ok := other.(*PatternBlock)
	return ok && s.K == o.K && bytes.Equal(s.Data, o.Data)
}
