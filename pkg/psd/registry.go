package psd

// decoderFunc decodes one record payload. The reader is positioned at
// the payload start; the walk reseeks past the declared size
// afterwards regardless of how much the decoder consumed.
type decoderFunc func(r *reader, k Key, size int, opts *ReadOptions) (Structure, error)

// registry maps keys to their typed decoders. Built once, read-only
// at run time; every unmapped key becomes an Unknown structure.
var registry map[Key]decoderFunc

func init() {
	registry = map[Key]decoderFunc{
		// booleans
		KeyBlendClipping:         decodeBoolean,
		KeyBlendInterior:         decodeBoolean,
		KeyKnockout:              decodeBoolean,
		KeyTransparencyShapes:    decodeBoolean,
		KeyLayerMaskAsGlobalMask: decodeBoolean,
		KeyVectorMaskAsGlobal:    decodeBoolean,
		KeyUsingAlignedRendering: decodeBoolean,

		// integers
		KeyProtectedSetting: decodeInteger,
		KeyLayerID:          decodeInteger,
		KeyLayerVersion:     decodeInteger,

		// 4 raw bytes
		KeyLayerNameSource: decodeWord,

		// unicode strings
		KeyUnicodeLayerName: decodeUnicodeString,
		KeyUnicodePathName:  decodeUnicodeString,

		// fixed-layout leaves
		KeySectionDivider:       decodeSectionDivider,
		KeyNestedSectionDivider: decodeSectionDivider,
		KeySheetColor:           decodeSheetColor,
		KeyReferencePoint:       decodeReferencePoint,
		KeyExposure:             decodeExposure,
		KeyMetadataSetting:      decodeMetadataSettings,

		// opaque typed blobs
		KeyTextEngineData: decodeTextEngineData,
		KeyPattern:        decodePatternBlock,
		KeyPatterns:       decodePatternBlock,
		KeyPatterns2:      decodePatternBlock,
		KeyPatterns3:      decodePatternBlock,

		// composite structures
		KeyLayer:      decodeLayers,
		KeyLayer16:    decodeLayers,
		KeyLayer32:    decodeLayers,
		KeyUserMask:   decodeUserMask,
		KeyFilterMask: decodeFilterMask,
	}
}
