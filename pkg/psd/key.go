package psd

// Key is the 4-byte tag identity of a record in a tagged list. Keys
// are ASCII-like but treated as opaque; unrecognized keys are
// preserved as Unknown structures.
type Key string

// Layer and mask information keys.
const (
	KeyAlpha                 Key = "Alph"
	KeyAnimationEffects      Key = "anFX"
	KeyAnnotations           Key = "Anno"
	KeyArtboardData          Key = "artb"
	KeyArtboardData2         Key = "artd"
	KeyArtboardData3         Key = "abdd"
	KeyBlackAndWhite         Key = "blwh"
	KeyBlendClipping         Key = "clbl"
	KeyBlendInterior         Key = "infx"
	KeyBrightnessContrast    Key = "brit"
	KeyChannelBlendRestrict  Key = "brst"
	KeyChannelMixer          Key = "mixr"
	KeyColorBalance          Key = "blnc"
	KeyColorLookup           Key = "clrL"
	KeyCompositorInfo        Key = "cinf"
	KeyContentGenerator      Key = "CgEd"
	KeyCurves                Key = "curv"
	KeyEffectsLayer          Key = "lrFX"
	KeyExposure              Key = "expA"
	KeyFilterEffects         Key = "FXid"
	KeyFilterEffects2        Key = "FEid"
	KeyFilterMask            Key = "FMsk"
	KeyForeignEffectID       Key = "ffxi"
	KeyGradientFill          Key = "GdFl"
	KeyGradientMap           Key = "grdm"
	KeyHueSaturation         Key = "hue2"
	KeyInvert                Key = "nvrt"
	KeyKnockout              Key = "knko"
	KeyLayer                 Key = "Layr"
	KeyLayer16               Key = "Lr16"
	KeyLayer32               Key = "Lr32"
	KeyLayerID               Key = "lyid"
	KeyLayerMaskAsGlobalMask Key = "lmgm"
	KeyLayerNameSource       Key = "lnsr"
	KeyLayerVersion          Key = "lyvr"
	KeyLevels                Key = "levl"
	KeyLinkedLayer           Key = "lnkD"
	KeyLinkedLayer2          Key = "lnk2"
	KeyLinkedLayer3          Key = "lnk3"
	KeyLinkedLayerExternal   Key = "lnkE"
	KeyMetadataSetting       Key = "shmd"
	KeyNestedSectionDivider  Key = "lsdk"
	KeyObjectEffects         Key = "lfx2"
	KeyPattern               Key = "patt"
	KeyPatterns              Key = "Patt"
	KeyPatterns2             Key = "Pat2"
	KeyPatterns3             Key = "Pat3"
	KeyPatternData           Key = "shpa"
	KeyPatternFill           Key = "PtFl"
	KeyPhotoFilter           Key = "phfl"
	KeyPixelSourceData       Key = "PxSc"
	KeyPixelSourceDataCC15   Key = "PxSD"
	KeyPlacedLayer           Key = "plLd"
	KeyPlacedLayerCS3        Key = "PlLd"
	KeyPosterize             Key = "post"
	KeyProtectedSetting      Key = "lspf"
	KeyReferencePoint        Key = "fxrp"
	KeyMergedTransparency    Key = "Mtrn"
	KeyMergedTransparency2   Key = "MTrn"
	KeyMergedTransparency16  Key = "Mt16"
	KeyMergedTransparency32  Key = "Mt32"
	KeySectionDivider        Key = "lsct"
	KeySelectiveColor        Key = "selc"
	KeySheetColor            Key = "lclr"
	KeySmartObjectLayer      Key = "SoLd"
	KeySmartObjectLayerCC15  Key = "SoLE"
	KeySolidColorSheet       Key = "SoCo"
	KeyTextEngineData        Key = "Txt2"
	KeyThreshold             Key = "thrs"
	KeyTransparencyShapes    Key = "tsly"
	KeyTypeToolInfo          Key = "tySh"
	KeyTypeToolObject        Key = "TySh"
	KeyUnicodeLayerName      Key = "luni"
	KeyUnicodePathName       Key = "pths"
	KeyUserMask              Key = "LMsk"
	KeyUsingAlignedRendering Key = "sn2P"
	KeyVectorMaskAsGlobal    Key = "vmgm"
	KeyVectorMaskSetting     Key = "vmsk"
	KeyVectorMaskSettingCS6  Key = "vsms"
	KeyVectorOrigination     Key = "vogk"
	KeyVectorStrokeData      Key = "vstk"
	KeyVectorStrokeContent   Key = "vscg"
	KeyVibrance              Key = "vibA"
)

// Blend mode keys used in layer records and section dividers.
const (
	BlendPassThrough  Key = "pass"
	BlendNormal       Key = "norm"
	BlendDissolve     Key = "diss"
	BlendDarken       Key = "dark"
	BlendMultiply     Key = "mul "
	BlendColorBurn    Key = "idiv"
	BlendLinearBurn   Key = "lbrn"
	BlendDarkerColor  Key = "dkCl"
	BlendLighten      Key = "lite"
	BlendScreen       Key = "scrn"
	BlendColorDodge   Key = "div "
	BlendLinearDodge  Key = "lddg"
	BlendLighterColor Key = "lgCl"
	BlendOverlay      Key = "over"
	BlendSoftLight    Key = "sLit"
	BlendHardLight    Key = "hLit"
	BlendVividLight   Key = "vLit"
	BlendLinearLight  Key = "lLit"
	BlendPinLight     Key = "pLit"
	BlendHardMix      Key = "hMix"
	BlendDifference   Key = "diff"
	BlendExclusion    Key = "smud"
	BlendSubtract     Key = "fsub"
	BlendDivide       Key = "fdiv"
	BlendHue          Key = "hue "
	BlendSaturation   Key = "sat "
	BlendColor        Key = "colr"
	BlendLuminosity   Key = "lum "
)

// ChannelID identifies the plane a channel holds. Non-negative values
// are color plane indices; negative values are mask sentinels.
type ChannelID int16

const (
	ChannelTransparencyMask ChannelID = -1
	ChannelUserMask         ChannelID = -2
	ChannelRealUserMask     ChannelID = -3
)

// ClippingType selects how a layer clips against the layers below.
type ClippingType uint8

const (
	ClippingBase    ClippingType = 0
	ClippingNonBase ClippingType = 1
)

// LayerFlags is the layer record flag bitset.
type LayerFlags uint8

const (
	LayerTransparencyProtected LayerFlags = 1 << iota
	LayerVisible
	LayerObsolete
	LayerPhotoshop5
	LayerIrrelevant
)

// MaskFlags is the layer mask flag bitset.
type MaskFlags uint8

const (
	MaskRelative MaskFlags = 1 << iota
	MaskDisabled
	MaskInvert
	MaskRendered
	MaskApplied
)

// MaskParameterFlags selects which optional mask parameters follow the
// mask flag byte.
type MaskParameterFlags uint8

const (
	MaskParamUserDensity   MaskParameterFlags = 1 << iota // 1 byte
	MaskParamUserFeather                                  // 8-byte float
	MaskParamVectorDensity                                // 1 byte
	MaskParamVectorFeather                                // 8-byte float
)

// ColorSpace identifies the color space of mask and resource colors.
type ColorSpace int16

const (
	ColorSpaceDummy     ColorSpace = -1
	ColorSpaceRGB       ColorSpace = 0
	ColorSpaceHSB       ColorSpace = 1
	ColorSpaceCMYK      ColorSpace = 2
	ColorSpacePantone   ColorSpace = 3
	ColorSpaceFocoltone ColorSpace = 4
	ColorSpaceTrumatch  ColorSpace = 5
	ColorSpaceToyo      ColorSpace = 6
	ColorSpaceLab       ColorSpace = 7
	ColorSpaceGray      ColorSpace = 8
)
