package psd

import "errors"

var (
	// Format errors 🏷️
	ErrInvalidSignature = errors.New("❌ invalid ImageSourceData signature")
	ErrUnknownFormat    = errors.New("❌ unrecognized PSD format signature")

	// Decode errors 📂
	ErrTruncated          = errors.New("❌ truncated record")
	ErrInvalidCompression = errors.New("❌ unknown compression type")
	ErrRecordOverrun      = errors.New("❌ record size exceeds enclosing section")
	ErrInvalidResource    = errors.New("❌ malformed image resource block")

	// Encode errors 📦
	ErrForeignFormat    = errors.New("❌ cannot re-encode opaque structure under a different format")
	ErrUnsupportedDType = errors.New("❌ unsupported channel data type")
)
