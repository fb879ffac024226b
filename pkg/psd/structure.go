package psd

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Structure is one record of a tagged list: a leaf value, a layer
// list, a mask table, or an opaque Unknown. The set of kinds is closed
// except for the deliberate Unknown escape hatch.
type Structure interface {
	// Key returns the 4-byte tag identity of the record.
	Key() Key

	// payload encodes the record payload, without signature, key or
	// size field, for the writer's format.
	payload(w *writer, opts *WriteOptions) error

	// equal reports structural equality with another record.
	equal(other Structure) bool
}

// ReadOptions configures a decode pass.
type ReadOptions struct {
	// PreserveUnknown keeps unrecognized keys as Unknown structures
	// instead of skipping them.
	PreserveUnknown bool

	// Strict makes a record whose declared size extends past the
	// enclosing section a decode error. The default trusts the size
	// field and stops at the section boundary, which is what Photoshop
	// itself tolerates.
	Strict bool

	Logger hclog.Logger
}

func (o *ReadOptions) logger() hclog.Logger {
	if o == nil || o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

func (o *ReadOptions) preserveUnknown() bool {
	return o == nil || o.PreserveUnknown
}

func (o *ReadOptions) strict() bool {
	return o != nil && o.Strict
}

// WriteOptions configures an encode pass.
type WriteOptions struct {
	// Compression overrides the stored per-channel compression when
	// not CompressionUnknown.
	Compression CompressionType

	Logger hclog.Logger
}

func (o *WriteOptions) logger() hclog.Logger {
	if o == nil || o.Logger == nil {
		return hclog.NewNullLogger()
	}
	return o.Logger
}

func (o *WriteOptions) compression() CompressionType {
	if o == nil {
		return CompressionUnknown
	}
	return o.Compression
}

// Unknown preserves a record with an unrecognized key verbatim,
// together with the format it was read under. It re-encodes
// byte-identically under that format and is dropped with a diagnostic
// under any other.
type Unknown struct {
	K      Key
	Format Format
	Data   []byte
}

func (u *Unknown) Key() Key { return u.K }

func (u *Unknown) payload(w *writer, opts *WriteOptions) error {
	if w.f != u.Format {
		return fmt.Errorf("%w: %q read under %s, writing %s", ErrForeignFormat, u.K, u.Format, w.f)
	}
	w.raw(u.Data)
	return nil
}

func (u *Unknown) equal(other Structure) bool {
	o, ok := other.(*Unknown)
	return ok && u.K == o.K && u.Format == o.Format && bytes.Equal(u.Data, o.Data)
}

// Empty is a zero-size marker record.
type Empty struct {
	K Key
}

func (e *Empty) Key() Key { return e.K }

func (e *Empty) payload(w *writer, opts *WriteOptions) error { return nil }

func (e *Empty) equal(other Structure) bool {
	o, ok := other.(*Empty)
	return ok && e.K == o.K
}

// readStructures walks records from the reader's position up to end,
// dispatching registered keys and preserving or skipping the rest.
// The walk stops at end or at the first non-signature bytes.
func readStructures(r *reader, end int, opts *ReadOptions, align int) ([]Structure, error) {
	sig := r.f.Signature()
	log := opts.logger()
	var structures []Structure

	for {
		hdr := r.peek(8)
		if hdr == nil || !bytes.Equal(hdr[:4], sig[:]) {
			break
		}
		var kb [4]byte
		copy(kb[:], hdr[4:8])
		key := r.f.DecodeKey(kb)
		// The full header (signature, key, size field) must fit the
		// section; a signature riding the boundary is trailing noise.
		if r.pos()+8+r.f.SizeLen(key) > end {
			break
		}
		r.skip(8)
		size := r.size(key)
		start := r.pos()
		if err := r.Err(); err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, fmt.Errorf("%w: negative size for %q", ErrTruncated, key)
		}

		avail := int(size)
		if start+avail > end {
			// Only the declared size counts against the section; a
			// final record may legally end flush with it, unpadded.
			if opts.strict() {
				return nil, fmt.Errorf("%w: %q claims %d bytes, %d remain", ErrRecordOverrun, key, size, end-start)
			}
			log.Warn("record overruns section, clamping", "key", string(key), "size", size, "remaining", end-start)
			avail = end - start
		}

		// Padding counts from the payload start, not the blob start.
		padded := int(size)
		if align > 1 {
			padded += (align - padded%align) % align
		}
		target := start + padded
		if target > end {
			target = end
		}

		switch {
		case size == 0:
			structures = append(structures, &Empty{K: key})
		default:
			if decode, ok := registry[key]; ok {
				s, err := decode(r, key, avail, opts)
				if err != nil {
					return nil, fmt.Errorf("decoding %q: %w", key, err)
				}
				structures = append(structures, s)
			} else if opts.preserveUnknown() {
				structures = append(structures, &Unknown{
					K:      key,
					Format: r.f,
					Data:   append([]byte(nil), r.data[start:start+avail]...),
				})
			} else {
				log.Warn("skipping section", "key", string(key), "size", size)
			}
		}

		// Reseek unconditionally so a short or long decoder cannot
		// desynchronize the walk.
		r.seek(target)
		if err := r.Err(); err != nil {
			return nil, err
		}
	}
	return structures, nil
}

// writeStructures emits records for each structure: signature, key,
// size field, payload, zero padding to align. The payload is built
// into a buffer first and emitted with its known length, the
// non-seekable form of the reserve-then-patch size discipline.
// Returns the number of bytes written.
func writeStructures(w *writer, opts *WriteOptions, align int, structures ...Structure) (int, error) {
	sig := w.f.Signature()
	log := opts.logger()
	start := w.len()

	for _, s := range structures {
		if u, ok := s.(*Unknown); ok && u.Format != w.f {
			log.Warn("dropping opaque structure read under a different format",
				"key", string(u.K), "read_format", u.Format.String(), "write_format", w.f.String())
			continue
		}
		pw := newWriter(w.f)
		if err := s.payload(pw, opts); err != nil {
			return 0, err
		}
		w.raw(sig[:])
		w.key(s.Key())
		w.size(int64(pw.len()), s.Key())
		w.raw(pw.bytes())
		if align > 1 {
			for i := (align - pw.len()%align) % align; i > 0; i-- {
				w.u8(0)
			}
		}
	}
	return w.len() - start, nil
}
