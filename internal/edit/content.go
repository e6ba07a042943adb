package edit

import (
	"crypto/sha1"
	"fmt"
	"io"
)

// SpecialProp mirrors Subversion's svn:special property, which marks a
// symlink. Content.Validate accepts it only on KindSymlink content and
// rejects it on any other kind; a symlink without it is also accepted.
const SpecialProp = "svn:special"

// Content is the Node Content composite (spec §3): a reference to where
// the bytes came from, the property set, and kind-specific payload.
type Content struct {
	Kind Kind
	Ref  PegPath // or CurrentTxn/"" when the content is newly supplied, not copied

	Props map[string][]byte

	// Checksum is only meaningful when Kind == KindFile.
	Checksum    [sha1.Size]byte
	HasChecksum bool
	Stream      io.Reader // lazy finite byte source, present only when Kind == KindFile

	Target []byte // symlink destination bytes, present only when Kind == KindSymlink
}

// Validate enforces the kind/payload pairing spec §3 requires: a checksum
// or stream only for files, a target only for symlinks, and svn:special
// kept consistent with Kind.
func (c Content) Validate() error {
	if !c.Kind.valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedContent, c.Kind)
	}
	if c.Kind != KindFile && (c.HasChecksum || c.Stream != nil) {
		return fmt.Errorf("%w: checksum/stream set on non-file kind %q", ErrMalformedContent, c.Kind)
	}
	if c.Kind != KindSymlink && c.Target != nil {
		return fmt.Errorf("%w: target set on non-symlink kind %q", ErrMalformedContent, c.Kind)
	}
	if _, special := c.Props[SpecialProp]; special && c.Kind != KindSymlink {
		return fmt.Errorf("%w: svn:special set without symlink kind", ErrMalformedContent)
	}
	return nil
}

// Checksummed reads stream to EOF, computing its SHA-1 and returning a
// copy of c with Stream replaced by a re-readable buffer and Checksum
// filled in. Spec §6 fixes SHA-1 as the checksum algorithm.
func (c Content) Checksummed() (Content, error) {
	if c.Kind != KindFile || c.Stream == nil {
		return c, nil
	}
	h := sha1.New()
	buf, err := io.ReadAll(io.TeeReader(c.Stream, h))
	if err != nil {
		return Content{}, fmt.Errorf("%w: reading content stream: %v", ErrMalformedContent, err)
	}
	out := c
	out.Stream = newByteReader(buf)
	copy(out.Checksum[:], h.Sum(nil))
	out.HasChecksum = true
	return out, nil
}

func newByteReader(b []byte) io.Reader {
	return &byteReader{buf: b}
}

type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.off >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.off:])
	r.off += n
	return n, nil
}

func cloneProps(in map[string][]byte) map[string][]byte {
	if in == nil {
		return nil
	}
	out := make(map[string][]byte, len(in))
	for k, v := range in {
		cp := make([]byte, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}
