package wire

// Arena is a bump allocator scoped to one request/response exchange.
// String payloads parsed off the wire are copied into it rather than
// aliasing the connection's read buffer, so they survive past the
// buffer refills that happen mid-parse; Reset invalidates every byte
// slice handed out since the last reset, matching the per-iteration
// arena lifecycle the dispatcher loop drives (spec §5: "Parsed items
// are owned by a per-exchange arena; they are invalidated when the
// arena is reset at the top of the dispatcher loop").
//
// Growth beyond the arena's initial capacity falls back to a normal
// heap allocation rather than failing — bounding memory use is the
// job of Limits, not the arena.
type Arena struct {
	buf []byte
	off int
}

// DefaultArenaSize is the initial backing capacity for a fresh Arena.
// A tuple's worth of small commands fits comfortably; a larger payload
// (file text) that does not fit in the remaining space is handed out by
// Alloc as a plain heap allocation instead.
const DefaultArenaSize = 4096

// NewArena allocates an Arena with the given initial capacity.
func NewArena(capacity int) *Arena {
	if capacity <= 0 {
		capacity = DefaultArenaSize
	}
	return &Arena{buf: make([]byte, capacity)}
}

// Alloc returns an n-byte slice carved out of the arena, or a fresh
// heap allocation if the arena has no room left.
func (a *Arena) Alloc(n int) []byte {
	if n < 0 {
		n = 0
	}
	if a.off+n > len(a.buf) {
		return make([]byte, n)
	}
	b := a.buf[a.off : a.off+n : a.off+n]
	a.off += n
	return b
}

// CopyBytes allocates len(b) bytes from the arena and copies b into it.
func (a *Arena) CopyBytes(b []byte) []byte {
	out := a.Alloc(len(b))
	copy(out, b)
	return out
}

// Reset rewinds the bump pointer, invalidating every slice handed out
// since the arena was created or last reset.
func (a *Arena) Reset() { a.off = 0 }
