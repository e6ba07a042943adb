package wire

import "fmt"

// OptRevision is the write/read value for tuple format letter 'r': a
// revision number that may be entirely absent when nested inside an
// optional group (format letter '['). Valid=false represents the
// "invalid/absent" sentinel described in spec §6; it is never itself
// serialized as a wire number, it is simply omitted.
type OptRevision struct {
	Valid bool
	Value uint64
}

// Rev builds a present revision value.
func Rev(v uint64) OptRevision { return OptRevision{Valid: true, Value: v} }

// NoRev builds the absent-revision sentinel, legal only inside an
// optional tuple group.
func NoRev() OptRevision { return OptRevision{} }

// ErrRequiredFieldOmitted is returned when a caller passes an absent
// value (NoRev, or a nil []byte or *string) for 'r', 's', 'c', or 'w'
// outside of an optional group ('['...']'); 'n' and 'l' have no absent
// value, and a missing or mistyped argument for them is a format error
// — spec §4.1 calls this a "programming error (assertion)" in the
// reference implementation; ratree reports it as an ordinary error
// instead of panicking.
var ErrRequiredFieldOmitted = fmt.Errorf("wire: required tuple field omitted")

// formatError reports a caller mistake: a format string with an
// unrecognized letter, unbalanced groups, or an argument whose Go type
// doesn't match its format letter. This is always a bug in the caller,
// never something a remote peer can trigger.
type formatError struct{ msg string }

func (e *formatError) Error() string { return "wire: tuple format error: " + e.msg }

func fmtErr(msg string) error { return &formatError{msg: msg} }

// WriteTuple writes a single list item shaped by fmt, consuming args in
// order. See the package doc and spec §3/§4.1 for the letter meanings:
//
//	n  uint64        always present
//	r  OptRevision   number, or omitted inside '[' ']'
//	s  []byte        string, nil (only inside '[' ']') to omit
//	c  *string       C-string (NUL appended), nil (only inside '[' ']') to omit
//	w  *string       word, nil (only inside '[' ']') to omit
//	l  []Item        nested list, passed through verbatim
//	[ ]              optional nested group: contents may individually omit
//	( )              required nested group: written unconditionally
func (c *Conn) WriteTuple(format string, args ...any) error {
	ai := 0
	items, pos, err := buildItems(format, 0, args, &ai, 0, 0)
	if err != nil {
		return err
	}
	if pos != len(format) {
		return fmtErr("unbalanced group in format string")
	}
	if ai != len(args) {
		return fmtErr("unused arguments for format string")
	}
	return c.WriteItem(Lst(items...))
}

func buildItems(format string, pos int, args []any, ai *int, optDepth int, closer byte) ([]Item, int, error) {
	var items []Item
	for pos < len(format) {
		ch := format[pos]
		if closer != 0 && ch == closer {
			return items, pos + 1, nil
		}
		switch ch {
		case '[':
			sub, np, err := buildItems(format, pos+1, args, ai, optDepth+1, ']')
			if err != nil {
				return nil, 0, err
			}
			items = append(items, Lst(sub...))
			pos = np
		case '(':
			sub, np, err := buildItems(format, pos+1, args, ai, optDepth, ')')
			if err != nil {
				return nil, 0, err
			}
			items = append(items, Lst(sub...))
			pos = np
		case 'n', 'r', 's', 'c', 'w', 'l':
			item, present, err := buildOneItem(ch, args, ai, optDepth)
			if err != nil {
				return nil, 0, err
			}
			if present {
				items = append(items, item)
			}
			pos++
		default:
			return nil, 0, fmtErr(fmt.Sprintf("unknown format letter %q", ch))
		}
	}
	if closer != 0 {
		return nil, 0, fmtErr("unterminated optional/required group")
	}
	return items, pos, nil
}

func nextArg(args []any, ai *int) (any, error) {
	if *ai >= len(args) {
		return nil, fmtErr("too few arguments for format string")
	}
	v := args[*ai]
	*ai++
	return v, nil
}

func buildOneItem(letter byte, args []any, ai *int, optDepth int) (Item, bool, error) {
	raw, err := nextArg(args, ai)
	if err != nil {
		return Item{}, false, err
	}
	switch letter {
	case 'n':
		v, ok := raw.(uint64)
		if !ok {
			return Item{}, false, fmtErr("'n' expects uint64")
		}
		return Num(v), true, nil
	case 'r':
		v, ok := raw.(OptRevision)
		if !ok {
			return Item{}, false, fmtErr("'r' expects OptRevision")
		}
		if !v.Valid {
			if optDepth == 0 {
				return Item{}, false, ErrRequiredFieldOmitted
			}
			return Item{}, false, nil
		}
		return Num(v.Value), true, nil
	case 's':
		v, ok := raw.([]byte)
		if !ok {
			return Item{}, false, fmtErr("'s' expects []byte")
		}
		if v == nil {
			if optDepth == 0 {
				return Item{}, false, ErrRequiredFieldOmitted
			}
			return Item{}, false, nil
		}
		return Str(v), true, nil
	case 'c':
		v, ok := raw.(*string)
		if !ok {
			return Item{}, false, fmtErr("'c' expects *string")
		}
		if v == nil {
			if optDepth == 0 {
				return Item{}, false, ErrRequiredFieldOmitted
			}
			return Item{}, false, nil
		}
		payload := make([]byte, len(*v)+1)
		copy(payload, *v)
		return Item{Kind: KindString, Bytes: payload}, true, nil
	case 'w':
		v, ok := raw.(*string)
		if !ok {
			return Item{}, false, fmtErr("'w' expects *string")
		}
		if v == nil {
			if optDepth == 0 {
				return Item{}, false, ErrRequiredFieldOmitted
			}
			return Item{}, false, nil
		}
		return Wd(*v), true, nil
	case 'l':
		v, ok := raw.([]Item)
		if !ok {
			return Item{}, false, fmtErr("'l' expects []Item")
		}
		return Lst(v...), true, nil
	default:
		return Item{}, false, fmtErr("unknown format letter")
	}
}

// ReadTuple reads one tuple (a list item) and parses it against format,
// filling the pointer destinations in order. See WriteTuple for the
// letter-to-Go-type mapping; on read, each letter takes a pointer to
// its value type (*uint64, *OptRevision, *[]byte, *string, *string,
// *[]Item respectively). arena backs any string bytes read.
func (c *Conn) ReadTuple(arena *Arena, format string, dest ...any) error {
	item, err := c.ReadItem(arena)
	if err != nil {
		return err
	}
	return ParseTuple(item, format, dest...)
}

// ParseTuple parses an already-read list item against format, useful
// when the tuple was obtained as part of a larger structure (e.g. the
// command word already peeled off, or a nested params list).
func ParseTuple(item Item, format string, dest ...any) error {
	if !item.IsList() {
		return malformed("expected list for tuple")
	}
	di := 0
	ii := 0
	pos, err := parseItems(item.List, &ii, format, 0, dest, &di, 0, 0)
	if err != nil {
		return err
	}
	if pos != len(format) {
		return fmtErr("unbalanced group in format string")
	}
	if di != len(dest) {
		return fmtErr("unused destinations for format string")
	}
	return nil
}

func parseItems(items []Item, ii *int, format string, pos int, dest []any, di *int, optDepth int, closer byte) (int, error) {
	for pos < len(format) {
		ch := format[pos]
		if closer != 0 && ch == closer {
			return pos + 1, nil
		}
		switch ch {
		case '[', '(':
			wantCloser := byte(')')
			nextOpt := optDepth
			if ch == '[' {
				wantCloser = ']'
				nextOpt++
			}
			if *ii >= len(items) {
				return 0, malformed("missing nested group")
			}
			if items[*ii].Kind != KindList {
				return 0, malformed("expected nested list")
			}
			sub := items[*ii].List
			*ii++
			subi := 0
			np, err := parseItems(sub, &subi, format, pos+1, dest, di, nextOpt, wantCloser)
			if err != nil {
				return 0, err
			}
			pos = np
		case 'n', 'r', 's', 'c', 'w', 'l':
			if err := parseOneItem(ch, items, ii, dest, di, optDepth); err != nil {
				return 0, err
			}
			pos++
		default:
			return 0, fmtErr(fmt.Sprintf("unknown format letter %q", ch))
		}
	}
	if closer != 0 {
		return 0, fmtErr("unterminated optional/required group")
	}
	return pos, nil
}

func parseOneItem(letter byte, items []Item, ii *int, dest []any, di *int, optDepth int) error {
	d, err := nextArg(dest, di)
	if err != nil {
		return err
	}

	omittable := optDepth > 0 && (letter == 'r' || letter == 's' || letter == 'c' || letter == 'w')
	if *ii >= len(items) {
		if omittable {
			return nil
		}
		return malformed("missing tuple field")
	}

	item := items[*ii]
	switch letter {
	case 'n':
		if item.Kind != KindNumber {
			return malformed("expected number")
		}
		*(d.(*uint64)) = item.Number
	case 'r':
		if item.Kind != KindNumber {
			return malformed("expected number for revision")
		}
		*(d.(*OptRevision)) = Rev(item.Number)
	case 's':
		if item.Kind != KindString {
			return malformed("expected string")
		}
		*(d.(*[]byte)) = item.Bytes
	case 'c':
		if item.Kind != KindString {
			return malformed("expected c-string")
		}
		b := item.Bytes
		if len(b) > 0 && b[len(b)-1] == 0 {
			b = b[:len(b)-1]
		}
		*(d.(*string)) = string(b)
	case 'w':
		if item.Kind != KindWord {
			return malformed("expected word")
		}
		*(d.(*string)) = item.Word
	case 'l':
		if item.Kind != KindList {
			return malformed("expected list")
		}
		*(d.(*[]Item)) = item.List
	}
	*ii++
	return nil
}
