package wire

import (
	"bytes"
	"strings"
	"testing"
)

func writeTuple(t *testing.T, format string, args ...any) string {
	t.Helper()
	var buf bytes.Buffer
	c := NewConn(strings.NewReader(""), &buf, DefaultLimits())
	if err := c.WriteTuple(format, args...); err != nil {
		t.Fatalf("WriteTuple: %v", err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return buf.String()
}

func readTuple(t *testing.T, input, format string, dest ...any) {
	t.Helper()
	var out bytes.Buffer
	c := NewConn(strings.NewReader(input), &out, DefaultLimits())
	arena := NewArena(DefaultArenaSize)
	if err := c.ReadTuple(arena, format, dest...); err != nil {
		t.Fatalf("ReadTuple: %v", err)
	}
}

func TestTupleBasicRoundTrip(t *testing.T) {
	name := "trunk"
	wire := writeTuple(t, "nsw", uint64(7), []byte("hello"), &name)
	var n uint64
	var s []byte
	var w string
	readTuple(t, wire, "nsw", &n, &s, &w)
	if n != 7 || string(s) != "hello" || w != "trunk" {
		t.Fatalf("got n=%d s=%q w=%q", n, s, w)
	}
}

func TestTupleCStringStripsNUL(t *testing.T) {
	msg := "boom"
	wire := writeTuple(t, "c", &msg)
	var got string
	readTuple(t, wire, "c", &got)
	if got != "boom" {
		t.Fatalf("got %q", got)
	}
}

func TestTupleOptionalGroupOmitted(t *testing.T) {
	wire := writeTuple(t, "n[s]", uint64(1), []byte(nil))
	var n uint64
	var s []byte
	readTuple(t, wire, "n[s]", &n, &s)
	if n != 1 || s != nil {
		t.Fatalf("got n=%d s=%v", n, s)
	}
}

func TestTupleOptionalGroupPresent(t *testing.T) {
	wire := writeTuple(t, "n[s]", uint64(1), []byte("x"))
	var n uint64
	var s []byte
	readTuple(t, wire, "n[s]", &n, &s)
	if n != 1 || string(s) != "x" {
		t.Fatalf("got n=%d s=%q", n, s)
	}
}

func TestTupleRequiredFieldOmittedIsError(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(strings.NewReader(""), &buf, DefaultLimits())
	if err := c.WriteTuple("s", []byte(nil)); err == nil {
		t.Fatalf("expected error for required 's' omitted outside optional group")
	}
}

func TestTupleOptionalRevision(t *testing.T) {
	wire := writeTuple(t, "[r]", NoRev())
	var rev OptRevision
	readTuple(t, wire, "[r]", &rev)
	if rev.Valid {
		t.Fatalf("expected absent revision, got %+v", rev)
	}

	wire = writeTuple(t, "[r]", Rev(42))
	readTuple(t, wire, "[r]", &rev)
	if !rev.Valid || rev.Value != 42 {
		t.Fatalf("expected revision 42, got %+v", rev)
	}
}

func TestTupleRequiredNestedGroup(t *testing.T) {
	wire := writeTuple(t, "n(ww)", uint64(3), ptr("add"), ptr("done"))
	var n uint64
	var a, b string
	readTuple(t, wire, "n(ww)", &n, &a, &b)
	if n != 3 || a != "add" || b != "done" {
		t.Fatalf("got n=%d a=%q b=%q", n, a, b)
	}
}

func TestTupleNestedList(t *testing.T) {
	sub := []Item{Num(1), Num(2), Num(3)}
	wire := writeTuple(t, "l", sub)
	var got []Item
	readTuple(t, wire, "l", &got)
	if len(got) != 3 || got[1].Number != 2 {
		t.Fatalf("got %+v", got)
	}
}

func TestTupleWrongArgTypeIsFormatError(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(strings.NewReader(""), &buf, DefaultLimits())
	err := c.WriteTuple("n", "not-a-uint64")
	if err == nil {
		t.Fatalf("expected format error")
	}
}

func ptr(s string) *string { return &s }
