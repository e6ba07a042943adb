package dispatch

import (
	"bytes"
	"strings"
	"testing"

	"github.com/danmuck/ratree/internal/wire"
)

func TestWriteCmdResponseRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	c := wire.NewConn(strings.NewReader(""), &buf, wire.DefaultLimits())
	if err := WriteCmdResponse(c, "nw", uint64(9), ptrStr("ok")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reader := wire.NewConn(strings.NewReader(buf.String()), &bytes.Buffer{}, wire.DefaultLimits())
	arena := wire.NewArena(wire.DefaultArenaSize)
	var n uint64
	var w string
	if err := ReadCmdResponse(reader, arena, "nw", &n, &w); err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 9 || w != "ok" {
		t.Fatalf("got n=%d w=%q", n, w)
	}
}

func TestWriteCmdFailureChainRoundTrip(t *testing.T) {
	inner := NewFault(2, "inner cause")
	outer := inner.Wrap(1, "outer failure")

	var buf bytes.Buffer
	c := wire.NewConn(strings.NewReader(""), &buf, wire.DefaultLimits())
	if err := WriteCmdFailure(c, outer); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reader := wire.NewConn(strings.NewReader(buf.String()), &bytes.Buffer{}, wire.DefaultLimits())
	arena := wire.NewArena(wire.DefaultArenaSize)
	err := ReadCmdResponse(reader, arena, "")
	if err == nil {
		t.Fatalf("expected failure error")
	}
	var f *Fault
	if !asFault(err, &f) {
		t.Fatalf("expected *Fault chain, got %T: %v", err, err)
	}
	if f.Code != 1 || f.Message != "outer failure" {
		t.Fatalf("got outer frame %+v", f)
	}
	var inner2 *Fault
	if !asFault(f.Cause, &inner2) {
		t.Fatalf("expected inner *Fault, got %v", f.Cause)
	}
	if inner2.Code != 2 || inner2.Message != "inner cause" {
		t.Fatalf("got inner frame %+v", inner2)
	}
}

func TestWriteCmdFailureSyntheticSingleFrame(t *testing.T) {
	var buf bytes.Buffer
	c := wire.NewConn(strings.NewReader(""), &buf, wire.DefaultLimits())
	plain := &UnknownCmdError{Name: "bogus"}
	if err := WriteCmdFailure(c, plain); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reader := wire.NewConn(strings.NewReader(buf.String()), &bytes.Buffer{}, wire.DefaultLimits())
	arena := wire.NewArena(wire.DefaultArenaSize)
	err := ReadCmdResponse(reader, arena, "")
	var f *Fault
	if !asFault(err, &f) {
		t.Fatalf("expected *Fault, got %T", err)
	}
	if f.Message != plain.Error() {
		t.Fatalf("got %q want %q", f.Message, plain.Error())
	}
}

func asFault(err error, target **Fault) bool {
	f, ok := err.(*Fault)
	if !ok {
		return false
	}
	*target = f
	return true
}

func ptrStr(s string) *string { return &s }
