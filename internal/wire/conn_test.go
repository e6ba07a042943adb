package wire

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// orderTrackingRW records whether any write happened before a read is
// served, so tests can assert the flush-before-read ordering rule.
type orderTrackingRW struct {
	writes    [][]byte
	readFrom  *strings.Reader
	readCount int
}

func (o *orderTrackingRW) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	o.writes = append(o.writes, cp)
	return len(p), nil
}

func (o *orderTrackingRW) Read(p []byte) (int, error) {
	o.readCount++
	return o.readFrom.Read(p)
}

func TestReadFlushesPendingWritesFirst(t *testing.T) {
	rw := &orderTrackingRW{readFrom: strings.NewReader("1 ")}
	c := NewConn(rw, rw, DefaultLimits())

	if err := c.WriteWord("ping"); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Nothing flushed to the transport yet: still buffered.
	if len(rw.writes) != 0 {
		t.Fatalf("expected no writes before flush, got %d", len(rw.writes))
	}

	arena := NewArena(DefaultArenaSize)
	item, err := c.ReadItem(arena)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if item.Kind != KindNumber || item.Number != 1 {
		t.Fatalf("got %+v", item)
	}
	if len(rw.writes) == 0 {
		t.Fatalf("expected read to flush pending write first")
	}
}

func TestWriteBypassesBufferForLargePayload(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(strings.NewReader(""), &buf, DefaultLimits())
	payload := bytes.Repeat([]byte("x"), defaultBufSize*3)
	if err := c.WriteString(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	want := fmt.Sprintf("%d:", len(payload)) + string(payload) + " "
	if buf.String() != want {
		t.Fatalf("payload mismatch, got len %d want len %d", buf.Len(), len(want))
	}
}

func TestReadLargePayloadBypassesBuffer(t *testing.T) {
	payload := bytes.Repeat([]byte("y"), defaultBufSize*3)
	input := fmt.Sprintf("%d:", len(payload)) + string(payload) + " "
	var out bytes.Buffer
	c := NewConn(strings.NewReader(input), &out, DefaultLimits())
	arena := NewArena(len(payload) + 16)
	item, err := c.ReadItem(arena)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if item.Kind != KindString || !bytes.Equal(item.Bytes, payload) {
		t.Fatalf("payload mismatch, got len %d", len(item.Bytes))
	}
}

func TestFlushAccumulatesShortWrites(t *testing.T) {
	rw := &shortWriter{limit: 3}
	c := NewConn(strings.NewReader(""), rw, DefaultLimits())
	if err := c.WriteWord("abcdefghij"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if rw.buf.String() != "abcdefghij " {
		t.Fatalf("got %q", rw.buf.String())
	}
}

type shortWriter struct {
	buf   bytes.Buffer
	limit int
}

func (s *shortWriter) Write(p []byte) (int, error) {
	n := len(p)
	if n > s.limit {
		n = s.limit
	}
	s.buf.Write(p[:n])
	return n, nil
}
