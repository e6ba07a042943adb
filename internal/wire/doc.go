// Package wire implements the length-prefixed, self-describing item
// protocol used by ratree's client/server exchange: numbers,
// length-prefixed byte-strings, bare words, and lists, each terminated
// by whitespace (spec §3 "Item Grammar"). Conn owns the buffering and
// the flush-before-read ordering rule that keeps a bidirectional stream
// from deadlocking; Item is the parsed tree; WriteTuple/ReadTuple layer
// the fixed-shape tuple format on top, matching the teacher's
// frame/tlv split between raw framing and typed field access.
package wire
