package ratreed

import (
	"bytes"
	"fmt"

	"github.com/danmuck/ratree/internal/edit"
	"github.com/danmuck/ratree/internal/wire"
)

// decodePeg converts a wire-decoded (revision, relpath) pair into a
// PegPath. CurrentTxn (-1) round-trips through the wire's unsigned
// 64-bit number as its two's-complement bit pattern — the sender writes
// the literal value -1 cast to uint64, and casting back here recovers
// it exactly (spec §6: "behavior at or above 2^63 is implementation-
// defined"; ratree defines rev=-1 this way rather than replicating the
// legacy signed-formatter bug spec §9 open question iii warns against).
func decodePeg(rev wire.OptRevision, relpath []byte) edit.PegPath {
	return edit.PegPath{Rev: int64(rev.Value), RelPath: string(relpath)}
}

// kindFromWire maps a decoded kind word to its edit.Kind. "none" is the
// content-unchanged sentinel alter's no-op/partial-update path expects
// (edit.Content{} with Kind == "").
func kindFromWire(word string) (edit.Kind, error) {
	switch word {
	case "none":
		return edit.Kind(""), nil
	case string(edit.KindDir), string(edit.KindFile), string(edit.KindSymlink), string(edit.KindUnknown):
		return edit.Kind(word), nil
	default:
		return "", fmt.Errorf("%w: unrecognized kind word %q", edit.ErrMalformedContent, word)
	}
}

// decodeContent parses a content parameter's nested item list, per the
// "wlss" shape: kind word, a list of (key, value) string-pair lists for
// props, the file stream bytes, and the symlink target bytes. A client
// that has nothing to say about content (alter's partial-update case)
// sends kind="none" and empty bytes/lists for the rest.
func decodeContent(items []wire.Item) (edit.Content, error) {
	var kindWord string
	var propItems []wire.Item
	var streamBytes, targetBytes []byte
	if err := wire.ParseTuple(wire.Lst(items...), "wlss", &kindWord, &propItems, &streamBytes, &targetBytes); err != nil {
		return edit.Content{}, err
	}
	kind, err := kindFromWire(kindWord)
	if err != nil {
		return edit.Content{}, err
	}
	props, err := decodeProps(propItems)
	if err != nil {
		return edit.Content{}, err
	}
	content := edit.Content{Kind: kind, Props: props}
	if kind == edit.KindFile {
		content.Stream = bytes.NewReader(streamBytes)
	}
	if kind == edit.KindSymlink && len(targetBytes) > 0 {
		content.Target = targetBytes
	}
	return content, nil
}

// decodeProps parses each element of a props list as a (key, value)
// string pair.
func decodeProps(items []wire.Item) (map[string][]byte, error) {
	if len(items) == 0 {
		return nil, nil
	}
	props := make(map[string][]byte, len(items))
	for _, item := range items {
		var key, value []byte
		if err := wire.ParseTuple(item, "ss", &key, &value); err != nil {
			return nil, fmt.Errorf("%w: decoding props: %v", edit.ErrMalformedContent, err)
		}
		props[string(key)] = value
	}
	return props, nil
}
