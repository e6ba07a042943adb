package wire

// ReadItem reads a single item off the wire, skipping leading
// whitespace. String payloads are copied into arena; the returned Item
// is invalidated when arena is next Reset.
func (c *Conn) ReadItem(arena *Arena) (Item, error) {
	first, err := c.getCharSkipWhitespace()
	if err != nil {
		return Item{}, err
	}
	return c.readItem(first, arena, 0)
}

// readItem parses the item beginning at first, mirroring
// svn_ra_svn read_item's dispatch on the first non-whitespace byte:
// digit -> number or length-prefixed string, alpha -> word, '(' ->
// list, anything else -> malformed. After any non-list item, the
// character immediately following must be whitespace.
func (c *Conn) readItem(first byte, arena *Arena, depth int) (Item, error) {
	switch {
	case isDigit(first):
		return c.readNumberOrString(first, arena)
	case isAlpha(first):
		return c.readWord(first)
	case first == '(':
		return c.readList(arena, depth)
	default:
		return Item{}, malformed("unexpected leading byte")
	}
}

func (c *Conn) readNumberOrString(first byte, arena *Arena) (Item, error) {
	val := uint64(first - '0')
	var b byte
	var err error
	for {
		b, err = c.getChar()
		if err != nil {
			return Item{}, err
		}
		if !isDigit(b) {
			break
		}
		val = val*10 + uint64(b-'0')
	}

	if b == ':' {
		if val > c.limits.MaxStringLen {
			return Item{}, malformed("string length exceeds limit")
		}
		data := arena.Alloc(int(val))
		if err := c.readInto(data); err != nil {
			return Item{}, err
		}
		term, err := c.getChar()
		if err != nil {
			return Item{}, err
		}
		if !isWhitespace(term) {
			return Item{}, malformed("string not followed by whitespace")
		}
		return Item{Kind: KindString, Bytes: data}, nil
	}

	if !isWhitespace(b) {
		return Item{}, malformed("number not followed by whitespace")
	}
	return Item{Kind: KindNumber, Number: val}, nil
}

func (c *Conn) readWord(first byte) (Item, error) {
	word := []byte{first}
	for {
		b, err := c.getChar()
		if err != nil {
			return Item{}, err
		}
		if !isAlnum(b) && b != '-' {
			if !isWhitespace(b) {
				return Item{}, malformed("word not followed by whitespace")
			}
			break
		}
		word = append(word, b)
	}
	return Item{Kind: KindWord, Word: string(word)}, nil
}

func (c *Conn) readList(arena *Arena, depth int) (Item, error) {
	if depth >= c.limits.MaxListDepth {
		return Item{}, malformed("list nesting exceeds limit")
	}
	var items []Item
	for {
		b, err := c.getCharSkipWhitespace()
		if err != nil {
			return Item{}, err
		}
		if b == ')' {
			break
		}
		item, err := c.readItem(b, arena, depth+1)
		if err != nil {
			return Item{}, err
		}
		items = append(items, item)
	}
	term, err := c.getChar()
	if err != nil {
		return Item{}, err
	}
	if !isWhitespace(term) {
		return Item{}, malformed("list not followed by whitespace")
	}
	return Item{Kind: KindList, List: items}, nil
}
