package wire

import "strconv"

// WriteNumber writes a decimal number followed by a space.
func (c *Conn) WriteNumber(n uint64) error {
	buf := strconv.AppendUint(make([]byte, 0, 21), n, 10)
	buf = append(buf, ' ')
	return c.writeBytes(buf)
}

// WriteString writes a length-prefixed byte string: "<len>:<bytes> ".
// b may contain any bytes, including embedded whitespace or NUL.
func (c *Conn) WriteString(b []byte) error {
	prefix := strconv.AppendUint(make([]byte, 0, 21), uint64(len(b)), 10)
	prefix = append(prefix, ':')
	if err := c.writeBytes(prefix); err != nil {
		return err
	}
	if err := c.writeBytes(b); err != nil {
		return err
	}
	return c.writeBytes([]byte{' '})
}

// WriteCString writes s as a length-prefixed string with a NUL
// terminator appended to the payload, matching tuple format letter 'c'.
func (c *Conn) WriteCString(s string) error {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return c.WriteString(b)
}

// WriteWord writes a bare identifier followed by a space.
func (c *Conn) WriteWord(w string) error {
	buf := make([]byte, 0, len(w)+1)
	buf = append(buf, w...)
	buf = append(buf, ' ')
	return c.writeBytes(buf)
}

// StartList writes the list-open delimiter "( ".
func (c *Conn) StartList() error { return c.writeBytes([]byte("( ")) }

// EndList writes the list-close delimiter ") ".
func (c *Conn) EndList() error { return c.writeBytes([]byte(") ")) }

// WriteItem writes a single item of any kind, recursing into lists.
func (c *Conn) WriteItem(it Item) error {
	switch it.Kind {
	case KindNumber:
		return c.WriteNumber(it.Number)
	case KindString:
		return c.WriteString(it.Bytes)
	case KindWord:
		return c.WriteWord(it.Word)
	case KindList:
		if err := c.StartList(); err != nil {
			return err
		}
		for _, sub := range it.List {
			if err := c.WriteItem(sub); err != nil {
				return err
			}
		}
		return c.EndList()
	default:
		return malformed("unknown item kind on write")
	}
}
