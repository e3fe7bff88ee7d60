package probe

import "fmt"

// PacketCursor is the read position inside one packet payload. It is a plain
// value: decode steps receive a cursor and return the advanced one.
type PacketCursor struct {
	data     []byte
	consumed int
}

// NewPacketCursor positions a cursor at the start of data.
func NewPacketCursor(data []byte) PacketCursor {
	return PacketCursor{data: data}
}

// Remaining returns the bytes not yet consumed.
func (c PacketCursor) Remaining() []byte {
	return c.data[c.consumed:]
}

// Len returns the number of bytes not yet consumed.
func (c PacketCursor) Len() int {
	return len(c.data) - c.consumed
}

// Consumed returns the number of bytes consumed so far.
func (c PacketCursor) Consumed() int {
	return c.consumed
}

// Exhausted reports whether the whole payload has been consumed.
func (c PacketCursor) Exhausted() bool {
	return c.Len() == 0
}

// Advance returns a cursor moved past n bytes.
func (c PacketCursor) Advance(n int) (PacketCursor, error) {
	if n < 0 || n > c.Len() {
		return c, fmt.Errorf("advance cursor: %d bytes requested, %d remaining", n, c.Len())
	}
	c.consumed += n
	return c, nil
}
