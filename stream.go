package huffman

import (
	"errors"
	"io"

	"github.com/icza/bitio"
)

// BitReader is the source of bits for the tree-walking decoder.
// *bitio.Reader satisfies it.
type BitReader interface {
	ReadBool() (bool, error)
}

// BitWriter is the sink of bits for Code.Write.  *bitio.Writer satisfies it.
type BitWriter interface {
	WriteBits(r uint64, n uint8) error
}

var (
	_ BitReader = (*bitio.Reader)(nil)
	_ BitWriter = (*bitio.Writer)(nil)
)

// Directive tells the decoder whether to keep going after a symbol.
type Directive byte

const (
	// Continue asks the decoder for the next symbol.
	Continue Directive = iota

	// Stop makes the decoder return immediately, leaving the rest of the
	// input unread.
	Stop
)

// Producer supplies the symbols for Codec.Encode.
type Producer[T comparable] interface {
	// Next returns the symbol at the given ordinal, starting from 0, or
	// ok == false at the end of the input.
	Next(ordinal int) (value T, ok bool)

	// OnEscape writes an application-defined raw representation of a
	// symbol which has no code of its own.  It is called right after the
	// escape code, with w positioned at a byte boundary.
	OnEscape(w io.Writer, value T) error
}

// Consumer receives the symbols produced by Codec.Decode.
type Consumer[T comparable] interface {
	// Next receives one decoded symbol.  The ordinal counts the symbols
	// passed to Next, starting from 0.
	Next(ordinal int, value T) Directive

	// OnEscape reads the raw representation written by
	// Producer.OnEscape.  It is called with r positioned at the byte
	// boundary following the escape code.
	OnEscape(r io.ByteReader) error
}

// ErrNoEscapeHandler is returned by the slice adapters when a symbol must be
// escaped but no handler was provided.
var ErrNoEscapeHandler = errors.New("huffman: escaped symbol without an escape handler")

// SliceProducer is a Producer that encodes the values of a slice.
type SliceProducer[T comparable] struct {
	Values []T

	// Escape, if non-nil, writes the raw form of an escaped value.
	Escape func(w io.Writer, value T) error
}

// Next implements Producer.
func (p *SliceProducer[T]) Next(ordinal int) (T, bool) {
	if ordinal >= len(p.Values) {
		var zero T
		return zero, false
	}
	return p.Values[ordinal], true
}

// OnEscape implements Producer.
func (p *SliceProducer[T]) OnEscape(w io.Writer, value T) error {
	if p.Escape == nil {
		return ErrNoEscapeHandler
	}
	return p.Escape(w, value)
}

var _ Producer[byte] = (*SliceProducer[byte])(nil)

// SliceConsumer is a Consumer that collects decoded values into a slice.
type SliceConsumer[T comparable] struct {
	Values []T

	// Limit, if positive, is the number of values after which decoding
	// stops.  Without a limit, the zero bits that pad the final byte may
	// decode as extra values.
	Limit int

	// Escape, if non-nil, reads the raw form of an escaped value.
	Escape func(r io.ByteReader) (T, error)
}

// Next implements Consumer.
func (c *SliceConsumer[T]) Next(ordinal int, value T) Directive {
	if c.full() {
		return Stop
	}
	c.Values = append(c.Values, value)
	if c.full() {
		return Stop
	}
	return Continue
}

// OnEscape implements Consumer.
func (c *SliceConsumer[T]) OnEscape(r io.ByteReader) error {
	if c.Escape == nil {
		return ErrNoEscapeHandler
	}
	value, err := c.Escape(r)
	if err != nil {
		return err
	}
	c.Values = append(c.Values, value)
	return nil
}

func (c *SliceConsumer[T]) full() bool {
	return c.Limit > 0 && len(c.Values) >= c.Limit
}

var _ Consumer[byte] = (*SliceConsumer[byte])(nil)
