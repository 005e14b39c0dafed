package huffman

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/chronos-tachyon/assert"
	"github.com/icza/bitio"
	"golang.org/x/exp/slices"
)

// ErrUnencodable is returned by a strict Codec when asked to encode a value
// that has no code while the alphabet has no escape symbol.
var ErrUnencodable = errors.New("huffman: value has no code and there is no escape symbol")

// Codec encodes and decodes sequences of symbols with a Huffman code.  A Codec
// is immutable, and safe for concurrent use.
type Codec[T comparable] struct {
	tree    *Tree[T]
	codes   map[T]Code
	sorted  []*CodedSymbol[T]
	escape  *CodedSymbol[T]
	fast    *FastDecoder[T]
	minSize byte
	maxSize byte
	strict  bool
}

// NewCodec builds a Codec for the given alphabet, with no code longer than
// maxBits.  Symbols pruned to fit maxBits can only be encoded through the
// escape symbol.
func NewCodec[T comparable](symbols *Symbols[T], maxBits int) (*Codec[T], error) {
	tree, err := symbols.Tree(maxBits)
	if err != nil {
		return nil, err
	}
	if err := tree.Encode(); err != nil {
		return nil, err
	}

	list := tree.CodedSymbols()
	c := &Codec[T]{
		tree:   tree,
		codes:  make(map[T]Code, len(list)),
		sorted: list,
	}
	for i, cs := range list {
		hc, ok := cs.Code()
		assert.Assertf(ok, "symbol %v did not receive a code", cs.Value)
		c.codes[cs.Value] = hc
		if i == 0 || c.minSize > hc.Size {
			c.minSize = hc.Size
		}
		if c.maxSize < hc.Size {
			c.maxSize = hc.Size
		}
	}
	slices.SortFunc(c.sorted, func(a, b *CodedSymbol[T]) int {
		return a.code.Compare(b.code)
	})

	if escape, ok := symbols.Escape(); ok {
		for _, cs := range list {
			if cs.Value == escape.Value {
				c.escape = cs
				break
			}
		}
		assert.Assertf(c.escape != nil, "escape symbol %v is missing from the tree", escape.Value)
	}

	c.fast = newFastDecoder(tree, c.escape)
	return c, nil
}

// Strict returns a Codec that shares this Codec's tables, but whose Encode
// fails with ErrUnencodable instead of silently skipping a value that has no
// code and cannot be escaped.
func (c *Codec[T]) Strict() *Codec[T] {
	dupe := *c
	dupe.strict = true
	return &dupe
}

// Code returns the Code for the given value, if it has one.
func (c *Codec[T]) Code(value T) (Code, bool) {
	hc, ok := c.codes[value]
	return hc, ok
}

// CanEncode returns true iff the given value has a Code of its own.
func (c *Codec[T]) CanEncode(value T) bool {
	_, ok := c.codes[value]
	return ok
}

// Escape returns a copy of the escape symbol, if there is one.  Its frequency includes
// the frequencies of all symbols that were pruned to fit the maximum code
// length.
func (c *Codec[T]) Escape() (*CodedSymbol[T], bool) {
	if c.escape == nil {
		return nil, false
	}
	return c.escape.clone(), true
}

// Symbols returns copies of the coded symbols, ordered by code.
func (c *Codec[T]) Symbols() []*CodedSymbol[T] {
	out := make([]*CodedSymbol[T], len(c.sorted))
	for i, cs := range c.sorted {
		out[i] = cs.clone()
	}
	return out
}

// NumSymbols returns the number of coded symbols, including the escape
// symbol.
func (c *Codec[T]) NumSymbols() int {
	return len(c.sorted)
}

// MinSize is the bit length of the shortest code.
func (c *Codec[T]) MinSize() byte {
	return c.minSize
}

// MaxSize is the bit length of the longest code.
func (c *Codec[T]) MaxSize() byte {
	return c.maxSize
}

// Tree returns the Huffman tree behind this Codec.  The tree shares its
// symbols with the Codec, and must not be modified.
func (c *Codec[T]) Tree() *Tree[T] {
	return c.tree
}

// Decoder returns the table-driven decoder behind this Codec.
func (c *Codec[T]) Decoder() *FastDecoder[T] {
	return c.fast
}

// Encode writes the Huffman codes of the values supplied by p to w.
//
// A value without a code of its own, and the escape value itself, is written
// as the escape code, followed by padding to the next byte boundary, followed
// by whatever p.OnEscape writes.  Without an escape symbol, such a value is
// skipped, or rejected with ErrUnencodable if the Codec is strict.
//
// The last byte is padded with zero bits.
func (c *Codec[T]) Encode(w io.Writer, p Producer[T]) error {
	bw := bitio.NewWriter(w)
	for ordinal := 0; ; ordinal++ {
		value, ok := p.Next(ordinal)
		if !ok {
			break
		}
		if err := c.encodeOne(bw, p, value); err != nil {
			return err
		}
	}
	return bw.Close()
}

func (c *Codec[T]) encodeOne(bw *bitio.Writer, p Producer[T], value T) error {
	hc, ok := c.codes[value]
	if ok && !c.isEscape(value) {
		return hc.Write(bw)
	}

	if c.escape == nil {
		if c.strict {
			return fmt.Errorf("%w: %v", ErrUnencodable, value)
		}
		return nil
	}

	if err := c.escape.code.Write(bw); err != nil {
		return err
	}
	if _, err := bw.Align(); err != nil {
		return err
	}
	return p.OnEscape(bw, value)
}

// Decode decodes the bytes of r until io.EOF, passing each symbol to c.  See
// FastDecoder.Decode.
func (c *Codec[T]) Decode(r io.ByteReader, consumer Consumer[T]) error {
	return c.fast.Decode(r, consumer)
}

// DecodeSlow is equivalent to Decode, but walks the tree one bit at a time.
func (c *Codec[T]) DecodeSlow(r io.Reader, consumer Consumer[T]) error {
	br := bitio.NewReader(r)
	ordinal := 0
	for {
		cs, err := c.tree.Decode(br)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if c.isEscape(cs.Value) {
			br.Align()
			if err := consumer.OnEscape(br); err != nil {
				return err
			}
			continue
		}

		if consumer.Next(ordinal, cs.Value) == Stop {
			return nil
		}
		ordinal++
	}
}

// Dump writes a programmer-readable debugging dump of the Codec's current
// state to the given writer.
func (c *Codec[T]) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Codec{\n")
	fmt.Fprintf(&buf, "\tMinSize() = %d\n", c.minSize)
	fmt.Fprintf(&buf, "\tMaxSize() = %d\n", c.maxSize)
	if c.escape == nil {
		buf.WriteString("\tEscape() = nil\n")
	} else {
		fmt.Fprintf(&buf, "\tEscape() = %v\n", c.escape)
	}
	for _, cs := range c.sorted {
		fmt.Fprintf(&buf, "\tEncode(%v) = %s\n", cs.Value, cs.code)
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// String returns a brief description of this Codec.
func (c *Codec[T]) String() string {
	return fmt.Sprintf("(Huffman codec with %d symbols, with coded lengths of %d .. %d bits)", len(c.sorted), c.minSize, c.maxSize)
}

var _ fmt.Stringer = (*Codec[byte])(nil)

func (c *Codec[T]) isEscape(value T) bool {
	return c.escape != nil && c.escape.Value == value
}
