package huffman

import (
	"bytes"
	"fmt"
	"io"

	"github.com/chronos-tachyon/assert"
	"github.com/icza/bitio"
	"golang.org/x/exp/slices"
)

// FastDecoder decodes a Huffman-coded stream one byte at a time instead of
// one bit at a time.
//
// Each table corresponds to a residual prefix: the bits left over from the
// previous byte that did not complete a code.  Each of its 256 entries says
// which symbols are completed by appending the next input byte to that
// prefix, and which table holds the bits left over after that.
//
// Every table reachable from the root is built when the FastDecoder is
// constructed.  After that the FastDecoder is read-only, so any number of
// goroutines may decode with it at once.
type FastDecoder[T comparable] struct {
	tree   *Tree[T]
	escape *CodedSymbol[T]
	root   *table[T]
	tables map[Code]*table[T]
}

type table[T comparable] struct {
	prefix  Code
	entries [256]entry[T]
}

type entry[T comparable] struct {
	// values lists the symbols completed by this byte, in order, up to but
	// not including any escape symbol.
	values []T

	// escaped is true if an escape symbol follows values.  The rest of the
	// byte is padding.
	escaped bool

	// next is the table for the bits left over after values, if not
	// escaped.
	next *table[T]
}

// newFastDecoder precomputes the tables for the given tree.  The tree must
// already be encoded.  If escape is non-nil, it must be a symbol of the tree.
func newFastDecoder[T comparable](tree *Tree[T], escape *CodedSymbol[T]) *FastDecoder[T] {
	d := &FastDecoder[T]{
		tree:   tree,
		escape: escape,
		tables: make(map[Code]*table[T]),
	}
	d.root = d.compute(Code{})
	return d
}

// NumTables returns the number of distinct residual prefixes.
func (d *FastDecoder[T]) NumTables() int {
	return len(d.tables)
}

// Decode reads bytes from r until io.EOF, passing each decoded symbol to c.
// It returns early, with nil, if c returns Stop.  The escape symbol is never
// passed to c.Next; c.OnEscape is called instead, and decoding resumes with
// the byte that follows the raw data it reads.
func (d *FastDecoder[T]) Decode(r io.ByteReader, c Consumer[T]) error {
	t := d.root
	ordinal := 0
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		e := &t.entries[b]
		for _, value := range e.values {
			if c.Next(ordinal, value) == Stop {
				return nil
			}
			ordinal++
		}

		if e.escaped {
			if err := c.OnEscape(r); err != nil {
				return err
			}
			t = d.root
			continue
		}
		t = e.next
	}
}

// Dump writes a programmer-readable debugging dump of the FastDecoder's
// tables to the given writer.
func (d *FastDecoder[T]) Dump(w io.Writer) (int64, error) {
	prefixes := make([]Code, 0, len(d.tables))
	for prefix := range d.tables {
		prefixes = append(prefixes, prefix)
	}
	slices.SortFunc(prefixes, Code.Compare)

	var buf bytes.Buffer
	buf.WriteString("FastDecoder{\n")
	fmt.Fprintf(&buf, "\tNumTables() = %d\n", len(d.tables))
	for _, prefix := range prefixes {
		t := d.tables[prefix]
		var numValues, numEscapes int
		next := make(map[Code]struct{})
		for i := range t.entries {
			e := &t.entries[i]
			numValues += len(e.values)
			if e.escaped {
				numEscapes++
			} else {
				next[e.next.prefix] = struct{}{}
			}
		}
		fmt.Fprintf(&buf, "\tTable(%s) = {%d values, %d escapes, %d successors}\n", prefix, numValues, numEscapes, len(next))
	}
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

// compute returns the table for the given residual prefix, building it (and
// every table reachable from it) if it does not exist yet.  A table is
// registered before its entries are filled, so cycles between prefixes
// resolve to the same table.
func (d *FastDecoder[T]) compute(prefix Code) *table[T] {
	if t, found := d.tables[prefix]; found {
		return t
	}

	t := &table[T]{prefix: prefix}
	d.tables[prefix] = t
	for b := 0; b < 256; b++ {
		values, escaped, rest := d.simulate(prefix, byte(b))
		e := &t.entries[b]
		e.values = values
		e.escaped = escaped
		if !escaped {
			e.next = d.compute(rest)
		}
	}
	return t
}

// simulate runs the tree-walking decoder over prefix followed by the 8 bits
// of b.  It returns the symbols decoded before the bits ran out (stopping at
// an escape), and the bits that were left over.
func (d *FastDecoder[T]) simulate(prefix Code, b byte) (values []T, escaped bool, rest Code) {
	var buf bytes.Buffer
	bw := bitio.NewWriter(&buf)
	err := prefix.Write(bw)
	if err == nil {
		err = bw.WriteByte(b)
	}
	if err == nil {
		err = bw.Close()
	}
	assert.Assertf(err == nil, "failed to write simulated input: %v", err)

	total := int(prefix.Size) + 8
	lr := &limitedBitReader{r: bitio.NewReader(&buf), left: total}
	consumed := 0
	for {
		cs, err := d.tree.Decode(lr)
		if err != nil {
			break
		}
		consumed = total - lr.left
		if d.escape != nil && cs.Value == d.escape.Value {
			return values, true, Code{}
		}
		values = append(values, cs.Value)
	}

	all := (uint64(prefix.Bits) << 8) | uint64(b)
	size := byte(total - consumed)
	assert.Assertf(size < MaxBitsPerCode, "residual prefix of %d bits is too long", size)
	return values, false, MakeCode(size, uint32(all))
}

// limitedBitReader reads at most left bits, then reports io.EOF.
type limitedBitReader struct {
	r    *bitio.Reader
	left int
}

func (lr *limitedBitReader) ReadBool() (bool, error) {
	if lr.left <= 0 {
		return false, io.EOF
	}
	lr.left--
	return lr.r.ReadBool()
}

var _ BitReader = (*limitedBitReader)(nil)
