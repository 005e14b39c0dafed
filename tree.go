package huffman

import (
	"bytes"
	"container/heap"
	"fmt"
	"io"

	"github.com/chronos-tachyon/assert"
)

// Tree is a binary trie of CodedSymbols.  A leaf holds exactly one symbol; an
// internal node holds exactly two children and no symbol.  Each node owns its
// children.
type Tree[T comparable] struct {
	symbol    *CodedSymbol[T]
	left      *Tree[T]
	right     *Tree[T]
	frequency uint64
}

// buildTree performs the greedy Huffman merge over every symbol with a
// nonzero frequency.  Ties between equal frequencies go to whichever tree
// entered the heap first, so the result depends only on the order of
// symbols.
func buildTree[T comparable](symbols []*CodedSymbol[T]) *Tree[T] {
	h := treeHeap[T]{list: make([]treeAndSeq[T], 0, len(symbols))}
	for _, cs := range symbols {
		if cs.Frequency == 0 {
			continue
		}
		h.list = append(h.list, treeAndSeq[T]{&Tree[T]{symbol: cs, frequency: cs.Frequency}, h.next})
		h.next++
	}
	assert.Assertf(h.Len() >= 2, "cannot build a Huffman tree from %d symbols", h.Len())
	h.Init()

	for h.Len() > 1 {
		a := heap.Pop(&h).(treeAndSeq[T])
		b := heap.Pop(&h).(treeAndSeq[T])
		node := &Tree[T]{
			left:      a.tree,
			right:     b.tree,
			frequency: addSaturating(a.tree.frequency, b.tree.frequency),
		}
		heap.Push(&h, treeAndSeq[T]{node, h.next})
		h.next++
	}
	return heap.Pop(&h).(treeAndSeq[T]).tree
}

// IsLeaf returns true iff this tree is a single symbol.
func (t *Tree[T]) IsLeaf() bool {
	return t.symbol != nil
}

// Symbol returns the symbol held by a leaf, or nil for an internal node.
func (t *Tree[T]) Symbol() *CodedSymbol[T] {
	return t.symbol
}

// Left returns the "0" child of an internal node, or nil for a leaf.
func (t *Tree[T]) Left() *Tree[T] {
	return t.left
}

// Right returns the "1" child of an internal node, or nil for a leaf.
func (t *Tree[T]) Right() *Tree[T] {
	return t.right
}

// Frequency returns the sum of the frequencies of all symbols in this tree.
func (t *Tree[T]) Frequency() uint64 {
	return t.frequency
}

// Height returns the maximum depth of any leaf.  A lone leaf has height 0.
func (t *Tree[T]) Height() int {
	if t.IsLeaf() {
		return 0
	}
	l, r := t.left.Height(), t.right.Height()
	if l < r {
		l = r
	}
	return l + 1
}

// CodedSymbols returns the distinct symbols of this tree, left to right.
func (t *Tree[T]) CodedSymbols() []*CodedSymbol[T] {
	seen := make(map[T]struct{})
	var out []*CodedSymbol[T]
	t.walk(Code{}, func(cs *CodedSymbol[T], _ Code) {
		if _, found := seen[cs.Value]; found {
			return
		}
		seen[cs.Value] = struct{}{}
		out = append(out, cs)
	})
	return out
}

// Encode assigns a Code to every symbol in the tree: the path from the root
// to the leaf, with "0" for every left branch and "1" for every right branch.
func (t *Tree[T]) Encode() error {
	if h := t.Height(); h > MaxBitsPerCode {
		return fmt.Errorf("huffman: tree is too tall: got %d, max %d", h, MaxBitsPerCode)
	}
	t.walk(Code{}, func(cs *CodedSymbol[T], hc Code) {
		cs.setCode(hc)
	})
	for _, cs := range t.CodedSymbols() {
		_, ok := cs.Code()
		assert.Assertf(ok, "symbol %v did not receive a code", cs.Value)
	}
	return nil
}

// Decode walks the tree from the root, reading one bit per branch, and
// returns the symbol at the leaf it reaches.  If r runs dry first, the
// reader's error is returned.
func (t *Tree[T]) Decode(r BitReader) (*CodedSymbol[T], error) {
	node := t
	for !node.IsLeaf() {
		right, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		if right {
			node = node.right
		} else {
			node = node.left
		}
	}
	return node.symbol, nil
}

// Dump writes a programmer-readable debugging dump of the Tree to the given
// writer.
func (t *Tree[T]) Dump(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("Tree{\n")
	fmt.Fprintf(&buf, "\tHeight() = %d\n", t.Height())
	fmt.Fprintf(&buf, "\tFrequency() = %d\n", t.frequency)
	t.walk(Code{}, func(cs *CodedSymbol[T], hc Code) {
		fmt.Fprintf(&buf, "\tLeaf(%s) = {%v, %d}\n", hc, cs.Value, cs.Frequency)
	})
	buf.WriteString("}\n")
	return buf.WriteTo(w)
}

func (t *Tree[T]) walk(prefix Code, fn func(*CodedSymbol[T], Code)) {
	if t.IsLeaf() {
		fn(t.symbol, prefix)
		return
	}
	t.left.walk(prefix.Append(0), fn)
	t.right.walk(prefix.Append(1), fn)
}

// type treeAndSeq + type treeHeap {{{

type treeAndSeq[T comparable] struct {
	tree *Tree[T]
	seq  uint64
}

type treeHeap[T comparable] struct {
	list []treeAndSeq[T]
	next uint64
}

func (h *treeHeap[T]) Init() {
	heap.Init(h)
}

func (h *treeHeap[T]) Len() int {
	return len(h.list)
}

func (h *treeHeap[T]) Swap(i, j int) {
	h.list[i], h.list[j] = h.list[j], h.list[i]
}

func (h *treeHeap[T]) Less(i, j int) bool {
	a, b := h.list[i], h.list[j]
	if a.tree.frequency != b.tree.frequency {
		return a.tree.frequency < b.tree.frequency
	}
	return a.seq < b.seq
}

func (h *treeHeap[T]) Push(x interface{}) {
	h.list = append(h.list, x.(treeAndSeq[T]))
}

func (h *treeHeap[T]) Pop() interface{} {
	last := uint(len(h.list)) - 1
	x := h.list[last]
	h.list = h.list[:last]
	return x
}

var _ heap.Interface = (*treeHeap[byte])(nil)

// }}}
