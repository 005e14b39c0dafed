package huffman

import (
	"errors"
	"fmt"

	"github.com/chronos-tachyon/assert"
	"golang.org/x/exp/slices"
)

var (
	// ErrTooFewSymbols is returned when an alphabet has fewer than two
	// symbols that can be coded.
	ErrTooFewSymbols = errors.New("huffman: too few symbols")

	// ErrInvalidMaxBits is returned when the maximum code length is out of
	// the range [1, MaxBitsPerCode].
	ErrInvalidMaxBits = errors.New("huffman: invalid maximum code length")
)

// Symbols is a frequency-weighted alphabet, optionally with an escape symbol
// that stands in for values outside the alphabet.  A Symbols is immutable
// once constructed.
type Symbols[T comparable] struct {
	encoded []*CodedSymbol[T]
	index   map[T]int
	escape  *CodedSymbol[T]
}

// NewSymbols constructs an alphabet without an escape symbol.  Values which
// appear more than once in freqs are merged.  Values with a count lower than
// minCount are dropped.
func NewSymbols[T comparable](freqs []Frequency[T], minCount uint64) (*Symbols[T], error) {
	return newSymbols(freqs, nil, minCount)
}

// NewSymbolsWithEscape constructs an alphabet with an escape symbol.  The
// escape symbol is kept regardless of minCount, and is given a count of at
// least 1 so that it always receives a code.  If the escape value also
// appears in freqs, the counts are merged.
func NewSymbolsWithEscape[T comparable](freqs []Frequency[T], escape Frequency[T], minCount uint64) (*Symbols[T], error) {
	return newSymbols(freqs, &escape, minCount)
}

func newSymbols[T comparable](freqs []Frequency[T], escape *Frequency[T], minCount uint64) (*Symbols[T], error) {
	merged := make([]*CodedSymbol[T], 0, len(freqs)+1)
	index := make(map[T]int, len(freqs)+1)
	add := func(f Frequency[T]) {
		if i, found := index[f.Value]; found {
			merged[i].increaseFrequency(f.Count)
			return
		}
		index[f.Value] = len(merged)
		merged = append(merged, &CodedSymbol[T]{Value: f.Value, Frequency: f.Count})
	}
	for _, f := range freqs {
		add(f)
	}
	if escape != nil {
		add(*escape)
	}

	s := &Symbols[T]{
		encoded: make([]*CodedSymbol[T], 0, len(merged)),
		index:   make(map[T]int, len(merged)),
	}
	numNonZero := 0
	for _, cs := range merged {
		isEscape := escape != nil && cs.Value == escape.Value
		if isEscape {
			if cs.Frequency == 0 {
				cs.Frequency = 1
			}
			s.escape = cs
		} else if cs.Frequency < minCount {
			continue
		}
		if cs.Frequency != 0 {
			numNonZero++
		}
		s.index[cs.Value] = len(s.encoded)
		s.encoded = append(s.encoded, cs)
	}
	assert.Assertf(len(s.index) == len(s.encoded), "symbol count mismatch: %d indexed, %d encoded", len(s.index), len(s.encoded))

	if numNonZero < 2 {
		return nil, fmt.Errorf("%w: got %d, need at least 2", ErrTooFewSymbols, numNonZero)
	}
	return s, nil
}

// Len returns the number of symbols in the alphabet, including the escape
// symbol.
func (s *Symbols[T]) Len() int {
	return len(s.encoded)
}

// Contains returns true iff the given value is in the alphabet.
func (s *Symbols[T]) Contains(value T) bool {
	_, found := s.index[value]
	return found
}

// Escape returns a copy of the escape symbol, if there is one.
func (s *Symbols[T]) Escape() (*CodedSymbol[T], bool) {
	if s.escape == nil {
		return nil, false
	}
	return s.escape.clone(), true
}

// Frequencies returns the alphabet as a list of (value, count) pairs, in
// insertion order.
func (s *Symbols[T]) Frequencies() []Frequency[T] {
	out := make([]Frequency[T], len(s.encoded))
	for i, cs := range s.encoded {
		out[i] = Frequency[T]{Value: cs.Value, Count: cs.Frequency}
	}
	return out
}

// Tree builds a Huffman tree whose height does not exceed maxBits.
//
// While the tree is too tall, the least frequent symbol other than the escape
// symbol is removed and its frequency is added to the escape symbol (if any),
// and the tree is rebuilt from scratch.  Each rebuild costs O(n log n), so
// the worst case is O(n^2 log n) for an alphabet of n symbols.
//
// The tree is built from copies of the alphabet's symbols, so the alphabet
// itself is left untouched and may be used to build any number of trees.
func (s *Symbols[T]) Tree(maxBits int) (*Tree[T], error) {
	if maxBits < 1 || maxBits > MaxBitsPerCode {
		return nil, fmt.Errorf("%w: got %d, want 1 .. %d", ErrInvalidMaxBits, maxBits, MaxBitsPerCode)
	}

	var escape *CodedSymbol[T]
	working := make([]*CodedSymbol[T], 0, len(s.encoded))
	for _, cs := range s.encoded {
		if cs.Frequency == 0 {
			continue
		}
		dupe := cs.clone()
		if cs == s.escape {
			escape = dupe
		}
		working = append(working, dupe)
	}

	for {
		if len(working) < 2 {
			return nil, fmt.Errorf("%w: no tree of height %d remains", ErrTooFewSymbols, maxBits)
		}
		tree := buildTree(working)
		if tree.Height() <= maxBits {
			return tree, nil
		}

		i := leastFrequent(working, escape)
		removed := working[i]
		working = slices.Delete(working, i, i+1)
		if escape != nil {
			escape.increaseFrequency(removed.Frequency)
		}
	}
}

// leastFrequent returns the index of the symbol with the lowest frequency,
// skipping the escape symbol.  Ties go to the earliest symbol.
func leastFrequent[T comparable](list []*CodedSymbol[T], escape *CodedSymbol[T]) int {
	best := -1
	for i, cs := range list {
		if cs == escape {
			continue
		}
		if best < 0 || cs.Frequency < list[best].Frequency {
			best = i
		}
	}
	assert.Assertf(best >= 0, "no symbol left to remove")
	return best
}
