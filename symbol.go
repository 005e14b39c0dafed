package huffman

import (
	"fmt"
)

// Frequency pairs a symbol value with the number of times it was observed.
type Frequency[T comparable] struct {
	Value T
	Count uint64
}

// Count tallies the occurrences of each distinct value in a sample.  The
// result lists the values in order of first occurrence.
func Count[T comparable](values []T) []Frequency[T] {
	index := make(map[T]int, len(values))
	out := make([]Frequency[T], 0, len(values))
	for _, value := range values {
		if i, found := index[value]; found {
			out[i].Count = addSaturating(out[i].Count, 1)
			continue
		}
		index[value] = len(out)
		out = append(out, Frequency[T]{Value: value, Count: 1})
	}
	return out
}

// CodedSymbol is a symbol value, its observed frequency, and (once the tree
// that owns it has been encoded) its Code.
//
// Two CodedSymbols are the same symbol iff their values are equal; the
// frequency and code take no part in the comparison.
type CodedSymbol[T comparable] struct {
	Value     T
	Frequency uint64

	code    Code
	hasCode bool
}

// Code returns the Code assigned to this symbol, if any.
func (cs *CodedSymbol[T]) Code() (Code, bool) {
	return cs.code, cs.hasCode
}

// Equal returns true iff both symbols have the same value.
func (cs *CodedSymbol[T]) Equal(other *CodedSymbol[T]) bool {
	return cs.Value == other.Value
}

// String returns the string representation of this symbol.
func (cs *CodedSymbol[T]) String() string {
	if !cs.hasCode {
		return fmt.Sprintf("{%v, %d, nil}", cs.Value, cs.Frequency)
	}
	return fmt.Sprintf("{%v, %d, %s}", cs.Value, cs.Frequency, cs.code)
}

func (cs *CodedSymbol[T]) increaseFrequency(delta uint64) {
	cs.Frequency = addSaturating(cs.Frequency, delta)
}

func (cs *CodedSymbol[T]) setCode(hc Code) {
	cs.code = hc
	cs.hasCode = true
}

func (cs *CodedSymbol[T]) clone() *CodedSymbol[T] {
	dupe := *cs
	return &dupe
}
