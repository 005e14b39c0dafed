// Package huffman implements Huffman codes over arbitrary alphabets: runes,
// strings, or any other comparable type.
//
// An alphabet is built from observed frequencies with NewSymbols or
// NewSymbolsWithEscape.  NewCodec turns it into a code whose longest code is
// bounded by a maximum bit length, by pruning the rarest symbols until the
// tree fits.  Values without a code of their own can still be represented
// through the escape symbol, followed by an application-defined raw encoding.
//
// Decoding is table-driven: the Codec precomputes, for every residual bit
// prefix, the effect of each of the 256 possible next bytes, so that decoding
// costs one table lookup per input byte.
//
// References:
//
//     <https://en.wikipedia.org/wiki/Huffman_coding>
//
package huffman
