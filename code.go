package huffman

import (
	"fmt"
	"strconv"
)

// MaxBitsPerCode is the longest Code that can be represented.
const MaxBitsPerCode = 32

// Code represents a sequence of bits.
type Code struct {
	// Size holds the number of valid bits.
	Size byte

	// Bits holds the actual values of the bits.  Of the Size low bits, the
	// most significant is the first bit, which is also the order in which
	// the bits appear in an encoded stream.
	Bits uint32
}

// MakeCode is a convenience function that constructs a Code.
func MakeCode(size byte, bits uint32) Code {
	return Code{Size: size, Bits: bits & mask(size)}
}

// ParseCode constructs a Code from a string of '0' and '1' characters, first
// bit first.
func ParseCode(str string) (Code, error) {
	if len(str) > MaxBitsPerCode {
		return Code{}, fmt.Errorf("code %q is too long: got %d bits, max %d", str, len(str), MaxBitsPerCode)
	}
	var hc Code
	for i := 0; i < len(str); i++ {
		switch str[i] {
		case '0':
			hc = hc.Append(0)
		case '1':
			hc = hc.Append(1)
		default:
			return Code{}, fmt.Errorf("invalid character %q at index %d in code %q", str[i], i, str)
		}
	}
	return hc, nil
}

// Append returns the Code formed by adding one more bit to the end of this
// Code.
func (hc Code) Append(bit uint32) Code {
	return Code{Size: hc.Size + 1, Bits: (hc.Bits << 1) | (bit & 1)}
}

// Bit returns the i'th bit of this Code, counting from the first bit.
func (hc Code) Bit(i byte) uint32 {
	return (hc.Bits >> (hc.Size - 1 - i)) & 1
}

// IsPrefixOf returns true iff the bits of this Code are the leading bits of
// other.  Every Code is a prefix of itself.
func (hc Code) IsPrefixOf(other Code) bool {
	if hc.Size > other.Size {
		return false
	}
	return other.Bits>>(other.Size-hc.Size) == hc.Bits
}

// Compare orders Codes by size, then by bits.  It returns -1, 0, or +1.
func (hc Code) Compare(other Code) int {
	switch {
	case hc.Size < other.Size:
		return -1
	case hc.Size > other.Size:
		return 1
	case hc.Bits < other.Bits:
		return -1
	case hc.Bits > other.Bits:
		return 1
	default:
		return 0
	}
}

// Write writes the bits of this Code to the given BitWriter.
func (hc Code) Write(w BitWriter) error {
	if hc.Size == 0 {
		return nil
	}
	return w.WriteBits(uint64(hc.Bits), hc.Size)
}

// String returns the string representation of this Code.
func (hc Code) String() string {
	if hc.Size == 0 {
		return "\"\""
	}
	format := "%0" + strconv.FormatUint(uint64(hc.Size), 10) + "b"
	return strconv.Quote(fmt.Sprintf(format, hc.Bits))
}

var _ fmt.Stringer = Code{}

func mask(size byte) uint32 {
	if size >= 32 {
		return ^uint32(0)
	}
	return (uint32(1) << size) - 1
}
