package numsys

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxWidth is the widest bit vector supported.
const MaxWidth = 64

// BitVector is a fixed-width sequence of bits, most significant first.
// The width travels with the value, so two vectors are equal only when
// both width and bits match. The zero value is not a valid vector.
type BitVector struct {
	width int
	value uint64
}

func mask(width int) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}
	return (uint64(1) << uint(width)) - 1
}

func checkWidth(width int) error {
	if width < 1 || width > MaxWidth {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrWidth, width, MaxWidth)
	}
	return nil
}

// wrap keeps the low width bits of v.
func wrap(v uint64, width int) BitVector {
	return BitVector{width: width, value: v & mask(width)}
}

// NewBitVector builds a vector from individual bits, MSB first.
func NewBitVector(bits ...uint8) (BitVector, error) {
	if err := checkWidth(len(bits)); err != nil {
		return BitVector{}, err
	}
	var v uint64
	for i, b := range bits {
		if b > 1 {
			return BitVector{}, &InvalidDigitError{Input: bitsString(bits), Pos: i, Char: digitRune(int(b)), Radix: Binary}
		}
		v = v<<1 | uint64(b)
	}
	return BitVector{width: len(bits), value: v}, nil
}

// MustBitVector is NewBitVector that panics on error. Intended for tests and
// fixed tables.
func MustBitVector(bits ...uint8) BitVector {
	bv, err := NewBitVector(bits...)
	if err != nil {
		panic(err)
	}
	return bv
}

// ParseBitVector reads a string of '0' and '1'; its length is the width.
func ParseBitVector(s string) (BitVector, error) {
	if s == "" {
		return BitVector{}, ErrEmptyNumeral
	}
	bits := make([]uint8, 0, len(s))
	for i, c := range s {
		switch c {
		case '0':
			bits = append(bits, 0)
		case '1':
			bits = append(bits, 1)
		default:
			return BitVector{}, &InvalidDigitError{Input: s, Pos: i, Char: c, Radix: Binary}
		}
	}
	return NewBitVector(bits...)
}

// ToBits encodes n as an unsigned width-bit vector. Values that need more
// than width bits are rejected with ErrOverflow rather than truncated.
func ToBits(n int64, width int) (BitVector, error) {
	if err := checkWidth(width); err != nil {
		return BitVector{}, err
	}
	if n < 0 {
		return BitVector{}, fmt.Errorf("%w: %d", ErrDomain, n)
	}
	if uint64(n) > mask(width) {
		return BitVector{}, fmt.Errorf("%w: %d needs more than %d bits", ErrOverflow, n, width)
	}
	return BitVector{width: width, value: uint64(n)}, nil
}

// FromBits interprets bits as an unsigned binary number.
func FromBits(bits BitVector) uint64 {
	return bits.value
}

// Width returns the number of bits.
func (b BitVector) Width() int { return b.width }

// Uint returns the unsigned value.
func (b BitVector) Uint() uint64 { return b.value }

// IsZero reports whether b is the zero value (no width).
func (b BitVector) IsZero() bool { return b.width == 0 }

// Bit returns the bit at position i, counting from the MSB at 0.
func (b BitVector) Bit(i int) uint8 {
	if i < 0 || i >= b.width {
		panic(fmt.Sprintf("numsys: bit index %d out of range for width %d", i, b.width))
	}
	return uint8(b.value >> uint(b.width-1-i) & 1)
}

// Bits returns a fresh slice of the bits, MSB first.
func (b BitVector) Bits() []uint8 {
	out := make([]uint8, b.width)
	for i := range out {
		out[i] = b.Bit(i)
	}
	return out
}

// MSB returns the most significant bit.
func (b BitVector) MSB() uint8 {
	if b.width == 0 {
		return 0
	}
	return b.Bit(0)
}

func (b BitVector) String() string {
	var sb strings.Builder
	sb.Grow(b.width)
	for i := 0; i < b.width; i++ {
		sb.WriteByte('0' + b.Bit(i))
	}
	return sb.String()
}

// MarshalJSON encodes the vector as its bit string.
func (b BitVector) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts a bit string such as "00001101".
func (b *BitVector) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	bv, err := ParseBitVector(s)
	if err != nil {
		return err
	}
	*b = bv
	return nil
}

func bitsString(bits []uint8) string {
	var sb strings.Builder
	for _, b := range bits {
		sb.WriteRune(digitRune(int(b)))
	}
	return sb.String()
}
