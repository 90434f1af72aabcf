package numsys

import "fmt"

// Invert flips every bit (one's complement).
func (b BitVector) Invert() BitVector {
	return wrap(^b.value, b.width)
}

// AddOne increments b, discarding the carry out of the MSB.
func (b BitVector) AddOne() BitVector {
	return wrap(b.value+1, b.width)
}

// TwosComplement returns Invert().AddOne(). The minimum representable value
// maps to itself.
func (b BitVector) TwosComplement() BitVector {
	return b.Invert().AddOne()
}

// SignedValue interprets b as a two's-complement integer.
func (b BitVector) SignedValue() int64 {
	if b.MSB() == 0 {
		return int64(b.value)
	}
	// sign-extend into the bits above width
	return int64(b.value | ^mask(b.width))
}

// Invert is the package-level form of BitVector.Invert.
func Invert(bits BitVector) BitVector { return bits.Invert() }

// AddOne is the package-level form of BitVector.AddOne.
func AddOne(bits BitVector) BitVector { return bits.AddOne() }

// TwosComplement is the package-level form of BitVector.TwosComplement.
func TwosComplement(bits BitVector) BitVector { return bits.TwosComplement() }

// SignedValueOf is the package-level form of BitVector.SignedValue.
func SignedValueOf(bits BitVector) int64 { return bits.SignedValue() }

// MinSigned and MaxSigned bound the two's-complement range of width.
func MinSigned(width int) int64 {
	if width >= MaxWidth {
		return -1 << 63
	}
	return -(int64(1) << uint(width-1))
}

func MaxSigned(width int) int64 {
	if width >= MaxWidth {
		return 1<<63 - 1
	}
	return int64(1)<<uint(width-1) - 1
}

// FromSigned encodes n in width-bit two's complement. Values outside the
// representable range are rejected with ErrOverflow.
func FromSigned(n int64, width int) (BitVector, error) {
	if err := checkWidth(width); err != nil {
		return BitVector{}, err
	}
	if n < MinSigned(width) || n > MaxSigned(width) {
		return BitVector{}, fmt.Errorf("%w: %d outside [%d, %d]", ErrOverflow, n, MinSigned(width), MaxSigned(width))
	}
	return wrap(uint64(n), width), nil
}

// AddSigned adds two equal-width vectors as two's-complement integers and
// wraps the sum modulo 2^width. Overflow is not reported.
func AddSigned(a, b BitVector) (BitVector, error) {
	if a.width != b.width {
		return BitVector{}, fmt.Errorf("%w: %d and %d", ErrWidthMismatch, a.width, b.width)
	}
	if err := checkWidth(a.width); err != nil {
		return BitVector{}, err
	}
	sum := a.SignedValue() + b.SignedValue()
	return wrap(uint64(sum), a.width), nil
}

// Overflowed reports whether sum = a + b left the signed range, i.e. both
// operands share a sign that the sum does not.
func Overflowed(a, b, sum BitVector) bool {
	return a.MSB() == b.MSB() && sum.MSB() != a.MSB()
}
