package numsys

import "math/bits"

// groupBits splits b into k-bit digits MSB first, after left-padding to a
// multiple of k, and strips leading zero digits down to at least one.
func groupBits(b BitVector, k int) []int {
	n := (b.width + k - 1) / k
	if n == 0 {
		return []int{0}
	}
	digits := make([]int, n)
	v := b.value
	for i := n - 1; i >= 0; i-- {
		digits[i] = int(v & (1<<uint(k) - 1))
		v >>= uint(k)
	}
	first := 0
	for first < len(digits)-1 && digits[first] == 0 {
		first++
	}
	return digits[first:]
}

// expandDigits concatenates k-bit groups and fits the result into width.
// Leading zero bits are dropped freely; a set bit beyond width is a
// WidthError.
func expandDigits(digits []int, k int, radix Radix, width int) (BitVector, error) {
	if err := checkWidth(width); err != nil {
		return BitVector{}, err
	}
	if len(digits) == 0 {
		return BitVector{}, ErrEmptyNumeral
	}
	var v uint64
	need := 0
	for i, d := range digits {
		if d < 0 || d >= int(radix) {
			return BitVector{}, &InvalidDigitError{Input: digitString(digits), Pos: i, Char: digitRune(d), Radix: radix}
		}
		if need == 0 && d == 0 {
			continue
		}
		if need == 0 {
			need = bits.Len(uint(d))
		} else {
			need += k
		}
		if need > MaxWidth {
			return BitVector{}, &WidthError{Need: need, Width: width}
		}
		v = v<<uint(k) | uint64(d)
	}
	if need > width {
		return BitVector{}, &WidthError{Need: need, Width: width}
	}
	return BitVector{width: width, value: v}, nil
}

// BitsToOctalDigits groups b into octal digits, 3 bits each.
func BitsToOctalDigits(b BitVector) []int {
	return groupBits(b, 3)
}

// OctalDigitsToBits expands octal digits into a width-bit vector. It fails
// with a *WidthError instead of truncating significant bits.
func OctalDigitsToBits(digits []int, width int) (BitVector, error) {
	return expandDigits(digits, 3, Octal, width)
}

// OctalDigitsToDecimal evaluates octal digits positionally.
func OctalDigitsToDecimal(digits []int) (int64, error) {
	return FromDigits(digits, Octal)
}

// BitsToHexDigits groups b into hex digits, 4 bits each.
func BitsToHexDigits(b BitVector) []int {
	return groupBits(b, 4)
}

// HexDigitsToBits expands hex digits into a width-bit vector.
func HexDigitsToBits(digits []int, width int) (BitVector, error) {
	return expandDigits(digits, 4, Hexadecimal, width)
}
