// Package numsys implements the number-representation core: radix
// conversion, fixed-width bit vectors, octal/hex bit grouping and
// complement arithmetic with hardware-style wraparound.
//
// Every function is pure and safe for concurrent use.
package numsys

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Radix is one of the bases the trainer works with.
type Radix int

const (
	Binary      Radix = 2
	Octal       Radix = 8
	Decimal     Radix = 10
	Hexadecimal Radix = 16
)

// Radixes lists every supported radix in ascending order.
var Radixes = []Radix{Binary, Octal, Decimal, Hexadecimal}

// Valid reports whether r is in the supported set.
func (r Radix) Valid() bool {
	switch r {
	case Binary, Octal, Decimal, Hexadecimal:
		return true
	default:
		return false
	}
}

func (r Radix) String() string {
	switch r {
	case Binary:
		return "binary"
	case Octal:
		return "octal"
	case Decimal:
		return "decimal"
	case Hexadecimal:
		return "hexadecimal"
	default:
		return fmt.Sprintf("radix(%d)", int(r))
	}
}

// ParseRadix validates an integer base.
func ParseRadix(n int) (Radix, error) {
	r := Radix(n)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedRadix, n)
	}
	return r, nil
}

// digitValue maps an ASCII digit or letter to its value, or -1.
func digitValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	default:
		return -1
	}
}

// Parse reads a numeral written in radix into a non-negative integer.
// Hex letters are case-insensitive. Signs, prefixes and whitespace are
// rejected as invalid digits.
func Parse(s string, radix Radix) (int64, error) {
	if !radix.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedRadix, int(radix))
	}
	if s == "" {
		return 0, ErrEmptyNumeral
	}

	base := int64(radix)
	var v int64
	for i, c := range s {
		d := digitValue(c)
		if d < 0 || int64(d) >= base {
			return 0, &InvalidDigitError{Input: s, Pos: i, Char: c, Radix: radix}
		}
		if v > (math.MaxInt64-int64(d))/base {
			return 0, fmt.Errorf("%w: %q in base %d", ErrOverflow, s, int(radix))
		}
		v = v*base + int64(d)
	}
	return v, nil
}

// Render writes v in its canonical form for radix: uppercase hex letters,
// no prefix and no leading zeros.
func Render(v int64, radix Radix) (string, error) {
	if !radix.Valid() {
		return "", fmt.Errorf("%w: %d", ErrUnsupportedRadix, int(radix))
	}
	if v < 0 {
		return "", fmt.Errorf("%w: %d", ErrDomain, v)
	}
	return strings.ToUpper(strconv.FormatInt(v, int(radix))), nil
}

// Convert re-renders a numeral from one radix into another.
func Convert(s string, from, to Radix) (string, error) {
	v, err := Parse(s, from)
	if err != nil {
		return "", err
	}
	return Render(v, to)
}

// Digits returns the digit sequence of v in radix, most significant first.
func Digits(v int64, radix Radix) ([]int, error) {
	if !radix.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRadix, int(radix))
	}
	if v < 0 {
		return nil, fmt.Errorf("%w: %d", ErrDomain, v)
	}
	if v == 0 {
		return []int{0}, nil
	}
	var out []int
	for base := int64(radix); v > 0; v /= base {
		out = append(out, int(v%base))
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ParseDigits reads the digits of a numeral without evaluating it, so
// leading zeros survive.
func ParseDigits(s string, radix Radix) ([]int, error) {
	if !radix.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRadix, int(radix))
	}
	if s == "" {
		return nil, ErrEmptyNumeral
	}
	out := make([]int, 0, len(s))
	for i, c := range []rune(s) {
		d := digitValue(c)
		if d < 0 || d >= int(radix) {
			return nil, &InvalidDigitError{Input: s, Pos: i, Char: c, Radix: radix}
		}
		out = append(out, d)
	}
	return out, nil
}

// FromDigits evaluates a digit sequence positionally.
func FromDigits(digits []int, radix Radix) (int64, error) {
	if !radix.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedRadix, int(radix))
	}
	if len(digits) == 0 {
		return 0, ErrEmptyNumeral
	}
	base := int64(radix)
	var v int64
	for i, d := range digits {
		if d < 0 || int64(d) >= base {
			return 0, &InvalidDigitError{Input: digitString(digits), Pos: i, Char: digitRune(d), Radix: radix}
		}
		if v > (math.MaxInt64-int64(d))/base {
			return 0, fmt.Errorf("%w: %d digits in base %d", ErrOverflow, len(digits), int(radix))
		}
		v = v*base + int64(d)
	}
	return v, nil
}

func digitRune(d int) rune {
	switch {
	case d >= 0 && d <= 9:
		return rune('0' + d)
	case d >= 10 && d <= 35:
		return rune('A' + d - 10)
	default:
		return '?'
	}
}

func digitString(digits []int) string {
	var b strings.Builder
	for _, d := range digits {
		b.WriteRune(digitRune(d))
	}
	return b.String()
}
