package numsys

import (
	"errors"
	"fmt"
)

// Error types for numsys operations
var (
	ErrInvalidDigit     = errors.New("invalid digit for radix")
	ErrEmptyNumeral     = errors.New("empty numeral")
	ErrDomain           = errors.New("value outside the non-negative domain")
	ErrOverflow         = errors.New("value does not fit in the requested width")
	ErrWidth            = errors.New("invalid bit width")
	ErrWidthMismatch    = errors.New("bit vectors have different widths")
	ErrUnsupportedRadix = errors.New("unsupported radix")
)

// InvalidDigitError reports the first character that is not a digit of Radix.
type InvalidDigitError struct {
	Input string
	Pos   int
	Char  rune
	Radix Radix
}

func (e *InvalidDigitError) Error() string {
	return fmt.Sprintf("invalid digit %q at position %d for base %d", e.Char, e.Pos, int(e.Radix))
}

func (e *InvalidDigitError) Unwrap() error { return ErrInvalidDigit }

// WidthError is returned when expanding a digit sequence would drop set bits.
type WidthError struct {
	Need  int
	Width int
}

func (e *WidthError) Error() string {
	return fmt.Sprintf("value needs %d bits, width is %d", e.Need, e.Width)
}

func (e *WidthError) Unwrap() error { return ErrWidth }
