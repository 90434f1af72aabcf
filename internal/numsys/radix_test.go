package numsys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		radix Radix
		want  int64
	}{
		{"hex upper", "FF", Hexadecimal, 255},
		{"hex lower", "ff", Hexadecimal, 255},
		{"hex mixed", "aB", Hexadecimal, 171},
		{"binary", "1101", Binary, 13},
		{"octal", "17", Octal, 15},
		{"decimal", "4095", Decimal, 4095},
		{"leading zeros", "0007", Octal, 7},
		{"zero", "0", Binary, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.radix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsInvalidDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		radix Radix
		pos   int
		char  rune
	}{
		{"eight in octal", "178", Octal, 2, '8'},
		{"two in binary", "102", Binary, 2, '2'},
		{"non-hex letter", "1G", Hexadecimal, 1, 'G'},
		{"hex letter in decimal", "1A", Decimal, 1, 'A'},
		{"prefix", "0x1F", Hexadecimal, 1, 'x'},
		{"sign", "-5", Decimal, 0, '-'},
		{"space", " 5", Decimal, 0, ' '},
		{"non-ascii counts as one character", "12½", Decimal, 2, '½'},
		{"fullwidth digit", "1１", Decimal, 1, '１'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, tt.radix)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDigit))

			var digitErr *InvalidDigitError
			require.ErrorAs(t, err, &digitErr)
			assert.Equal(t, tt.pos, digitErr.Pos)
			assert.Equal(t, tt.char, digitErr.Char)
			assert.Equal(t, tt.radix, digitErr.Radix)
		})
	}
}

func TestParseEdgeCases(t *testing.T) {
	_, err := Parse("", Decimal)
	assert.ErrorIs(t, err, ErrEmptyNumeral)

	_, err = Parse("10", Radix(7))
	assert.ErrorIs(t, err, ErrUnsupportedRadix)

	_, err = Parse("FFFFFFFFFFFFFFFFF", Hexadecimal)
	assert.ErrorIs(t, err, ErrOverflow)

	v, err := Parse("7FFFFFFFFFFFFFFF", Hexadecimal)
	require.NoError(t, err)
	assert.Equal(t, int64(1<<63-1), v)
}

func TestRender(t *testing.T) {
	for _, r := range Radixes {
		got, err := Render(0, r)
		require.NoError(t, err)
		assert.Equal(t, "0", got, "zero in %v", r)
	}

	got, err := Render(255, Hexadecimal)
	require.NoError(t, err)
	assert.Equal(t, "FF", got)

	got, err = Render(13, Binary)
	require.NoError(t, err)
	assert.Equal(t, "1101", got)

	got, err = Render(64, Octal)
	require.NoError(t, err)
	assert.Equal(t, "100", got)

	_, err = Render(-1, Decimal)
	assert.ErrorIs(t, err, ErrDomain)
}

func TestRenderParseRoundTrip(t *testing.T) {
	inputs := map[Radix][]string{
		Binary:      {"0", "1", "00101", "11111111"},
		Octal:       {"0", "017", "777", "1234567"},
		Decimal:     {"0", "42", "000123", "65535"},
		Hexadecimal: {"0", "ff", "00BEEF", "7fffffff"},
	}
	for r, values := range inputs {
		for _, s := range values {
			v, err := Parse(s, r)
			require.NoError(t, err)
			rendered, err := Render(v, r)
			require.NoError(t, err)
			again, err := Parse(rendered, r)
			require.NoError(t, err)
			assert.Equal(t, v, again, "%s in %v", s, r)
		}
	}
}

func TestConvert(t *testing.T) {
	got, err := Convert("11111111", Binary, Hexadecimal)
	require.NoError(t, err)
	assert.Equal(t, "FF", got)

	got, err = Convert("ff", Hexadecimal, Octal)
	require.NoError(t, err)
	assert.Equal(t, "377", got)

	_, err = Convert("9", Octal, Decimal)
	assert.ErrorIs(t, err, ErrInvalidDigit)
}

func TestDigits(t *testing.T) {
	d, err := Digits(13, Octal)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5}, d)

	d, err = Digits(0, Hexadecimal)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, d)

	v, err := FromDigits([]int{15, 15}, Hexadecimal)
	require.NoError(t, err)
	assert.Equal(t, int64(255), v)

	_, err = FromDigits([]int{1, 8}, Octal)
	assert.ErrorIs(t, err, ErrInvalidDigit)

	_, err = FromDigits(nil, Octal)
	assert.ErrorIs(t, err, ErrEmptyNumeral)
}

func TestParseDigits(t *testing.T) {
	got, err := ParseDigits("00fA", Hexadecimal)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 15, 10}, got)

	_, err = ParseDigits("", Octal)
	assert.ErrorIs(t, err, ErrEmptyNumeral)

	_, err = ParseDigits("7", Radix(3))
	assert.ErrorIs(t, err, ErrUnsupportedRadix)

	// positions are character indexes, not byte offsets
	_, err = ParseDigits("é8", Octal)
	var digitErr *InvalidDigitError
	require.ErrorAs(t, err, &digitErr)
	assert.Equal(t, 0, digitErr.Pos)

	_, err = ParseDigits("7é8", Octal)
	require.ErrorAs(t, err, &digitErr)
	assert.Equal(t, 1, digitErr.Pos)
	assert.Equal(t, 'é', digitErr.Char)
}

func TestParseRadix(t *testing.T) {
	r, err := ParseRadix(16)
	require.NoError(t, err)
	assert.Equal(t, Hexadecimal, r)

	_, err = ParseRadix(3)
	assert.ErrorIs(t, err, ErrUnsupportedRadix)
}
