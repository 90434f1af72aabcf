package numsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsToOctalDigits(t *testing.T) {
	assert.Equal(t, []int{1, 5}, BitsToOctalDigits(MustBitVector(0, 0, 0, 0, 1, 1, 0, 1)))
	assert.Equal(t, []int{0}, BitsToOctalDigits(MustBitVector(0, 0, 0, 0)))
	assert.Equal(t, []int{3, 7, 7}, BitsToOctalDigits(MustBitVector(1, 1, 1, 1, 1, 1, 1, 1)))
	assert.Equal(t, []int{1}, BitsToOctalDigits(MustBitVector(1)))
}

func TestOctalDigitsToBits(t *testing.T) {
	bv, err := OctalDigitsToBits([]int{1, 5}, 8)
	require.NoError(t, err)
	assert.Equal(t, "00001101", bv.String())

	bv, err = OctalDigitsToBits([]int{0, 0, 1, 5}, 4)
	require.NoError(t, err)
	assert.Equal(t, "1101", bv.String(), "leading zero bits are dropped without loss")

	_, err = OctalDigitsToBits([]int{3, 7, 7}, 7)
	var widthErr *WidthError
	require.ErrorAs(t, err, &widthErr)
	assert.Equal(t, 8, widthErr.Need)
	assert.Equal(t, 7, widthErr.Width)
	assert.ErrorIs(t, err, ErrWidth)

	_, err = OctalDigitsToBits([]int{1, 8}, 8)
	assert.ErrorIs(t, err, ErrInvalidDigit)

	_, err = OctalDigitsToBits(nil, 8)
	assert.ErrorIs(t, err, ErrEmptyNumeral)
}

func TestOctalRoundTrip(t *testing.T) {
	const width = 12
	for n := int64(0); n < 1<<width; n++ {
		digits, err := Digits(n, Octal)
		require.NoError(t, err)
		bv, err := OctalDigitsToBits(digits, width)
		require.NoError(t, err)
		assert.Equal(t, digits, BitsToOctalDigits(bv))
		assert.Equal(t, uint64(n), FromBits(bv))
	}
}

func TestOctalDigitsToDecimal(t *testing.T) {
	v, err := OctalDigitsToDecimal([]int{0, 1, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(13), v)

	v, err = OctalDigitsToDecimal([]int{7, 7, 7})
	require.NoError(t, err)
	assert.Equal(t, int64(511), v)
}

func TestHexGrouping(t *testing.T) {
	assert.Equal(t, []int{15, 15}, BitsToHexDigits(MustBitVector(1, 1, 1, 1, 1, 1, 1, 1)))
	assert.Equal(t, []int{13}, BitsToHexDigits(MustBitVector(0, 0, 0, 0, 1, 1, 0, 1)))

	bv, err := HexDigitsToBits([]int{10, 3}, 8)
	require.NoError(t, err)
	assert.Equal(t, "10100011", bv.String())

	_, err = HexDigitsToBits([]int{1, 0, 0}, 8)
	assert.ErrorIs(t, err, ErrWidth)
}
