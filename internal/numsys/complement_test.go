package numsys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvertAndTwosComplement(t *testing.T) {
	thirteen := MustBitVector(0, 0, 0, 0, 1, 1, 0, 1)

	assert.Equal(t, MustBitVector(1, 1, 1, 1, 0, 0, 1, 0), Invert(thirteen))
	assert.Equal(t, MustBitVector(1, 1, 1, 1, 0, 0, 1, 1), TwosComplement(thirteen))
	assert.Equal(t, int64(-13), SignedValueOf(TwosComplement(thirteen)))
	assert.Equal(t, uint64(243), FromBits(TwosComplement(thirteen)))
}

func TestAddOneWraps(t *testing.T) {
	assert.Equal(t, MustBitVector(0, 0, 0, 0), AddOne(MustBitVector(1, 1, 1, 1)))
	assert.Equal(t, MustBitVector(1, 0, 0, 0), AddOne(MustBitVector(0, 1, 1, 1)))

	all, err := ToBits(0, 64)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), FromBits(AddOne(Invert(all))))
}

func TestTwosComplementInvolution(t *testing.T) {
	for w := 1; w <= 8; w++ {
		minValue := wrap(uint64(1)<<uint(w-1), w)
		for n := int64(0); n < 1<<uint(w); n++ {
			v, err := ToBits(n, w)
			require.NoError(t, err)
			if v == minValue {
				assert.Equal(t, v, TwosComplement(v), "minimum is its own complement (w=%d)", w)
				continue
			}
			assert.Equal(t, v, TwosComplement(TwosComplement(v)), "n=%d w=%d", n, w)
		}
	}
}

func TestOnesComplementSum(t *testing.T) {
	for w := 1; w <= 8; w++ {
		for n := int64(0); n < 1<<uint(w); n++ {
			v, err := ToBits(n, w)
			require.NoError(t, err)
			assert.Equal(t, uint64(1)<<uint(w)-1, FromBits(v)+FromBits(Invert(v)))
		}
	}
}

func TestSignedValue(t *testing.T) {
	tests := []struct {
		bits string
		want int64
	}{
		{"0111", 7},
		{"1000", -8},
		{"1111", -1},
		{"0000", 0},
		{"10000000", -128},
		{"01111111", 127},
		{"1", -1},
	}
	for _, tt := range tests {
		t.Run(tt.bits, func(t *testing.T) {
			bv, err := ParseBitVector(tt.bits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, bv.SignedValue())
		})
	}

	full, err := FromSigned(-1<<63, 64)
	require.NoError(t, err)
	assert.Equal(t, int64(-1<<63), full.SignedValue())
}

func TestFromSigned(t *testing.T) {
	bv, err := FromSigned(-13, 8)
	require.NoError(t, err)
	assert.Equal(t, "11110011", bv.String())

	_, err = FromSigned(8, 4)
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = FromSigned(-9, 4)
	assert.ErrorIs(t, err, ErrOverflow)

	bv, err = FromSigned(-8, 4)
	require.NoError(t, err)
	assert.Equal(t, "1000", bv.String())
}

func TestAddSigned(t *testing.T) {
	sum, err := AddSigned(MustBitVector(0, 1, 1, 1), MustBitVector(0, 0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, MustBitVector(1, 0, 0, 0), sum)
	assert.Equal(t, int64(-8), sum.SignedValue())
	assert.True(t, Overflowed(MustBitVector(0, 1, 1, 1), MustBitVector(0, 0, 0, 1), sum))

	sum, err = AddSigned(MustBitVector(1, 1, 1, 0), MustBitVector(0, 0, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.SignedValue())
	assert.False(t, Overflowed(MustBitVector(1, 1, 1, 0), MustBitVector(0, 0, 1, 1), sum))

	sum, err = AddSigned(MustBitVector(1, 0, 0, 0), MustBitVector(1, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, MustBitVector(0, 0, 0, 0), sum)

	_, err = AddSigned(MustBitVector(0, 1), MustBitVector(0, 0, 1))
	assert.ErrorIs(t, err, ErrWidthMismatch)
}

func TestAddSignedMatchesModularSum(t *testing.T) {
	const w = 5
	for a := MinSigned(w); a <= MaxSigned(w); a++ {
		for b := MinSigned(w); b <= MaxSigned(w); b++ {
			av, err := FromSigned(a, w)
			require.NoError(t, err)
			bv, err := FromSigned(b, w)
			require.NoError(t, err)
			sum, err := AddSigned(av, bv)
			require.NoError(t, err)
			assert.Equal(t, uint64(a+b)&(1<<w-1), FromBits(sum))
		}
	}
}
