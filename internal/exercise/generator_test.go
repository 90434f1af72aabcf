package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmxio.com/numlab/internal/numsys"
)

func seeded(seed int64) Rand {
	return NewRand(&seed)
}

func TestGenerateConversionTaskRanges(t *testing.T) {
	r := seeded(1)
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		p := profiles[d]
		for i := 0; i < 200; i++ {
			task, err := GenerateConversionTask(r, d)
			require.NoError(t, err)

			assert.NotEmpty(t, task.ID)
			assert.Contains(t, p.pairs, basePair{task.FromBase, task.ToBase})

			v, err := numsys.Parse(task.SourceValue, task.FromBase)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, p.min)
			assert.LessOrEqual(t, v, p.max)

			want, err := numsys.Convert(task.SourceValue, task.FromBase, task.ToBase)
			require.NoError(t, err)
			assert.Equal(t, want, task.ExpectedValue)
		}
	}
}

func TestGenerateConversionTaskUnknownDifficulty(t *testing.T) {
	_, err := GenerateConversionTask(seeded(1), Difficulty("insane"))
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}

func TestSeededGenerationIsReproducible(t *testing.T) {
	a, err := GenerateConversionSet(seeded(42), Medium, 6)
	require.NoError(t, err)
	b, err := GenerateConversionSet(seeded(42), Medium, 6)
	require.NoError(t, err)

	require.Len(t, a.Tasks, 6)
	for i := range a.Tasks {
		assert.Equal(t, a.Tasks[i].ID, b.Tasks[i].ID)
		assert.Equal(t, a.Tasks[i].SourceValue, b.Tasks[i].SourceValue)
		assert.Equal(t, a.Tasks[i].FromBase, b.Tasks[i].FromBase)
		assert.Equal(t, a.Tasks[i].ToBase, b.Tasks[i].ToBase)
	}
	assert.Equal(t, a.AnswerPool, b.AnswerPool)

	c, err := GenerateComplementRounds(seeded(42), 3, 8)
	require.NoError(t, err)
	d, err := GenerateComplementRounds(seeded(42), 3, 8)
	require.NoError(t, err)
	assert.Equal(t, c, d)

	e, err := GenerateAdditionSet(seeded(42), Hard, TwosComplement)
	require.NoError(t, err)
	f, err := GenerateAdditionSet(seeded(42), Hard, TwosComplement)
	require.NoError(t, err)
	assert.Equal(t, e, f)

	ids := map[string]bool{}
	for _, task := range a.Tasks {
		assert.False(t, ids[task.ID], "task ids are distinct within a round")
		ids[task.ID] = true
	}
}

func TestGenerateConversionSet(t *testing.T) {
	set, err := GenerateConversionSet(seeded(7), Easy, 8)
	require.NoError(t, err)
	require.Len(t, set.Tasks, 8)
	require.Len(t, set.AnswerPool, 8)

	answers := make([]AnswerOption, 0, len(set.Tasks))
	for _, task := range set.Tasks {
		answers = append(answers, task.Answer())
	}
	assert.ElementsMatch(t, answers, set.AnswerPool)

	_, err = GenerateConversionSet(seeded(7), Easy, 0)
	assert.ErrorIs(t, err, ErrCount)
	_, err = GenerateConversionSet(seeded(7), Easy, MaxSetSize+1)
	assert.ErrorIs(t, err, ErrCount)
}

func TestGenerateComplementRounds(t *testing.T) {
	rounds, err := GenerateComplementRounds(seeded(3), 5, 8)
	require.NoError(t, err)
	require.Len(t, rounds, 5)

	assert.Equal(t, ModeOnes, rounds[0].Mode)
	for _, c := range rounds[1:] {
		assert.Equal(t, ModeTwos, c.Mode)
	}
	for _, c := range rounds {
		assert.Equal(t, 8, c.BitCount)
		assert.Equal(t, 8, c.SourceBits.Width())
		assert.NotZero(t, c.SourceBits.Uint())
	}

	assert.Equal(t, rounds[0].SourceBits.Invert(), rounds[0].Expected())
	assert.Equal(t, rounds[1].SourceBits.TwosComplement(), rounds[1].Expected())

	_, err = GenerateComplementRounds(seeded(3), 5, 1)
	assert.ErrorIs(t, err, ErrBitWidth)
	_, err = GenerateComplementRounds(seeded(3), 0, 8)
	assert.ErrorIs(t, err, ErrCount)
}

func TestGenerateAdditionSetPositive(t *testing.T) {
	r := seeded(11)
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		p := profiles[d]
		set, err := GenerateAdditionSet(r, d, Positive)
		require.NoError(t, err)
		require.Len(t, set.Tasks, AdditionSetSize)

		for _, task := range set.Tasks {
			assert.Contains(t, p.addBases, task.Base)
			a, err := numsys.Parse(task.OperandA, task.Base)
			require.NoError(t, err)
			b, err := numsys.Parse(task.OperandB, task.Base)
			require.NoError(t, err)
			sum, err := numsys.Parse(task.ExpectedValue, task.Base)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, a, p.addMin)
			assert.LessOrEqual(t, b, p.addMax)
			assert.Equal(t, a+b, sum)
		}
	}
}

func TestGenerateAdditionSetTwosComplement(t *testing.T) {
	widths := map[Difficulty]int{Easy: 4, Medium: 5, Hard: 8}
	r := seeded(5)
	for d, w := range widths {
		set, err := GenerateAdditionSet(r, d, TwosComplement)
		require.NoError(t, err)

		for _, task := range set.Tasks {
			assert.Equal(t, w, task.Width)
			assert.Equal(t, numsys.Binary, task.Base)
			require.Len(t, task.OperandA, w)
			require.Len(t, task.OperandB, w)
			require.Len(t, task.ExpectedValue, w)

			a, err := numsys.ParseBitVector(task.OperandA)
			require.NoError(t, err)
			b, err := numsys.ParseBitVector(task.OperandB)
			require.NoError(t, err)
			sum, err := numsys.ParseBitVector(task.ExpectedValue)
			require.NoError(t, err)

			wrapped := (a.SignedValue() + b.SignedValue()) & (int64(1)<<uint(w) - 1)
			assert.Equal(t, uint64(wrapped), sum.Uint())
		}
	}

	_, err := GenerateAdditionSet(r, Easy, ArithmeticMode("mixed"))
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestParseDifficulty(t *testing.T) {
	d, err := ParseDifficulty(" Hard ")
	require.NoError(t, err)
	assert.Equal(t, Hard, d)

	d, err = ParseDifficulty("")
	require.NoError(t, err)
	assert.Equal(t, Easy, d)

	_, err = ParseDifficulty("expert")
	assert.ErrorIs(t, err, ErrUnknownDifficulty)
}
