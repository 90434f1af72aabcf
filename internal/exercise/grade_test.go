package exercise

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vmxio.com/numlab/internal/numsys"
)

func TestGradeConversion(t *testing.T) {
	tasks := []Task{
		{ID: "a", FromBase: numsys.Decimal, ToBase: numsys.Hexadecimal, SourceValue: "255", ExpectedValue: "FF"},
		{ID: "b", FromBase: numsys.Binary, ToBase: numsys.Decimal, SourceValue: "1101", ExpectedValue: "13"},
		{ID: "c", FromBase: numsys.Decimal, ToBase: numsys.Binary, SourceValue: "2", ExpectedValue: "10"},
	}
	answers := map[string]AnswerOption{
		"a": {Value: "FF", Base: numsys.Hexadecimal},
		"b": {Value: "13", Base: numsys.Octal}, // right digits, wrong base
	}

	res := GradeConversion(tasks, answers, Medium)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.InDelta(t, 33.33, res.Accuracy, 0.01)
	assert.Equal(t, Medium.Points(), res.Points)
	assert.True(t, res.Items[0].Correct)
	assert.False(t, res.Items[1].Correct)
	assert.Equal(t, "", res.Items[2].Submitted)
}

func TestGradeAdditionFlagsOverflow(t *testing.T) {
	tasks := []AdditionTask{
		{ID: "x", Mode: TwosComplement, Base: numsys.Binary, Width: 4, OperandA: "0111", OperandB: "0001", ExpectedValue: "1000"},
		{ID: "y", Mode: TwosComplement, Base: numsys.Binary, Width: 4, OperandA: "1110", OperandB: "0011", ExpectedValue: "0001"},
	}
	answers := map[string]AnswerOption{
		"x": {Value: "1000", Base: numsys.Binary},
		"y": {Value: "1", Base: numsys.Binary},
	}

	res := GradeAddition(tasks, answers, Easy)
	assert.Equal(t, 1, res.Correct)
	assert.True(t, res.Items[0].Overflow)
	assert.False(t, res.Items[1].Overflow)
	assert.False(t, res.Items[1].Correct, "sum must keep its width")
}

func TestGradeComplement(t *testing.T) {
	rounds := []ComplementRound{
		{ID: "r1", Mode: ModeOnes, SourceBits: numsys.MustBitVector(0, 0, 0, 0, 1, 1, 0, 1), BitCount: 8},
		{ID: "r2", Mode: ModeTwos, SourceBits: numsys.MustBitVector(0, 0, 0, 0, 1, 1, 0, 1), BitCount: 8},
		{ID: "r3", Mode: ModeTwos, SourceBits: numsys.MustBitVector(1, 0, 0, 0), BitCount: 4},
	}
	answers := map[string]string{
		"r1": "11110010",
		"r2": " 11110011 ",
		"r3": "0111",
	}

	res := GradeComplement(rounds, answers)
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, 2*ComplementPoints, res.Points)
	assert.Equal(t, "1000", res.Items[2].Expected)
}
