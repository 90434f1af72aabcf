// Package exercise generates randomized number-representation rounds and
// grades submitted answers.
package exercise

import (
	"errors"
	"math/rand/v2"
	"time"

	"vmxio.com/numlab/internal/numsys"
)

var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownMode       = errors.New("unknown mode")
	ErrCount             = errors.New("invalid round count")
	ErrBitWidth          = errors.New("invalid exercise bit width")
)

const (
	// MaxSetSize caps the number of tasks generated for one round.
	MaxSetSize = 12
	// AdditionSetSize is the number of sums in an addition round.
	AdditionSetSize = 4
	// MinExerciseWidth and MaxExerciseWidth bound complement rounds.
	MinExerciseWidth = 2
	MaxExerciseWidth = 16
	// ComplementPoints is awarded per correct complement round.
	ComplementPoints = 15
)

// Rand is the randomness a generator needs. *math/rand/v2.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns a PRNG seeded with seed, or with the clock when nil.
// Generators draw task ids from it as well, so a seed repeats a round
// exactly.
func NewRand(seed *int64) *rand.Rand {
	s := uint64(time.Now().UnixNano())
	if seed != nil {
		s = uint64(*seed)
	}
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// Task is one conversion exercise. It is immutable once generated.
type Task struct {
	ID            string       `json:"id"`
	FromBase      numsys.Radix `json:"fromBase"`
	ToBase        numsys.Radix `json:"toBase"`
	SourceValue   string       `json:"sourceValue"`
	ExpectedValue string       `json:"expectedValue"`
}

// Answer is the option that solves t.
func (t Task) Answer() AnswerOption {
	return AnswerOption{Value: t.ExpectedValue, Base: t.ToBase}
}

// AnswerOption is a candidate answer from the shuffled pool.
type AnswerOption struct {
	Value string       `json:"value"`
	Base  numsys.Radix `json:"base"`
}

// Matches compares o with the answer of a task by value and base.
func (o AnswerOption) Matches(want AnswerOption) bool {
	return o == want
}

// ConversionSet is a round of conversion tasks with its answer pool.
type ConversionSet struct {
	Tasks      []Task         `json:"tasks"`
	AnswerPool []AnswerOption `json:"answerPool"`
}

// ComplementMode selects one's or two's complement.
type ComplementMode string

const (
	ModeOnes ComplementMode = "ones"
	ModeTwos ComplementMode = "twos"
)

// ComplementRound is one complement exercise. The expected result is
// derived from SourceBits on demand.
type ComplementRound struct {
	ID         string           `json:"id"`
	Mode       ComplementMode   `json:"mode"`
	SourceBits numsys.BitVector `json:"sourceBits"`
	BitCount   int              `json:"bitCount"`
}

// Expected applies the round's complement to SourceBits.
func (c ComplementRound) Expected() numsys.BitVector {
	if c.Mode == ModeOnes {
		return c.SourceBits.Invert()
	}
	return c.SourceBits.TwosComplement()
}

// ArithmeticMode selects the kind of addition round.
type ArithmeticMode string

const (
	Positive       ArithmeticMode = "positive"
	TwosComplement ArithmeticMode = "twos-complement"
)

// ParseArithmeticMode accepts positive|twos-complement; empty means Positive.
func ParseArithmeticMode(s string) (ArithmeticMode, error) {
	switch ArithmeticMode(s) {
	case "", Positive:
		return Positive, nil
	case TwosComplement:
		return TwosComplement, nil
	default:
		return "", ErrUnknownMode
	}
}

// AdditionTask is one sum. Operands and the expected value are written in
// Base; in two's-complement mode all three are Width-bit binary strings.
type AdditionTask struct {
	ID            string         `json:"id"`
	Mode          ArithmeticMode `json:"mode"`
	Base          numsys.Radix   `json:"base"`
	Width         int            `json:"width,omitempty"`
	OperandA      string         `json:"operandA"`
	OperandB      string         `json:"operandB"`
	ExpectedValue string         `json:"expectedValue"`
}

// Answer is the option that solves t.
func (t AdditionTask) Answer() AnswerOption {
	return AnswerOption{Value: t.ExpectedValue, Base: t.Base}
}

// AdditionSet is a round of sums with its answer pool.
type AdditionSet struct {
	Tasks      []AdditionTask `json:"tasks"`
	AnswerPool []AnswerOption `json:"answerPool"`
}
