package exercise

import (
	"fmt"

	"github.com/google/uuid"

	"vmxio.com/numlab/internal/numsys"
)

// randReader feeds uuid generation from a Rand so seeded rounds repeat
// their task ids too.
type randReader struct{ r Rand }

func (rr randReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rr.r.IntN(256))
	}
	return len(p), nil
}

// newID draws a version 4 uuid from r.
func newID(r Rand) string {
	id, err := uuid.NewRandomFromReader(randReader{r})
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// between draws uniformly from [lo, hi].
func between(r Rand, lo, hi int64) int64 {
	return lo + int64(r.IntN(int(hi-lo+1)))
}

// GenerateConversionTask draws one conversion task for difficulty d.
func GenerateConversionTask(r Rand, d Difficulty) (Task, error) {
	p, err := profileFor(d)
	if err != nil {
		return Task{}, err
	}
	pair := p.pairs[r.IntN(len(p.pairs))]
	v := between(r, p.min, p.max)

	src, err := numsys.Render(v, pair.from)
	if err != nil {
		return Task{}, err
	}
	want, err := numsys.Render(v, pair.to)
	if err != nil {
		return Task{}, err
	}
	return Task{
		ID:            newID(r),
		FromBase:      pair.from,
		ToBase:        pair.to,
		SourceValue:   src,
		ExpectedValue: want,
	}, nil
}

// GenerateConversionSet draws n tasks whose answers are pairwise distinct,
// as far as the value range allows, and a shuffled pool of their answers.
func GenerateConversionSet(r Rand, d Difficulty, n int) (ConversionSet, error) {
	if n < 1 || n > MaxSetSize {
		return ConversionSet{}, fmt.Errorf("%w: %d (must be 1..%d)", ErrCount, n, MaxSetSize)
	}
	seen := make(map[AnswerOption]bool, n)
	set := ConversionSet{
		Tasks:      make([]Task, 0, n),
		AnswerPool: make([]AnswerOption, 0, n),
	}
	for tries := 0; len(set.Tasks) < n; tries++ {
		t, err := GenerateConversionTask(r, d)
		if err != nil {
			return ConversionSet{}, err
		}
		if seen[t.Answer()] && tries < 50*n {
			continue
		}
		seen[t.Answer()] = true
		set.Tasks = append(set.Tasks, t)
		set.AnswerPool = append(set.AnswerPool, t.Answer())
	}
	r.Shuffle(len(set.AnswerPool), func(i, j int) {
		set.AnswerPool[i], set.AnswerPool[j] = set.AnswerPool[j], set.AnswerPool[i]
	})
	return set, nil
}

// GenerateComplementRounds draws count rounds over bitWidth-bit values. The
// first round always asks for the one's complement, every later round for
// the two's complement.
func GenerateComplementRounds(r Rand, count, bitWidth int) ([]ComplementRound, error) {
	if count < 1 || count > MaxSetSize {
		return nil, fmt.Errorf("%w: %d (must be 1..%d)", ErrCount, count, MaxSetSize)
	}
	if bitWidth < MinExerciseWidth || bitWidth > MaxExerciseWidth {
		return nil, fmt.Errorf("%w: %d (must be %d..%d)", ErrBitWidth, bitWidth, MinExerciseWidth, MaxExerciseWidth)
	}
	rounds := make([]ComplementRound, 0, count)
	for i := 0; i < count; i++ {
		mode := ModeTwos
		if i == 0 {
			mode = ModeOnes
		}
		// zero is skipped, its complements teach nothing
		v := between(r, 1, int64(1)<<uint(bitWidth)-1)
		bits, err := numsys.ToBits(v, bitWidth)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, ComplementRound{
			ID:         newID(r),
			Mode:       mode,
			SourceBits: bits,
			BitCount:   bitWidth,
		})
	}
	return rounds, nil
}

// GenerateAdditionSet draws AdditionSetSize sums for difficulty d.
func GenerateAdditionSet(r Rand, d Difficulty, mode ArithmeticMode) (AdditionSet, error) {
	p, err := profileFor(d)
	if err != nil {
		return AdditionSet{}, err
	}
	set := AdditionSet{
		Tasks:      make([]AdditionTask, 0, AdditionSetSize),
		AnswerPool: make([]AnswerOption, 0, AdditionSetSize),
	}
	for i := 0; i < AdditionSetSize; i++ {
		var t AdditionTask
		switch mode {
		case Positive:
			t, err = positiveSum(r, p)
		case TwosComplement:
			t, err = signedSum(r, p.addWidth)
		default:
			return AdditionSet{}, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
		}
		if err != nil {
			return AdditionSet{}, err
		}
		set.Tasks = append(set.Tasks, t)
		set.AnswerPool = append(set.AnswerPool, t.Answer())
	}
	r.Shuffle(len(set.AnswerPool), func(i, j int) {
		set.AnswerPool[i], set.AnswerPool[j] = set.AnswerPool[j], set.AnswerPool[i]
	})
	return set, nil
}

func positiveSum(r Rand, p profile) (AdditionTask, error) {
	base := p.addBases[r.IntN(len(p.addBases))]
	a := between(r, p.addMin, p.addMax)
	b := between(r, p.addMin, p.addMax)

	var out [3]string
	for i, v := range []int64{a, b, a + b} {
		s, err := numsys.Render(v, base)
		if err != nil {
			return AdditionTask{}, err
		}
		out[i] = s
	}
	return AdditionTask{
		ID:            newID(r),
		Mode:          Positive,
		Base:          base,
		OperandA:      out[0],
		OperandB:      out[1],
		ExpectedValue: out[2],
	}, nil
}

func signedSum(r Rand, width int) (AdditionTask, error) {
	lo, hi := numsys.MinSigned(width), numsys.MaxSigned(width)
	a, err := numsys.FromSigned(between(r, lo, hi), width)
	if err != nil {
		return AdditionTask{}, err
	}
	b, err := numsys.FromSigned(between(r, lo, hi), width)
	if err != nil {
		return AdditionTask{}, err
	}
	sum, err := numsys.AddSigned(a, b)
	if err != nil {
		return AdditionTask{}, err
	}
	return AdditionTask{
		ID:            newID(r),
		Mode:          TwosComplement,
		Base:          numsys.Binary,
		Width:         width,
		OperandA:      a.String(),
		OperandB:      b.String(),
		ExpectedValue: sum.String(),
	}, nil
}
