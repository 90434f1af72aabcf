package exercise

import (
	"strings"

	"vmxio.com/numlab/internal/numsys"
)

// ItemResult is the review row for one graded item.
type ItemResult struct {
	ID        string `json:"id"`
	Submitted string `json:"submitted"`
	Expected  string `json:"expected"`
	Correct   bool   `json:"correct"`
	// Overflow marks a two's-complement sum that wrapped around.
	Overflow bool `json:"overflow,omitempty"`
}

// Result summarizes a graded round.
type Result struct {
	Correct  int          `json:"correct"`
	Total    int          `json:"total"`
	Accuracy float64      `json:"accuracy"` // percent
	Points   int          `json:"points"`
	Items    []ItemResult `json:"items"`
}

func (res *Result) add(item ItemResult, points int) {
	res.Total++
	if item.Correct {
		res.Correct++
		res.Points += points
	}
	res.Items = append(res.Items, item)
}

func (res *Result) finish() Result {
	if res.Total > 0 {
		res.Accuracy = float64(res.Correct) * 100.0 / float64(res.Total)
	}
	return *res
}

// GradeConversion checks answers keyed by task id. Missing answers count as
// wrong.
func GradeConversion(tasks []Task, answers map[string]AnswerOption, d Difficulty) Result {
	var res Result
	for _, t := range tasks {
		got, ok := answers[t.ID]
		res.add(ItemResult{
			ID:        t.ID,
			Submitted: got.Value,
			Expected:  t.ExpectedValue,
			Correct:   ok && got.Matches(t.Answer()),
		}, d.Points())
	}
	return res.finish()
}

// GradeAddition checks sums keyed by task id.
func GradeAddition(tasks []AdditionTask, answers map[string]AnswerOption, d Difficulty) Result {
	var res Result
	for _, t := range tasks {
		got, ok := answers[t.ID]
		item := ItemResult{
			ID:        t.ID,
			Submitted: got.Value,
			Expected:  t.ExpectedValue,
			Correct:   ok && got.Matches(t.Answer()),
		}
		if t.Mode == TwosComplement {
			item.Overflow = signedOverflow(t)
		}
		res.add(item, d.Points())
	}
	return res.finish()
}

func signedOverflow(t AdditionTask) bool {
	a, errA := numsys.ParseBitVector(t.OperandA)
	b, errB := numsys.ParseBitVector(t.OperandB)
	sum, errS := numsys.ParseBitVector(t.ExpectedValue)
	if errA != nil || errB != nil || errS != nil {
		return false
	}
	return numsys.Overflowed(a, b, sum)
}

// GradeComplement checks bit strings keyed by round id. Submissions are
// compared as bit vectors, so they must have the round's width.
func GradeComplement(rounds []ComplementRound, answers map[string]string) Result {
	var res Result
	for _, c := range rounds {
		want := c.Expected()
		got, ok := answers[c.ID]
		item := ItemResult{ID: c.ID, Submitted: got, Expected: want.String()}
		if ok {
			bv, err := numsys.ParseBitVector(strings.TrimSpace(got))
			item.Correct = err == nil && bv == want
		}
		res.add(item, ComplementPoints)
	}
	return res.finish()
}
