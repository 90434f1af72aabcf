package exercise

import (
	"fmt"
	"strings"

	"vmxio.com/numlab/internal/numsys"
)

// Difficulty selects the value ranges and base pairs of a round.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts easy|medium|hard, case-insensitively. An empty
// string selects Easy.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case "", Easy:
		return Easy, nil
	case Medium:
		return Medium, nil
	case Hard:
		return Hard, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
}

type basePair struct {
	from, to numsys.Radix
}

type profile struct {
	pairs    []basePair
	min, max int64

	addMin, addMax int64
	addBases       []numsys.Radix
	addWidth       int

	points int
}

var profiles = map[Difficulty]profile{
	Easy: {
		pairs: []basePair{
			{numsys.Decimal, numsys.Binary},
			{numsys.Binary, numsys.Decimal},
		},
		min: 1, max: 15,
		addMin: 1, addMax: 7,
		addBases: []numsys.Radix{numsys.Binary},
		addWidth: 4,
		points:   10,
	},
	Medium: {
		pairs: []basePair{
			{numsys.Decimal, numsys.Binary},
			{numsys.Binary, numsys.Decimal},
			{numsys.Binary, numsys.Octal},
			{numsys.Octal, numsys.Binary},
			{numsys.Decimal, numsys.Hexadecimal},
			{numsys.Hexadecimal, numsys.Decimal},
		},
		min: 16, max: 255,
		addMin: 8, addMax: 63,
		addBases: []numsys.Radix{numsys.Binary, numsys.Octal},
		addWidth: 5,
		points:   20,
	},
	Hard: {
		pairs:  allPairs(),
		min:    256,
		max:    4095,
		addMin: 32, addMax: 255,
		addBases: []numsys.Radix{numsys.Binary, numsys.Octal, numsys.Hexadecimal},
		addWidth: 8,
		points:   30,
	},
}

func allPairs() []basePair {
	var out []basePair
	for _, from := range numsys.Radixes {
		for _, to := range numsys.Radixes {
			if from != to {
				out = append(out, basePair{from, to})
			}
		}
	}
	return out
}

func profileFor(d Difficulty) (profile, error) {
	p, ok := profiles[d]
	if !ok {
		return profile{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, string(d))
	}
	return p, nil
}

// Points returns the score awarded per correct item at d.
func (d Difficulty) Points() int {
	return profiles[d].points
}

// AdditionWidth is the two's-complement operand width used at d.
func (d Difficulty) AdditionWidth() int {
	return profiles[d].addWidth
}
