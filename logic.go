package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"vmxio.com/numlab/internal/exercise"
	"vmxio.com/numlab/internal/numsys"
)

const (
	kindConversion = "conversion"
	kindAddition   = "addition"
	kindComplement = "complement"
	kindQuiz       = "quiz"
)

// roundPayload is what a Round keeps server-side until it is finished.
// Exactly one of the slices is set, matching the round kind.
type roundPayload struct {
	Conversion []exercise.Task            `json:"conversion,omitempty"`
	Addition   []exercise.AdditionTask    `json:"addition,omitempty"`
	Complement []exercise.ComplementRound `json:"complement,omitempty"`
}

func jsonString(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodePayload(raw string) (roundPayload, error) {
	var p roundPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return p, fmt.Errorf("decode round payload: %w", err)
	}
	return p, nil
}

// exerciseKey names the catalog entry a round is recorded against.
func exerciseKey(kind string, mode exercise.ArithmeticMode, d exercise.Difficulty) string {
	switch kind {
	case kindConversion:
		return "conversion-" + string(d)
	case kindAddition:
		m := "positive"
		if mode == exercise.TwosComplement {
			m = "twos"
		}
		return "addition-" + m + "-" + string(d)
	default:
		return kind
	}
}

// readBits reads s as a bit string, or as octal or hex digits expanded
// into width bits. A zero width keeps every digit's group.
func readBits(s string, base numsys.Radix, width int) (numsys.BitVector, error) {
	var (
		per    int
		expand func([]int, int) (numsys.BitVector, error)
	)
	switch base {
	case 0, numsys.Binary:
		return numsys.ParseBitVector(s)
	case numsys.Octal:
		per, expand = 3, numsys.OctalDigitsToBits
	case numsys.Hexadecimal:
		per, expand = 4, numsys.HexDigitsToBits
	default:
		return numsys.BitVector{}, fmt.Errorf("%w: %d (bits are read from base 2, 8 or 16)", numsys.ErrUnsupportedRadix, int(base))
	}
	digits, err := numsys.ParseDigits(s, base)
	if err != nil {
		return numsys.BitVector{}, err
	}
	if width == 0 {
		width = min(per*len(digits), numsys.MaxWidth)
	}
	return expand(digits, width)
}

// roundMaxPoints is the best score a generated round of kind can earn at
// d. Quiz exercises are not generated and report 0.
func roundMaxPoints(kind string, d exercise.Difficulty) int {
	switch kind {
	case kindConversion:
		return exercise.MaxSetSize * d.Points()
	case kindAddition:
		return exercise.AdditionSetSize * d.Points()
	case kindComplement:
		return exercise.MaxSetSize * exercise.ComplementPoints
	default:
		return 0
	}
}

// bestAttempt returns the highest-scoring attempt, ties broken by the
// shortest time and then by the earliest record.
func bestAttempt(db *gorm.DB, uid uint, exerciseID string) (*Attempt, error) {
	var a Attempt
	err := db.Where("user_id = ? AND exercise_id = ?", uid, exerciseID).
		Order("points DESC, elapsed_ms ASC, id ASC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// pageParams parses ?limit=&offset= (limit default 20, max 100).
func pageParams(l, o string) (limit, offset int) {
	limit = 20
	if l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			if n > 100 {
				n = 100
			}
			limit = n
		}
	}
	if o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
