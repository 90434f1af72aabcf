package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vmxio.com/numlab/internal/exercise"
	"vmxio.com/numlab/internal/numsys"
)

/*** DTOs: tasks as the client sees them, without expected values ***/

type TaskDTO struct {
	ID          string       `json:"id"`
	FromBase    numsys.Radix `json:"fromBase"`
	ToBase      numsys.Radix `json:"toBase"`
	SourceValue string       `json:"sourceValue"`
}

type AdditionDTO struct {
	ID       string                  `json:"id"`
	Mode     exercise.ArithmeticMode `json:"mode"`
	Base     numsys.Radix            `json:"base"`
	Width    int                     `json:"width,omitempty"`
	OperandA string                  `json:"operandA"`
	OperandB string                  `json:"operandB"`
}

type ComplementDTO struct {
	ID         string                  `json:"id"`
	Mode       exercise.ComplementMode `json:"mode"`
	SourceBits numsys.BitVector        `json:"sourceBits"`
	BitCount   int                     `json:"bitCount"`
}

/*** Round start ***/

type StartConversionReq struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"` // default 8
	Seed       *int64 `json:"seed"`  // optional for reproducibility
}

type StartAdditionReq struct {
	Difficulty string `json:"difficulty"`
	Mode       string `json:"mode"` // positive | twos-complement
	Seed       *int64 `json:"seed"`
}

type StartComplementReq struct {
	Count    int    `json:"count"`    // default 5
	BitWidth int    `json:"bitWidth"` // default 8
	Seed     *int64 `json:"seed"`
}

const (
	defaultConversionCount = 8
	defaultComplementCount = 5
	defaultComplementWidth = 8
)

// POST /api/v1/rounds/conversion
func StartConversionRound(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartConversionReq
		_ = c.BindJSON(&req)
		if req.Count <= 0 {
			req.Count = defaultConversionCount
		}
		d, err := exercise.ParseDifficulty(req.Difficulty)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		set, err := exercise.GenerateConversionSet(exercise.NewRand(req.Seed), d, req.Count)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		round, ok := createRound(c, db, kindConversion, exerciseKey(kindConversion, "", d), d, req.Seed,
			roundPayload{Conversion: set.Tasks})
		if !ok {
			return
		}

		tasks := make([]TaskDTO, 0, len(set.Tasks))
		for _, t := range set.Tasks {
			tasks = append(tasks, TaskDTO{ID: t.ID, FromBase: t.FromBase, ToBase: t.ToBase, SourceValue: t.SourceValue})
		}
		c.JSON(http.StatusOK, gin.H{
			"roundId":    round.ID,
			"exerciseId": round.ExerciseID,
			"difficulty": d,
			"tasks":      tasks,
			"answerPool": set.AnswerPool,
		})
	}
}

// POST /api/v1/rounds/addition
func StartAdditionRound(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartAdditionReq
		_ = c.BindJSON(&req)
		d, err := exercise.ParseDifficulty(req.Difficulty)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mode, err := exercise.ParseArithmeticMode(req.Mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		set, err := exercise.GenerateAdditionSet(exercise.NewRand(req.Seed), d, mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		round, ok := createRound(c, db, kindAddition, exerciseKey(kindAddition, mode, d), d, req.Seed,
			roundPayload{Addition: set.Tasks})
		if !ok {
			return
		}

		tasks := make([]AdditionDTO, 0, len(set.Tasks))
		for _, t := range set.Tasks {
			tasks = append(tasks, AdditionDTO{
				ID: t.ID, Mode: t.Mode, Base: t.Base, Width: t.Width, OperandA: t.OperandA, OperandB: t.OperandB,
			})
		}
		c.JSON(http.StatusOK, gin.H{
			"roundId":    round.ID,
			"exerciseId": round.ExerciseID,
			"difficulty": d,
			"mode":       mode,
			"tasks":      tasks,
			"answerPool": set.AnswerPool,
		})
	}
}

// POST /api/v1/rounds/complement
func StartComplementRound(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartComplementReq
		_ = c.BindJSON(&req)
		if req.Count <= 0 {
			req.Count = defaultComplementCount
		}
		if req.BitWidth == 0 {
			req.BitWidth = defaultComplementWidth
		}
		rounds, err := exercise.GenerateComplementRounds(exercise.NewRand(req.Seed), req.Count, req.BitWidth)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		round, ok := createRound(c, db, kindComplement, exerciseKey(kindComplement, "", ""), "", req.Seed,
			roundPayload{Complement: rounds})
		if !ok {
			return
		}

		items := make([]ComplementDTO, 0, len(rounds))
		for _, r := range rounds {
			items = append(items, ComplementDTO{ID: r.ID, Mode: r.Mode, SourceBits: r.SourceBits, BitCount: r.BitCount})
		}
		c.JSON(http.StatusOK, gin.H{
			"roundId":    round.ID,
			"exerciseId": round.ExerciseID,
			"bitWidth":   req.BitWidth,
			"rounds":     items,
		})
	}
}

func createRound(c *gin.Context, db *gorm.DB, kind, exerciseID string, d exercise.Difficulty, seed *int64, p roundPayload) (Round, bool) {
	raw, err := jsonString(p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "encode"})
		return Round{}, false
	}
	round := Round{
		ID:         uuid.New().String(),
		ExerciseID: exerciseID,
		Kind:       kind,
		Difficulty: string(d),
		Payload:    raw,
		Seed:       seed,
		StartedAt:  time.Now(),
	}
	if uid, ok := userID(c); ok {
		round.UserID = &uid
	}
	if err := db.Create(&round).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
		return Round{}, false
	}
	return round, true
}

/*** Round finish ***/

type FinishRoundReq struct {
	// Answers holds conversion and addition picks keyed by task id.
	Answers map[string]exercise.AnswerOption `json:"answers"`
	// Bits holds complement answers keyed by round id.
	Bits      map[string]string `json:"bits"`
	ElapsedMS int64             `json:"elapsedMs"`
}

// POST /api/v1/rounds/:id/finish
func FinishRound(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
			return
		}
		var req FinishRoundReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		if req.ElapsedMS < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "elapsedMs must be >= 0"})
			return
		}

		var round Round
		if err := db.First(&round, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "round not found"})
			return
		}
		if round.UserID == nil || *round.UserID != uid {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		if round.FinishedAt != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "round already finished"})
			return
		}

		p, err := decodePayload(round.Payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "corrupt round"})
			return
		}
		d := exercise.Difficulty(round.Difficulty)

		var res exercise.Result
		switch round.Kind {
		case kindConversion:
			res = exercise.GradeConversion(p.Conversion, req.Answers, d)
		case kindAddition:
			res = exercise.GradeAddition(p.Addition, req.Answers, d)
		case kindComplement:
			res = exercise.GradeComplement(p.Complement, req.Bits)
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown round kind"})
			return
		}

		attempt := Attempt{
			UserID:     &uid,
			ExerciseID: round.ExerciseID,
			RoundID:    &round.ID,
			ElapsedMS:  req.ElapsedMS,
			Accuracy:   res.Accuracy,
			Points:     res.Points,
		}
		err = db.Transaction(func(tx *gorm.DB) error {
			// guard against a concurrent finish of the same round
			upd := tx.Model(&Round{}).Where("id = ? AND finished_at IS NULL", round.ID).Update("finished_at", time.Now())
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 0 {
				return errRoundFinished
			}
			if err := tx.Create(&attempt).Error; err != nil {
				return err
			}
			return tx.Model(&Round{}).Where("id = ?", round.ID).Update("attempt_id", attempt.ID).Error
		})
		if errors.Is(err, errRoundFinished) {
			c.JSON(http.StatusConflict, gin.H{"error": "round already finished"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"attemptId":  attempt.ID,
			"exerciseId": round.ExerciseID,
			"correct":    res.Correct,
			"total":      res.Total,
			"accuracy":   res.Accuracy,
			"points":     res.Points,
			"items":      res.Items,
		})
	}
}

var errRoundFinished = errors.New("round already finished")

/*** Stateless tools ***/

type ConvertReq struct {
	Value string `json:"value"`
	From  int    `json:"from"`
	To    int    `json:"to"`
}

type ComplementReq struct {
	Bits  string       `json:"bits"`
	Base  numsys.Radix `json:"base"`  // 2 (default), 8 or 16
	Width int          `json:"width"` // octal and hex only; 0 keeps every digit
}

// POST /api/v1/convert
func ConvertTool() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ConvertReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		from, err := numsys.ParseRadix(req.From)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		to, err := numsys.ParseRadix(req.To)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		v, err := numsys.Parse(req.Value, from)
		if err != nil {
			numeralError(c, err)
			return
		}
		out, err := numsys.Render(v, to)
		if err != nil {
			numeralError(c, err)
			return
		}
		digits, _ := numsys.Digits(v, to)
		c.JSON(http.StatusOK, gin.H{
			"value":   out,
			"base":    to,
			"decimal": v,
			"digits":  digits,
		})
	}
}

// POST /api/v1/complement
func ComplementTool() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ComplementReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		bv, err := readBits(strings.TrimSpace(req.Bits), req.Base, req.Width)
		if err != nil {
			numeralError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"bits":     bv,
			"ones":     bv.Invert(),
			"twos":     bv.TwosComplement(),
			"unsigned": numsys.FromBits(bv),
			"signed":   bv.SignedValue(),
			"octal":    numsys.BitsToOctalDigits(bv),
			"hex":      numsys.BitsToHexDigits(bv),
		})
	}
}

func numeralError(c *gin.Context, err error) {
	var de *numsys.InvalidDigitError
	if errors.As(err, &de) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "position": de.Pos})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
