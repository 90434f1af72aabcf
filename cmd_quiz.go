package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"vmxio.com/numlab/internal/exercise"
)

var (
	quizKind       string
	quizDifficulty string
	quizMode       string
	quizCount      int
	quizWidth      int
	quizSeed       int64
	quizAnswers    bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Print a generated exercise round as JSON",
	Example: `  numlab quiz --kind conversion --difficulty medium --count 6
  numlab quiz --kind addition --mode twos-complement --seed 42 --answers`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var seed *int64
		if cmd.Flags().Changed("seed") {
			seed = &quizSeed
		}
		out, err := buildQuiz(exercise.NewRand(seed))
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// buildQuiz generates the round selected by the quiz flags. Expected
// values are left out unless --answers is set.
func buildQuiz(r exercise.Rand) (any, error) {
	d, err := exercise.ParseDifficulty(quizDifficulty)
	if err != nil {
		return nil, err
	}
	switch quizKind {
	case kindConversion:
		set, err := exercise.GenerateConversionSet(r, d, quizCount)
		if err != nil || quizAnswers {
			return set, err
		}
		tasks := make([]TaskDTO, 0, len(set.Tasks))
		for _, t := range set.Tasks {
			tasks = append(tasks, TaskDTO{ID: t.ID, FromBase: t.FromBase, ToBase: t.ToBase, SourceValue: t.SourceValue})
		}
		return map[string]any{"tasks": tasks, "answerPool": set.AnswerPool}, nil
	case kindAddition:
		mode, err := exercise.ParseArithmeticMode(quizMode)
		if err != nil {
			return nil, err
		}
		set, err := exercise.GenerateAdditionSet(r, d, mode)
		if err != nil || quizAnswers {
			return set, err
		}
		tasks := make([]AdditionDTO, 0, len(set.Tasks))
		for _, t := range set.Tasks {
			tasks = append(tasks, AdditionDTO{
				ID: t.ID, Mode: t.Mode, Base: t.Base, Width: t.Width, OperandA: t.OperandA, OperandB: t.OperandB,
			})
		}
		return map[string]any{"tasks": tasks, "answerPool": set.AnswerPool}, nil
	case kindComplement:
		rounds, err := exercise.GenerateComplementRounds(r, quizCount, quizWidth)
		if err != nil {
			return nil, err
		}
		if !quizAnswers {
			return rounds, nil
		}
		type withExpected struct {
			exercise.ComplementRound
			Expected string `json:"expected"`
		}
		out := make([]withExpected, 0, len(rounds))
		for _, cr := range rounds {
			out = append(out, withExpected{ComplementRound: cr, Expected: cr.Expected().String()})
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown kind %q (conversion, addition or complement)", quizKind)
	}
}

func init() {
	f := quizCmd.Flags()
	f.StringVar(&quizKind, "kind", kindConversion, "conversion, addition or complement")
	f.StringVar(&quizDifficulty, "difficulty", "easy", "easy, medium or hard")
	f.StringVar(&quizMode, "mode", "positive", "addition mode: positive or twos-complement")
	f.IntVar(&quizCount, "count", 5, "number of tasks (conversion, complement)")
	f.IntVar(&quizWidth, "width", 8, "bit width of complement rounds")
	f.Int64Var(&quizSeed, "seed", 0, "seed for a reproducible round")
	f.BoolVar(&quizAnswers, "answers", false, "include expected answers")
}
