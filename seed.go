package main

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"vmxio.com/numlab/internal/exercise"
)

//go:embed data/exercises.yaml
var defaultCatalog []byte

// ==== YAML input structures ====

type ExerciseInput struct {
	ID         string   `yaml:"id"`
	Title      string   `yaml:"title"`
	Kind       string   `yaml:"kind"`
	Difficulty string   `yaml:"difficulty"`
	MaxPoints  int      `yaml:"maxPoints"`
	Tags       []string `yaml:"tags"`
}

type catalogFile struct {
	Exercises []ExerciseInput `yaml:"exercises"`
}

var exerciseKinds = map[string]bool{
	kindConversion: true,
	kindAddition:   true,
	kindComplement: true,
	kindQuiz:       true,
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// LoadCatalog parses a catalog from path, or the embedded default when
// path is empty.
func LoadCatalog(path string) ([]ExerciseInput, error) {
	raw := defaultCatalog
	if path != "" {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("yaml parse: %w", err)
	}

	// Basic validation: unique ids, known kinds, caps that fit a round
	seen := map[string]bool{}
	dups := []string{}
	for _, e := range file.Exercises {
		if strings.TrimSpace(e.ID) == "" {
			return nil, fmt.Errorf("exercise without id: %q", e.Title)
		}
		if !exerciseKinds[e.Kind] {
			return nil, fmt.Errorf("exercise %s: unknown kind %q", e.ID, e.Kind)
		}
		if best := roundMaxPoints(e.Kind, exercise.Difficulty(e.Difficulty)); e.MaxPoints < best {
			return nil, fmt.Errorf("exercise %s: maxPoints %d is below the best round score %d", e.ID, e.MaxPoints, best)
		}
		if seen[e.ID] {
			dups = append(dups, e.ID)
		}
		seen[e.ID] = true
	}
	if len(dups) > 0 {
		return nil, fmt.Errorf("duplicate exercise IDs in catalog: %v", dups)
	}
	return file.Exercises, nil
}

// ==== Seeder ====

func SeedExercises(db *gorm.DB, path string) (int, error) {
	items, err := LoadCatalog(path)
	if err != nil {
		return 0, err
	}

	// Seed transactionally
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, in := range items {
			e := Exercise{
				ID:        in.ID,
				Title:     in.Title,
				Kind:      in.Kind,
				MaxPoints: in.MaxPoints,
			}
			if in.Difficulty != "" {
				d := in.Difficulty
				e.Difficulty = &d
			}
			if len(in.Tags) > 0 {
				tags := strings.Join(in.Tags, ",")
				e.Tags = &tags
			}
			if err := tx.Create(&e).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}
