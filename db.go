package main

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB opens the sqlite file or postgres DSN named by driver.
func OpenDB(driver, dsn string, debug bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Session{},
		&VerificationToken{},
		&Exercise{},
		&Round{},
		&Attempt{},
		&ChatMessage{},
	)
}

func IsExerciseTableEmpty(db *gorm.DB) (bool, error) {
	var count int64
	if err := db.Model(&Exercise{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// prepareDB migrates and seeds the exercise catalog on first start.
func prepareDB(db *gorm.DB, exercisesPath string, logger *zap.Logger) error {
	if err := AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	isEmpty, err := IsExerciseTableEmpty(db)
	if err != nil {
		return err
	}
	if !isEmpty {
		return nil
	}
	n, err := SeedExercises(db, exercisesPath)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	logger.Info("seeded exercise catalog", zap.Int("exercises", n), zap.String("source", catalogSource(exercisesPath)))
	return nil
}
