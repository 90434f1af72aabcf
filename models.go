package main

import (
	"time"
)

// --- User ---

type User struct {
	ID              uint    `gorm:"primaryKey"`
	PublicID        string  `gorm:"uniqueIndex;size:36;not null"` // UUID in the anonymous cookie
	DisplayName     *string
	Email           *string `gorm:"uniqueIndex"`
	PasswordHash    string  `gorm:"size:100"`
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (u User) SignedUp() bool { return u.Email != nil && u.PasswordHash != "" }

func (u User) Verified() bool { return u.EmailVerifiedAt != nil }

type Session struct {
	ID          uint      `gorm:"primaryKey"`
	TokenDigest string    `gorm:"uniqueIndex;size:64;not null"`
	UserID      uint      `gorm:"index;not null"`
	ExpiresAt   time.Time `gorm:"not null"`
	CreatedAt   time.Time
}

const (
	tokenVerify = "verify"
	tokenReset  = "reset"
)

type VerificationToken struct {
	ID          uint      `gorm:"primaryKey"`
	TokenDigest string    `gorm:"uniqueIndex;size:64;not null"`
	UserID      uint      `gorm:"index;not null"`
	Purpose     string    `gorm:"size:16;not null"` // "verify" | "reset"
	ExpiresAt   time.Time `gorm:"not null"`
	UsedAt      *time.Time
	CreatedAt   time.Time
}

// --- Exercises ---

type Exercise struct {
	ID         string    `gorm:"primaryKey;size:64" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Kind       string    `gorm:"size:16;not null" json:"kind"` // conversion | addition | complement | quiz
	Difficulty *string   `gorm:"size:16" json:"difficulty,omitempty"`
	MaxPoints  int       `gorm:"not null;default:0" json:"maxPoints"`
	Tags       *string   `json:"tags,omitempty"` // CSV
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// Round holds a generated exercise set, expected answers included, until
// the learner finishes it.
type Round struct {
	ID         string `gorm:"primaryKey;size:36"`
	UserID     *uint  `gorm:"index"`
	ExerciseID string `gorm:"index;size:64;not null"`
	Kind       string `gorm:"size:16;not null"`
	Difficulty string `gorm:"size:16"`
	Payload    string `gorm:"not null"` // JSON roundPayload
	Seed       *int64
	StartedAt  time.Time `gorm:"not null"`
	FinishedAt *time.Time
	AttemptID  *uint
}

type Attempt struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"-"`
	ExerciseID string    `gorm:"index;size:64;not null" json:"exerciseId"`
	RoundID    *string   `gorm:"size:36" json:"roundId,omitempty"`
	ElapsedMS  int64     `gorm:"not null" json:"elapsedMs"`
	Accuracy   float64   `gorm:"not null" json:"accuracy"` // percent
	Points     int       `gorm:"not null" json:"points"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

// --- Tutor ---

type ChatMessage struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index;not null"`
	ExerciseID *string   `gorm:"size:64"`
	Role       string    `gorm:"size:16;not null"` // "user" | "assistant"
	Content    string    `gorm:"not null"`
	CreatedAt  time.Time `gorm:"index"`
}
