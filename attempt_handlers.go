package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RecordAttemptReq struct {
	ExerciseID string  `json:"exerciseId"`
	ElapsedMS  int64   `json:"elapsedMs"`
	Accuracy   float64 `json:"accuracy"` // percent
	Points     int     `json:"points"`
}

// GET /api/v1/exercises
func ListExercises(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Order("id")
		if kind := c.Query("kind"); kind != "" {
			q = q.Where("kind = ?", kind)
		}
		var xs []Exercise
		if err := q.Find(&xs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusOK, xs)
	}
}

// POST /api/v1/attempts
// Records a client-scored attempt, e.g. for quiz exercises that are not
// played as server-side rounds.
func RecordAttempt(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
			return
		}
		var req RecordAttemptReq
		if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.ExerciseID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "exerciseId required"})
			return
		}
		switch {
		case req.ElapsedMS < 0:
			c.JSON(http.StatusBadRequest, gin.H{"error": "elapsedMs must be >= 0"})
			return
		case req.Accuracy < 0 || req.Accuracy > 100:
			c.JSON(http.StatusBadRequest, gin.H{"error": "accuracy must be 0..100"})
			return
		case req.Points < 0:
			c.JSON(http.StatusBadRequest, gin.H{"error": "points must be >= 0"})
			return
		}

		var ex Exercise
		if err := db.First(&ex, "id = ?", req.ExerciseID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "exercise not found"})
			return
		}
		if ex.MaxPoints > 0 && req.Points > ex.MaxPoints {
			c.JSON(http.StatusBadRequest, gin.H{"error": "points exceed exercise maximum"})
			return
		}

		a := Attempt{
			UserID:     &uid,
			ExerciseID: ex.ID,
			ElapsedMS:  req.ElapsedMS,
			Accuracy:   req.Accuracy,
			Points:     req.Points,
		}
		if err := db.Create(&a).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// GET /api/v1/attempts/best?exerciseId=
func BestAttempt(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
			return
		}
		exID := c.Query("exerciseId")
		if exID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "exerciseId required"})
			return
		}
		a, err := bestAttempt(db, uid, exID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no attempts"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// ListMyAttempts returns the user's attempts, newest first.
// Query params: ?limit=20&offset=0&exerciseId=  (limit default 20, max 100)
func ListMyAttempts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
			return
		}
		limit, offset := pageParams(c.Query("limit"), c.Query("offset"))

		exID := c.Query("exerciseId")
		mine := func(tx *gorm.DB) *gorm.DB {
			tx = tx.Where("user_id = ?", uid)
			if exID != "" {
				tx = tx.Where("exercise_id = ?", exID)
			}
			return tx
		}

		var total int64
		if err := db.Model(&Attempt{}).Scopes(mine).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}

		items := []Attempt{}
		if err := db.Scopes(mine).Order("created_at DESC, id DESC").
			Limit(limit).Offset(offset).
			Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"total":  total,
			"limit":  limit,
			"offset": offset,
			"items":  items,
		})
	}
}
