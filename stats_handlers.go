package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type StatsResponse struct {
	TotalAttempts   int64              `json:"totalAttempts"`
	ExercisesPlayed int64              `json:"exercisesPlayed"`
	TotalPoints     int64              `json:"totalPoints"`
	TotalElapsedMS  int64              `json:"totalElapsedMs"`
	AverageAccuracy *float64           `json:"averageAccuracy,omitempty"`
	AttemptsLast30d int64              `json:"attemptsLast30d"`
	AccuracyLast30d *float64           `json:"accuracyLast30d,omitempty"`
	BestPoints      map[string]int     `json:"bestPoints,omitempty"`     // exercise -> points
	AccuracyByKind  map[string]float64 `json:"accuracyByKind,omitempty"` // kind -> percent
	AccuracyByTag   map[string]float64 `json:"accuracyByTag,omitempty"`  // tag -> percent
	AttemptsByTag   map[string]int64   `json:"attemptsByTag,omitempty"`  // tag -> count
	RoundsStarted   int64              `json:"roundsStarted"`
	RoundsFinished  int64              `json:"roundsFinished"`
	CompletionRate  *float64           `json:"completionRate,omitempty"`
}

func Stats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := userID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
			return
		}

		resp := StatsResponse{
			BestPoints:     make(map[string]int),
			AccuracyByKind: make(map[string]float64),
			AccuracyByTag:  make(map[string]float64),
			AttemptsByTag:  make(map[string]int64),
		}

		// totals over all attempts
		type RowTotals struct {
			N       int64
			Points  int64
			Elapsed int64
			Avg     *float64
		}
		var totals RowTotals
		if err := db.Model(&Attempt{}).
			Where("user_id = ?", uid).
			Select("COUNT(*) as n, COALESCE(SUM(points), 0) as points, COALESCE(SUM(elapsed_ms), 0) as elapsed, AVG(accuracy) as avg").
			Scan(&totals).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		resp.TotalAttempts = totals.N
		resp.TotalPoints = totals.Points
		resp.TotalElapsedMS = totals.Elapsed
		resp.AverageAccuracy = totals.Avg

		if err := db.Model(&Attempt{}).
			Where("user_id = ?", uid).
			Distinct("exercise_id").
			Count(&resp.ExercisesPlayed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}

		// last 30 days
		since := time.Now().Add(-30 * 24 * time.Hour)
		var recent RowTotals
		_ = db.Model(&Attempt{}).
			Where("user_id = ? AND created_at >= ?", uid, since).
			Select("COUNT(*) as n, AVG(accuracy) as avg").
			Scan(&recent).Error
		resp.AttemptsLast30d = recent.N
		resp.AccuracyLast30d = recent.Avg

		// best points per exercise
		type RowBest struct {
			ExerciseID string
			Best       int
		}
		var best []RowBest
		_ = db.Model(&Attempt{}).
			Where("user_id = ?", uid).
			Select("exercise_id as exercise_id, MAX(points) as best").
			Group("exercise_id").
			Scan(&best).Error
		for _, r := range best {
			resp.BestPoints[r.ExerciseID] = r.Best
		}

		// rounds started vs finished
		_ = db.Model(&Round{}).Where("user_id = ?", uid).Count(&resp.RoundsStarted).Error
		_ = db.Model(&Round{}).Where("user_id = ? AND finished_at IS NOT NULL", uid).Count(&resp.RoundsFinished).Error
		if resp.RoundsStarted > 0 {
			cr := float64(resp.RoundsFinished) * 100.0 / float64(resp.RoundsStarted)
			resp.CompletionRate = &cr
		}

		// accuracy per kind and tag (CSV in exercises.Tags)
		// Load attempts + their exercise, then aggregate in Go.
		type AttJoin struct {
			Accuracy float64
			Kind     string
			Tags     *string
		}
		var rows []AttJoin
		_ = db.Table("attempts a").
			Select("a.accuracy as accuracy, e.kind as kind, e.tags as tags").
			Joins("JOIN exercises e ON e.id = a.exercise_id").
			Where("a.user_id = ?", uid).
			Scan(&rows).Error

		kindSum := map[string]float64{}
		kindN := map[string]int64{}
		tagSum := map[string]float64{}
		for _, r := range rows {
			kindSum[r.Kind] += r.Accuracy
			kindN[r.Kind]++
			if r.Tags == nil || *r.Tags == "" {
				continue
			}
			seen := map[string]bool{}
			for _, p := range strings.Split(*r.Tags, ",") {
				tag := strings.TrimSpace(p)
				if tag == "" || seen[tag] {
					continue
				}
				seen[tag] = true
				resp.AttemptsByTag[tag]++
				tagSum[tag] += r.Accuracy
			}
		}
		for kind, n := range kindN {
			resp.AccuracyByKind[kind] = kindSum[kind] / float64(n)
		}
		for tag, n := range resp.AttemptsByTag {
			resp.AccuracyByTag[tag] = tagSum[tag] / float64(n)
		}

		c.JSON(http.StatusOK, resp)
	}
}
