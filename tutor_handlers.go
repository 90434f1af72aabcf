package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vmxio.com/numlab/internal/auth"
	"vmxio.com/numlab/internal/tutor"
)

type TutorReq struct {
	tutor.Question
	ExerciseID string `json:"exerciseId"` // optional, tags the stored chat
}

type ChatMessageDTO struct {
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ExerciseID *string   `json:"exerciseId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// POST /api/v1/tutor
// Answers {answer} or {error}; runs behind RequireVerified.
func AskTutor(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, _ := userID(c)

		var req TutorReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		if err := app.Tutor.Validate(req.Question); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "maxQuestionLen": app.Tutor.MaxQuestionLen()})
			return
		}
		if !app.tutorLimit.Allow(c.Request.Context(), fmt.Sprintf("tutor:%d", uid)) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": string(auth.CodeTooManyRequests)})
			return
		}

		answer, err := app.Tutor.Ask(c.Request.Context(), req.Question)
		switch {
		case errors.Is(err, tutor.ErrUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		case err != nil:
			app.Logger.Error("tutor failed", zap.Uint("user", uid), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "tutor is unavailable, try again later"})
			return
		}

		var exID *string
		if id := strings.TrimSpace(req.ExerciseID); id != "" {
			exID = &id
		}
		msgs := []ChatMessage{
			{UserID: uid, ExerciseID: exID, Role: string(tutor.RoleUser), Content: strings.TrimSpace(req.Question.Question)},
			{UserID: uid, ExerciseID: exID, Role: string(tutor.RoleAssistant), Content: answer},
		}
		if err := app.DB.Create(&msgs).Error; err != nil {
			// the learner still gets the answer
			app.Logger.Warn("chat log failed", zap.Uint("user", uid), zap.Error(err))
		}

		c.JSON(http.StatusOK, gin.H{"answer": answer})
	}
}

// GET /api/v1/tutor/history?exerciseId=
// Returns the newest stored messages in chronological order.
func TutorHistory(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, _ := userID(c)
		limit, _ := pageParams(c.Query("limit"), "")

		q := app.DB.Where("user_id = ?", uid)
		if exID := c.Query("exerciseId"); exID != "" {
			q = q.Where("exercise_id = ?", exID)
		}
		var rows []ChatMessage
		if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}

		items := make([]ChatMessageDTO, len(rows))
		for i, m := range rows {
			items[len(rows)-1-i] = ChatMessageDTO{
				Role:       m.Role,
				Content:    m.Content,
				ExerciseID: m.ExerciseID,
				CreatedAt:  m.CreatedAt,
			}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
