package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vmxio.com/numlab/internal/auth"
	"vmxio.com/numlab/internal/config"
	"vmxio.com/numlab/internal/tutor"
)

// App bundles what the handlers share.
type App struct {
	DB     *gorm.DB
	Config *config.Config
	Logger *zap.Logger
	Mailer auth.Mailer
	Tutor  *tutor.Service

	tutorLimit  ratelimit.RateLimiter
	resendLimit ratelimit.RateLimiter
}

// NewApp wires limiters around the given dependencies.
func NewApp(db *gorm.DB, cfg *config.Config, logger *zap.Logger, mailer auth.Mailer, tutorSvc *tutor.Service) *App {
	return &App{
		DB:          db,
		Config:      cfg,
		Logger:      logger,
		Mailer:      mailer,
		Tutor:       tutorSvc,
		tutorLimit:  perMinute(cfg.Tutor.PerMinute),
		resendLimit: perMinute(cfg.Auth.ResendPerMinute),
	}
}

func perMinute(n int) ratelimit.RateLimiter {
	if n <= 0 {
		n = 1
	}
	return ratelimit.New(&ratelimit.Config{
		Rate:     n,
		Burst:    n,
		Interval: time.Minute,
	})
}

// Close releases the rate limiters.
func (a *App) Close() error {
	if err := a.tutorLimit.Close(); err != nil {
		return err
	}
	return a.resendLimit.Close()
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger(app.Logger), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  originAllowed(app.Config.Server.AllowedOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	db := app.DB
	secure := app.Config.Server.SecureCookies
	r.Use(EnsureUser(db, secure))

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api/v1")
	{
		// Catalog & stateless tools
		api.GET("/exercises", ListExercises(db))
		api.POST("/convert", ConvertTool())
		api.POST("/complement", ComplementTool())

		// Rounds
		api.POST("/rounds/conversion", StartConversionRound(db))
		api.POST("/rounds/addition", StartAdditionRound(db))
		api.POST("/rounds/complement", StartComplementRound(db))
		api.POST("/rounds/:id/finish", FinishRound(db))

		// Attempts & stats
		api.POST("/attempts", RecordAttempt(db))
		api.GET("/attempts", ListMyAttempts(db))
		api.GET("/attempts/best", BestAttempt(db))
		api.GET("/stats", Stats(db))

		// Account
		api.POST("/auth/signup", SignUp(app))
		api.POST("/auth/signin", SignIn(app))
		api.POST("/auth/signout", SignOut(app))
		api.POST("/auth/verify", VerifyEmail(app))
		api.POST("/auth/resend-verification", ResendVerification(app))
		api.POST("/auth/reset-password", RequestPasswordReset(app))
		api.POST("/auth/reset-password/confirm", ConfirmPasswordReset(app))

		// Profile
		api.GET("/me", GetMe(db))
		api.PUT("/me", UpdateMe(db))
		api.GET("/me/export-key", ExportKey())
		api.POST("/me/restore", RestoreAccount(db, secure))

		// Tutor
		api.POST("/tutor", RequireVerified(), AskTutor(app))
		api.GET("/tutor/history", RequireVerified(), TutorHistory(app))
	}
	return r
}

// originAllowed matches exact origins and patterns ending in "*", which
// match any suffix (e.g. "http://localhost:*").
func originAllowed(allowed []string) func(string) bool {
	return func(origin string) bool {
		for _, a := range allowed {
			if prefix, ok := strings.CutSuffix(a, "*"); ok {
				if strings.HasPrefix(origin, prefix) {
					return true
				}
				continue
			}
			if origin == a {
				return true
			}
		}
		return false
	}
}

// RequestLogger logs one line per request through zap.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= 500:
			logger.Error("request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}
