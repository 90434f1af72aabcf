package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"vmxio.com/numlab/internal/auth"
)

type SignUpReq struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName"`
}

type SignInReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenReq struct {
	Token string `json:"token"`
}

type ResetReq struct {
	Email string `json:"email"`
}

type ResetConfirmReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// POST /api/v1/auth/signup
// Upgrades the current anonymous user to an account, keeping its progress.
func SignUp(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignUpReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		email, err := auth.NormalizeEmail(req.Email)
		if err != nil {
			abortAuth(c, err)
			return
		}
		hash, err := auth.HashPassword(req.Password, app.Config.Auth.BcryptCost)
		if err != nil {
			abortAuth(c, err)
			return
		}

		db := app.DB
		var taken int64
		if err := db.Model(&User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		if taken > 0 {
			abortAuth(c, auth.ErrEmailInUse)
			return
		}

		var u User
		uid, _ := userID(c)
		if err := db.First(&u, uid).Error; err != nil || u.SignedUp() {
			// signed in to another account: start a fresh user
			u = User{PublicID: uuid.New().String()}
		}
		u.Email = &email
		u.PasswordHash = hash
		if req.DisplayName != nil {
			if name, ok := validDisplayName(*req.DisplayName); ok {
				u.DisplayName = &name
			}
		}
		if err := db.Save(&u).Error; err != nil {
			// a concurrent sign-up won the unique email index
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				abortAuth(c, auth.ErrEmailInUse)
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}

		if err := startSession(c, app, u); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
			return
		}
		if err := sendVerification(c, app, u); err != nil {
			app.Logger.Warn("verification mail failed", zap.Uint("user", u.ID), zap.Error(err))
		}
		c.JSON(http.StatusCreated, toMe(u, true))
	}
}

// POST /api/v1/auth/signin
func SignIn(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignInReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		email, err := auth.NormalizeEmail(req.Email)
		if err != nil {
			abortAuth(c, auth.ErrInvalidCredential)
			return
		}

		db := app.DB
		var u User
		if err := db.First(&u, "email = ?", email).Error; err != nil {
			abortAuth(c, auth.ErrInvalidCredential)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			abortAuth(c, err)
			return
		}

		// carry over what the anonymous user did on this device
		if anonID, ok := userID(c); ok && anonID != u.ID && !c.GetBool(ctxSignedIn) {
			if err := mergeAnonymous(db, anonID, u.ID); err != nil {
				app.Logger.Warn("anonymous merge failed", zap.Uint("from", anonID), zap.Uint("to", u.ID), zap.Error(err))
			}
		}

		if err := startSession(c, app, u); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
			return
		}
		c.JSON(http.StatusOK, toMe(u, true))
	}
}

// mergeAnonymous moves an anonymous user's attempts and open rounds to
// the account that just signed in on the same device.
func mergeAnonymous(db *gorm.DB, from, to uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Attempt{}).Where("user_id = ?", from).Update("user_id", to).Error; err != nil {
			return err
		}
		return tx.Model(&Round{}).Where("user_id = ? AND finished_at IS NULL", from).Update("user_id", to).Error
	})
}

// POST /api/v1/auth/signout
func SignOut(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(sessionCookieName); err == nil && token != "" {
			if err := app.DB.Where("token_digest = ?", auth.Digest(token)).Delete(&Session{}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
				return
			}
		}
		setSessionCookie(c, "", 0, app.Config.Server.SecureCookies)
		c.JSON(http.StatusOK, gin.H{"status": "signed-out"})
	}
}

// POST /api/v1/auth/verify
func VerifyEmail(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TokenReq
		if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
			abortAuth(c, auth.ErrInvalidToken)
			return
		}
		err := app.DB.Transaction(func(tx *gorm.DB) error {
			vt, err := consumeToken(tx, req.Token, tokenVerify)
			if err != nil {
				return err
			}
			return tx.Model(&User{}).Where("id = ?", vt.UserID).Update("email_verified_at", time.Now()).Error
		})
		if err != nil {
			abortAuthOrDB(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "verified"})
	}
}

// POST /api/v1/auth/resend-verification
func ResendVerification(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxSignedIn) {
			abortAuth(c, auth.ErrNotSignedIn)
			return
		}
		uid, _ := userID(c)
		var u User
		if err := app.DB.First(&u, uid).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if u.Verified() {
			c.JSON(http.StatusOK, gin.H{"status": "already-verified"})
			return
		}
		if !app.resendLimit.Allow(c.Request.Context(), fmt.Sprintf("resend:%d", u.ID)) {
			abortAuth(c, auth.ErrTooManyRequests)
			return
		}
		if err := sendVerification(c, app, u); err != nil {
			app.Logger.Error("verification mail failed", zap.Uint("user", u.ID), zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "mail"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "sent"})
	}
}

// POST /api/v1/auth/reset-password
// Always answers 200 so the endpoint does not reveal registered addresses.
func RequestPasswordReset(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		email, err := auth.NormalizeEmail(req.Email)
		if err != nil {
			abortAuth(c, err)
			return
		}
		if !app.resendLimit.Allow(c.Request.Context(), "reset:"+email) {
			abortAuth(c, auth.ErrTooManyRequests)
			return
		}

		var u User
		if err := app.DB.First(&u, "email = ?", email).Error; err == nil {
			token, err := issueToken(app.DB, u.ID, tokenReset, app.Config.Auth.TokenTTL)
			if err == nil {
				err = app.Mailer.Send(c.Request.Context(), auth.Message{
					To:      email,
					Subject: "Reset your numlab password",
					Link:    link(app, "/reset-password", token),
				})
			}
			if err != nil {
				app.Logger.Error("reset mail failed", zap.Uint("user", u.ID), zap.Error(err))
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "sent"})
	}
}

// POST /api/v1/auth/reset-password/confirm
func ConfirmPasswordReset(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ResetConfirmReq
		if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.Token) == "" {
			abortAuth(c, auth.ErrInvalidToken)
			return
		}
		hash, err := auth.HashPassword(req.Password, app.Config.Auth.BcryptCost)
		if err != nil {
			abortAuth(c, err)
			return
		}
		err = app.DB.Transaction(func(tx *gorm.DB) error {
			vt, err := consumeToken(tx, req.Token, tokenReset)
			if err != nil {
				return err
			}
			if err := tx.Model(&User{}).Where("id = ?", vt.UserID).Update("password_hash", hash).Error; err != nil {
				return err
			}
			// a reset signs out every device
			return tx.Where("user_id = ?", vt.UserID).Delete(&Session{}).Error
		})
		if err != nil {
			abortAuthOrDB(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "password-updated"})
	}
}

func startSession(c *gin.Context, app *App, u User) error {
	token, digest, err := auth.NewToken()
	if err != nil {
		return err
	}
	ttl := app.Config.Auth.SessionTTL
	s := Session{TokenDigest: digest, UserID: u.ID, ExpiresAt: time.Now().Add(ttl)}
	if err := app.DB.Create(&s).Error; err != nil {
		return err
	}
	setSessionCookie(c, token, ttl, app.Config.Server.SecureCookies)
	setUser(c, u, true)
	return nil
}

func sendVerification(c *gin.Context, app *App, u User) error {
	if u.Email == nil {
		return errors.New("user has no email")
	}
	token, err := issueToken(app.DB, u.ID, tokenVerify, app.Config.Auth.TokenTTL)
	if err != nil {
		return err
	}
	return app.Mailer.Send(c.Request.Context(), auth.Message{
		To:      *u.Email,
		Subject: "Verify your numlab email",
		Link:    link(app, "/verify", token),
	})
}

func issueToken(db *gorm.DB, uid uint, purpose string, ttl time.Duration) (string, error) {
	token, digest, err := auth.NewToken()
	if err != nil {
		return "", err
	}
	vt := VerificationToken{
		TokenDigest: digest,
		UserID:      uid,
		Purpose:     purpose,
		ExpiresAt:   time.Now().Add(ttl),
	}
	if err := db.Create(&vt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// consumeToken marks a live token of the given purpose as used.
func consumeToken(tx *gorm.DB, token, purpose string) (VerificationToken, error) {
	var vt VerificationToken
	err := tx.First(&vt, "token_digest = ? AND purpose = ?", auth.Digest(token), purpose).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return vt, auth.ErrInvalidToken
	}
	if err != nil {
		return vt, err
	}
	if vt.UsedAt != nil || time.Now().After(vt.ExpiresAt) {
		return vt, auth.ErrInvalidToken
	}
	now := time.Now()
	vt.UsedAt = &now
	return vt, tx.Save(&vt).Error
}

func link(app *App, path, token string) string {
	return strings.TrimRight(app.Config.Server.PublicURL, "/") + path + "?token=" + url.QueryEscape(token)
}

func abortAuthOrDB(c *gin.Context, err error) {
	var ae *auth.Error
	if errors.As(err, &ae) {
		abortAuth(c, err)
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "db"})
}
