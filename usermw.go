package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"vmxio.com/numlab/internal/auth"
)

const (
	cookieName        = "nl_uid"
	sessionCookieName = "nl_session"
)

// Context keys set by EnsureUser
const (
	ctxUserID   = "userDBID"
	ctxPublicID = "userPublicID"
	ctxSignedIn = "signedIn"
	ctxVerified = "emailVerified"
)

// EnsureUser resolves the caller. A valid session cookie wins; otherwise
// the anonymous user bound to the nl_uid cookie is loaded or created. A
// cookie naming a signed-up account is replaced with a new anonymous user.
func EnsureUser(db *gorm.DB, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := sessionUser(c, db); ok {
			setUser(c, u, true)
			c.Next()
			return
		}

		pubID, err := c.Cookie(cookieName)
		var u User
		if err == nil && pubID != "" {
			// cookie present: make sure the user exists
			if err := db.First(&u, "public_id = ?", pubID).Error; err != nil {
				u = User{PublicID: pubID}
				if err := db.Create(&u).Error; err != nil {
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user recreate failed"})
					return
				}
			}
			if !u.SignedUp() {
				setUser(c, u, false)
				c.Next()
				return
			}
			// accounts need a session; the device falls back to a new anonymous user
		}

		u = User{PublicID: uuid.New().String()}
		if err := db.Create(&u).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "user create failed"})
			return
		}
		setUserCookie(c, u.PublicID, secureCookies)
		setUser(c, u, false)
		c.Next()
	}
}

func sessionUser(c *gin.Context, db *gorm.DB) (User, bool) {
	token, err := c.Cookie(sessionCookieName)
	if err != nil || token == "" {
		return User{}, false
	}
	var s Session
	if err := db.First(&s, "token_digest = ?", auth.Digest(token)).Error; err != nil {
		return User{}, false
	}
	if time.Now().After(s.ExpiresAt) {
		db.Delete(&s)
		return User{}, false
	}
	var u User
	if err := db.First(&u, s.UserID).Error; err != nil {
		return User{}, false
	}
	return u, true
}

func setUser(c *gin.Context, u User, signedIn bool) {
	c.Set(ctxUserID, u.ID)
	c.Set(ctxPublicID, u.PublicID)
	c.Set(ctxSignedIn, signedIn)
	c.Set(ctxVerified, u.Verified())
}

func setUserCookie(c *gin.Context, pubID string, secure bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cookieName,
		Value:    pubID,
		Path:     "/",
		MaxAge:   365 * 24 * 3600, // 1 year
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func setSessionCookie(c *gin.Context, token string, ttl time.Duration, secure bool) {
	maxAge := int(ttl / time.Second)
	if token == "" {
		maxAge = -1
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// userID returns the database id EnsureUser stored on the context.
func userID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// RequireVerified rejects anonymous and unverified callers.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ctxSignedIn) {
			abortAuth(c, auth.ErrNotSignedIn)
			return
		}
		if !c.GetBool(ctxVerified) {
			abortAuth(c, auth.ErrEmailNotVerified)
			return
		}
		c.Next()
	}
}

func authStatus(err error) int {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		return http.StatusInternalServerError
	}
	switch ae.Code {
	case auth.CodeInvalidEmail, auth.CodeWeakPassword, auth.CodeInvalidToken:
		return http.StatusBadRequest
	case auth.CodeEmailInUse:
		return http.StatusConflict
	case auth.CodeInvalidCredential, auth.CodeNotSignedIn:
		return http.StatusUnauthorized
	case auth.CodeEmailNotVerified:
		return http.StatusForbidden
	case auth.CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}

// abortAuth answers with the error code vocabulary clients switch on.
func abortAuth(c *gin.Context, err error) {
	var ae *auth.Error
	if !errors.As(err, &ae) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.AbortWithStatusJSON(authStatus(err), gin.H{"error": string(ae.Code), "message": ae.Message})
}
