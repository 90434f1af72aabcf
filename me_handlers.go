package main

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MeResponse struct {
	PublicID      string  `json:"publicId"`
	DisplayName   *string `json:"displayName,omitempty"`
	Email         *string `json:"email,omitempty"`
	EmailVerified bool    `json:"emailVerified"`
	SignedIn      bool    `json:"signedIn"`
}

type MeUpdateReq struct {
	DisplayName *string `json:"displayName"` // optional
}

type RestoreReq struct {
	PublicID string `json:"publicId"`
}

func toMe(u User, signedIn bool) MeResponse {
	return MeResponse{
		PublicID:      u.PublicID,
		DisplayName:   u.DisplayName,
		Email:         u.Email,
		EmailVerified: u.Verified(),
		SignedIn:      signedIn,
	}
}

// validDisplayName trims name and checks it is 2..40 characters.
func validDisplayName(name string) (string, bool) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	return name, n >= 2 && n <= 40
}

func currentUser(c *gin.Context, db *gorm.DB) (User, bool) {
	var u User
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
		return u, false
	}
	if err := db.First(&u, uid).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return u, false
	}
	return u, true
}

// GET /api/v1/me
func GetMe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c, db)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, toMe(u, c.GetBool(ctxSignedIn)))
	}
}

// PUT /api/v1/me
func UpdateMe(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := currentUser(c, db)
		if !ok {
			return
		}

		var req MeUpdateReq
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		if req.DisplayName != nil {
			name, ok := validDisplayName(*req.DisplayName)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "displayName must be 2..40 chars"})
				return
			}
			u.DisplayName = &name
		}
		// email changes go through sign-up and verification

		if err := db.Save(&u).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusOK, toMe(u, c.GetBool(ctxSignedIn)))
	}
}

// GET /api/v1/me/export-key
func ExportKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		pubID := c.GetString(ctxPublicID)
		if pubID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"publicId": pubID})
	}
}

// POST /api/v1/me/restore
// Rebinds this device to an anonymous user by its exported key. Accounts
// with an email must sign in instead.
func RestoreAccount(db *gorm.DB, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RestoreReq
		if err := c.BindJSON(&req); err != nil || strings.TrimSpace(req.PublicID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "publicId required"})
			return
		}
		var u User
		if err := db.First(&u, "public_id = ?", strings.TrimSpace(req.PublicID)).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if u.SignedUp() {
			c.JSON(http.StatusForbidden, gin.H{"error": "account requires sign-in"})
			return
		}
		setUserCookie(c, u.PublicID, secureCookies)
		c.JSON(http.StatusOK, gin.H{"status": "restored"})
	}
}
