// Package auth holds the credential primitives behind email/password
// accounts: address validation, password hashing, opaque tokens and the
// error-code vocabulary clients switch on.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// Code is a stable, client-facing error identifier.
type Code string

const (
	CodeInvalidEmail      Code = "invalid-email"
	CodeWeakPassword      Code = "weak-password"
	CodeEmailInUse        Code = "email-already-in-use"
	CodeInvalidCredential Code = "invalid-credential"
	CodeEmailNotVerified  Code = "email-not-verified"
	CodeInvalidToken      Code = "invalid-token"
	CodeTooManyRequests   Code = "too-many-requests"
	CodeNotSignedIn       Code = "not-signed-in"
)

// Error carries a Code and a human readable message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

var (
	ErrInvalidEmail      = &Error{CodeInvalidEmail, "email address is not valid"}
	ErrWeakPassword      = &Error{CodeWeakPassword, "password must be 8 to 72 characters"}
	ErrEmailInUse        = &Error{CodeEmailInUse, "an account with this email already exists"}
	ErrInvalidCredential = &Error{CodeInvalidCredential, "email or password is incorrect"}
	ErrEmailNotVerified  = &Error{CodeEmailNotVerified, "email address is not verified"}
	ErrInvalidToken      = &Error{CodeInvalidToken, "token is invalid or expired"}
	ErrTooManyRequests   = &Error{CodeTooManyRequests, "too many requests, try again later"}
	ErrNotSignedIn       = &Error{CodeNotSignedIn, "sign in required"}
)

const (
	MinPasswordLen = 8
	// bcrypt ignores input past 72 bytes
	MaxPasswordLen = 72
)

var validate = validator.New()

// NormalizeEmail trims and lowercases an address and validates its syntax.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// HashPassword checks the password policy and returns a bcrypt hash.
func HashPassword(password string, cost int) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLen || len(password) > MaxPasswordLen {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a password with its hash.
func CheckPassword(hash, password string) error {
	if hash == "" {
		return ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredential
	}
	return nil
}

// NewToken returns a random URL-safe token and the digest to store for it.
func NewToken() (token, digest string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, Digest(token), nil
}

// Digest is the stored form of a token.
func Digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
