// Package auth implements the single-admin credential check and the signed
// session tokens carried by the browser's `session` cookie. Tokens are
// stateless HS256 JWTs - there is no server-side session store.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

const SessionCookie = "session"

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidSession = errors.New("invalid session")

// Sessions issues and verifies session tokens for the configured admin user.
type Sessions struct {
	secret []byte

	adminEmail        string
	adminPassword     string
	adminPasswordHash string

	ttl time.Duration
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func NewSessions(secret, adminEmail, adminPassword, adminPasswordHash string) *Sessions {
	return &Sessions{
		secret:            []byte(secret),
		adminEmail:        adminEmail,
		adminPassword:     adminPassword,
		adminPasswordHash: adminPasswordHash,
		ttl:               24 * time.Hour,
	}
}

// Login checks the supplied credentials against the configured admin identity
// and returns a session token. A bcrypt hash takes precedence over a plaintext
// password when both are configured.
func (s *Sessions) Login(email, password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(email), []byte(s.adminEmail)) != 1 {
		return "", ErrInvalidCredentials
	}

	if s.adminPasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)); err != nil {
			return "", ErrInvalidCredentials
		}
	} else if subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword)) != 1 {
		return "", ErrInvalidCredentials
	}

	return s.Issue(email)
}

// Issue creates a signed session token for the given email, valid for the
// session TTL from now.
func (s *Sessions) Issue(email string) (string, error) {
	now := time.Now()

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("unable to sign session token (%v)", err)
	}

	return signed, nil
}

// Verify parses and validates a session token, returning its claims. Expired,
// malformed or mis-signed tokens all return ErrInvalidSession.
func (s *Sessions) Verify(tokenstr string) (*Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(tokenstr, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}

		return s.secret, nil
	})

	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	if claims.Email == "" {
		return nil, ErrInvalidSession
	}

	return &claims, nil
}

// TTL is the session lifetime, exposed for cookie expiry.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}
