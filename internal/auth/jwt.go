// Package auth provides session tokens, password hashing, and reset tokens
// for the admin API.
//
// SESSION FLOW:
//  1. POST /auth/login with email + password
//  2. Server verifies the credentials against the user directory
//  3. Server issues a JWT, stores it in an HttpOnly cookie
//  4. On subsequent API calls, middleware reads the cookie, validates the
//     JWT, and sets the user ID in the request context
//
// WHY JWT?
// JWT is stateless — the server doesn't need to store per-request session
// data. All the information needed (user ID, expiry) is inside the signed
// token, and the signature ensures nobody can tamper with it without the
// secret key.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer identifies tokens minted by this application; validation rejects
// tokens from anything else.
const issuer = "mediapro-studio"

// SessionTTL is how long an issued session token stays valid. The legacy
// site kept its persisted session forever; 24 hours is the new bound.
const SessionTTL = 24 * time.Hour

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations — keep it safe.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The standard "sub" (Subject) claim carries the
// numeric user ID, formatted as a decimal string.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new session token for the given user ID.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and fine for a
// single-server deployment.
func (s *TokenService) Generate(userID int64) (string, error) {
	return s.GenerateWithDuration(userID, SessionTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to mint already-expired or long-lived tokens.
func (s *TokenService) GenerateWithDuration(userID int64, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the user ID it
// encodes.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: token expired")
		}
		return 0, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("auth: invalid token claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: token has no valid subject")
	}

	return userID, nil
}
