// Package auth provides JWT session tokens and password hashing.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client POSTs username/password to /api/auth/login
// 2. Server verifies the bcrypt hash, issues a signed JWT carrying the
//    principal (id, display name, role)
// 3. Client sends the token on every request: Authorization: Bearer <jwt>
// 4. Middleware validates the signature and expiry, and puts the principal
//    in the request context — no database lookup per request
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store session
// data. All the information needed (principal, expiry) is inside the signed
// token. The signature ensures nobody can tamper with it without the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/promptmaster/internal/model"
)

// TokenTTL is how long an issued session token stays valid.
// Seven days keeps casual users logged in across a work week; after that
// the client must authenticate again.
const TokenTTL = 7 * 24 * time.Hour

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations — keep it safe.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: PROMPTMASTER_JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. The standard "sub" claim carries the user id;
// name and role ride along as private claims so that authorization decisions
// and authorName denormalization never need a users-table lookup.
type claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Generate creates and signs a session token for the given principal.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, fast, and right for a
// single-server deployment.
func (s *TokenService) Generate(p model.Principal) (string, error) {
	return s.GenerateWithDuration(p, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(p model.Principal, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Name: p.Name,
		Role: string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    "promptmaster",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the principal it
// encodes.
//
// FAIL CLOSED:
// Any malformed, expired, or tampered token yields an error and a zero
// principal — there is no such thing as a partially trusted token. The
// checks (all enforced by the jwt library plus the options below):
//   - signature is valid (wasn't tampered with)
//   - token is not expired
//   - issuer matches "promptmaster" (rejects tokens from other apps)
//   - algorithm is HS256 (prevents algorithm confusion attacks)
//
// Beyond that, the embedded role must be one of the three known roles —
// a token claiming role "superadmin" is as invalid as a bad signature.
func (s *TokenService) Validate(tokenStr string) (model.Principal, error) {
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
		jwt.WithIssuer("promptmaster"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Principal{}, fmt.Errorf("auth: token expired")
		}
		return model.Principal{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return model.Principal{}, fmt.Errorf("auth: invalid token claims")
	}

	p := model.Principal{
		ID:   c.Subject,
		Name: c.Name,
		Role: model.Role(c.Role),
	}
	if p.ID == "" {
		return model.Principal{}, fmt.Errorf("auth: token has no subject")
	}
	if !p.Role.Valid() {
		return model.Principal{}, fmt.Errorf("auth: token has unknown role %q", c.Role)
	}

	return p, nil
}
