package auth

import (
	"fmt"
	"time"

	"github.com/BradenHooton/wakeguard/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const sessionTokenIssuer = "wakeguard"

// SessionTokenManager signs and verifies the session cookie value. The cookie
// only references a server-side session; it grants nothing on its own.
type SessionTokenManager struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSessionTokenManager creates a SessionTokenManager signing with secret (HS256)
func NewSessionTokenManager(secret string, maxAge time.Duration) *SessionTokenManager {
	return &SessionTokenManager{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// MaxAge is the absolute lifetime of an issued cookie
func (tm *SessionTokenManager) MaxAge() time.Duration {
	return tm.maxAge
}

// Issue signs a cookie value for sessionID, valid for maxAge from issuedAt
func (tm *SessionTokenManager) Issue(sessionID string, issuedAt time.Time) (string, error) {
	claims := &models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    sessionTokenIssuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tm.maxAge)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies a cookie value and returns the session ID it references
func (tm *SessionTokenManager) Parse(tokenString string) (string, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}

	if !token.Valid || claims.SessionID() == "" {
		return "", models.ErrUnauthorized
	}

	return claims.SessionID(), nil
}
