package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims carries the whole per-browser UI state. Nothing of it is
// stored server side, so dropping the cookie is the same as a page reload.
type SessionClaims struct {
	Step       string `json:"step"`
	Identifier string `json:"identifier,omitempty"`

	Tab               string `json:"tab,omitempty"`
	PendingDeleteID   *int64 `json:"pending_delete_id,omitempty"`
	PendingDeleteName string `json:"pending_delete_name,omitempty"`

	// CodeHash is the bcrypt hash of the issued one-time code (strict mode only).
	CodeHash string `json:"code_hash,omitempty"`

	jwt.RegisteredClaims
}

func NewJTI() string { return uuid.NewString() }

func SignSession(claims SessionClaims, secret []byte, exp time.Time) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(exp)
	if claims.ID == "" {
		claims.ID = NewJTI()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func SessionClaimsFromToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	var claims SessionClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
