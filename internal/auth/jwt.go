package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines the JWT claims structure. Only user_id is set unless the
// codec was built with a TTL.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec issues and validates HS256 tokens with a process-wide secret.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec. A zero ttl issues tokens without an expiry,
// which makes Issue deterministic for a given user id.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a new JWT for the given user id.
func (c *TokenCodec) Issue(userID int64) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("cannot issue token for user id %d", userID)
	}
	claims := &Claims{UserID: userID}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(c.now().Add(c.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Validate parses and validates a JWT string. Every failure is reported as
// ErrInvalidToken wrapping the parser's reason.
func (c *TokenCodec) Validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims, nil
}
