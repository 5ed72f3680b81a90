// Package auth verifies the identity tokens issued by the account service.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is what a verified token vouches for.
type Identity struct {
	UserID string
	Role   string
}

// JWT wraps the HS256 signing secret shared with the account service.
type JWT struct{ secret []byte }

func New(secret string) *JWT { return &JWT{secret: []byte(secret)} }

// Verify checks a token and returns the identity it carries.
func (j *JWT) Verify(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Identity{}, err
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return Identity{}, errors.New("token has no sub claim")
	}
	role, _ := claims["role"].(string)

	return Identity{UserID: userID, Role: role}, nil
}

// Sign issues a token for the identity with the given TTL. The server only
// verifies tokens in production; signing exists for the test harness and
// local tooling.
func (j *JWT) Sign(identity Identity, ttl time.Duration) (string, error) {
	if identity.UserID == "" {
		return "", errors.New("empty user id")
	}
	claims := jwt.MapClaims{
		"sub":  identity.UserID,
		"role": identity.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}
