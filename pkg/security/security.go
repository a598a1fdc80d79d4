package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const TOKEN_KEY = "Authorization"

var (
	ErrInvalidJWT = errors.New("invalid token")
)

// TokenClaims is the subset of the bearer token the relay cares about.
type TokenClaims struct {
	User       string `json:"u"`
	ExpireTime int64  `json:"exp"`
	NotBefore  int64  `json:"nbf"`
}

func NewTokenClaims(userID string, expireTime int64) TokenClaims {
	return TokenClaims{
		User:       userID,
		ExpireTime: expireTime,
		NotBefore:  time.Now().Unix() - 1,
	}
}

func (t TokenClaims) GetUser() string {
	return t.User
}

// GenerateJWT signs claims with an HS256 shared secret.
func GenerateJWT(info TokenClaims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"u":   info.User,
		"exp": info.ExpireTime,
		"nbf": info.NotBefore,
	})
	return token.SignedString(secret)
}

// VerifyToken parses and validates a bearer token, including the
// expiry and not-before windows.
func VerifyToken(tokenString string, secret []byte) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v, %w", t.Header["alg"], ErrInvalidJWT)
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrInvalidJWT)
	}
	if !token.Valid {
		return nil, ErrInvalidJWT
	}

	result := &TokenClaims{}
	if user, ok := claims["u"].(string); ok {
		result.User = user
	}
	if exp, ok := claims["exp"].(float64); ok {
		result.ExpireTime = int64(exp)
	}
	if nbf, ok := claims["nbf"].(float64); ok {
		result.NotBefore = int64(nbf)
	}

	now := time.Now().Unix()
	if result.ExpireTime < now || result.NotBefore > now {
		return nil, fmt.Errorf("expired token, %w", ErrInvalidJWT)
	}

	return result, nil
}
