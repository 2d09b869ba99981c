package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

type JWTUtil struct {
	secret string
}

func NewJWTUtil(secret string) *JWTUtil {
	return &JWTUtil{secret: secret}
}

func (j *JWTUtil) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unauthorized")
		}
		return []byte(j.secret), nil
	})
}

// UserID validates the token and extracts the user id. The auth provider
// puts it in "sub"; tokens minted by our own auth service use "user_id".
func (j *JWTUtil) UserID(tokenString string) (string, error) {
	token, err := j.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	for _, key := range []string{"sub", "user_id"} {
		if id, ok := claims[key].(string); ok && id != "" {
			return id, nil
		}
	}
	return "", ErrInvalidToken
}

// GenerateToken signs a token for userID. Used by tests and local tooling.
func (j *JWTUtil) GenerateToken(userID string, claims jwt.MapClaims) (string, error) {
	all := jwt.MapClaims{"sub": userID}
	for k, v := range claims {
		all[k] = v
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, all)
	return token.SignedString([]byte(j.secret))
}
