package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims включает стандартные утверждения плюс uid/email субъекта.
type Claims struct {
	jwt.RegisteredClaims
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// JWTVerifier проверяет HS256-токены локально, без сетевого вызова.
// Используется, когда провайдер идентификации выпускает подписанные JWT
// с общим секретом (и в тестах).
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, ErrMissingCredential
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.UID == "" {
		return Identity{}, ErrInvalidCredential
	}

	return Identity{UID: claims.UID, Email: claims.Email}, nil
}

// IssueToken выпускает HS256-токен. Нужен dev-окружению и тестам,
// настоящий провайдер выпускает токены сам.
func IssueToken(id Identity, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UID:   id.UID,
		Email: id.Email,
	})
	return token.SignedString(secret)
}
