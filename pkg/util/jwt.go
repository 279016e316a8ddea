package util

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the decoded subset of a session token the server acts on.
type TokenClaims struct {
	UserID    int64
	Email     string
	JTI       string
	ExpiresAt time.Time
}

// GenerateJWT creates a token for a given user ID. The jti identifies the
// token for sign-out revocation.
func GenerateJWT(userID int64, email, secret string) (string, string, error) {
	jti := uuid.NewString()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"jti":     jti,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

// ParseJWT validates the token and extracts the claims the server uses.
func ParseJWT(tokenStr, secret string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenMalformed
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return nil, jwt.ErrTokenMalformed
	}
	jti, _ := claims["jti"].(string)
	email, _ := claims["email"].(string)

	out := &TokenClaims{
		UserID: int64(userIDFloat),
		Email:  email,
		JTI:    jti,
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}

func ExtractToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.Split(auth, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return parts[1]
}
