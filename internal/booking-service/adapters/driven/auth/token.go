package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const HashFactor = 10

var errBadClaims = errors.New("token is missing required claims")

type accessClaims struct {
	UserID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), HashFactor)
}

func checkPassword(hashed []byte, password string) bool {
	return len(hashed) > 0 && bcrypt.CompareHashAndPassword(hashed, []byte(password)) == nil
}

func signAccessToken(secret []byte, userID, email string, now time.Time, ttl time.Duration) (string, accessClaims, error) {
	c := accessClaims{
		UserID:    userID,
		Email:     email,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(ttl).Truncate(time.Second),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   c.UserID,
		"email": c.Email,
		"jti":   c.TokenID,
		"iat":   now.Unix(),
		"exp":   c.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", accessClaims{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, c, nil
}

// parseHS256 verifies signature and expiry and returns the claims.
func parseHS256(secret []byte, tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errBadClaims
	}
	return claims, nil
}

func parseAccessToken(secret []byte, tokenString string) (accessClaims, error) {
	claims, err := parseHS256(secret, tokenString)
	if err != nil {
		return accessClaims{}, err
	}
	c := accessClaims{
		UserID:  claimString(claims, "sub"),
		Email:   claimString(claims, "email"),
		TokenID: claimString(claims, "jti"),
	}
	exp, ok := claims["exp"].(float64)
	if c.UserID == "" || c.TokenID == "" || !ok {
		return accessClaims{}, errBadClaims
	}
	c.ExpiresAt = time.Unix(int64(exp), 0)
	return c, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
