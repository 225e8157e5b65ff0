package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// nameTokenTTL bounds how long a minted display-name token stays valid.
const nameTokenTTL = time.Hour

// NameToken mints a short-lived token binding a verified display name, so
// the websocket join can present it instead of a free-text name.
func NameToken(secret, name string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   name,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(nameTokenTTL)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseNameToken validates a token and returns the display name it binds.
func ParseNameToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid name token")
	}
	return claims.Subject, nil
}
