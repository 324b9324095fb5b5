package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims identifies a logged-in player. Everything the currency
// handlers need is carried in the token so authenticated requests touch
// the database for ledger state only.
type SessionClaims struct {
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	ServerID  int64  `json:"serverId"`
	GroupID   int64  `json:"groupId"`
	PlayerID  int64  `json:"playerId"`
	AccountID int64  `json:"accountId"`
	jwt.RegisteredClaims
}

func signToken(claims *SessionClaims, secret string, expiry time.Duration, now time.Time) (string, error) {
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(expiry))
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func parseToken(tokenString, secret string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
