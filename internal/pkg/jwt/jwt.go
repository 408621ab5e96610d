package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims carries a session: the user handle, when the session started and
// when the user was last active. Expiry of the token itself is the hard
// session lifetime; idle expiry is judged from LastActivity by the caller.
type Claims struct {
	UserID       string `json:"user_id"`
	LastActivity int64  `json:"last_activity"`
	jwtlib.RegisteredClaims
}

func GenerateToken(userID string, issuedAt, lastActivity time.Time, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:       userID,
		LastActivity: lastActivity.Unix(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(issuedAt.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(issuedAt),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenString, &Claims{}, func(token *jwtlib.Token) (interface{}, error) {
		if token.Method.Alg() != jwtlib.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return nil, errors.New("missing user id")
	}
	return claims, nil
}
