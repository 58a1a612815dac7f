package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "heartfelt"

// Claims is the payload carried by every access token.
//
// The middleware trusts these fields after verifying the signature, so a
// request can be attributed to a user without a database round trip.
//
// Why embed jwt.RegisteredClaims?
//   - exp, iat and iss come with it, and the parser checks exp for us.
//   - Standard tooling (jwt.io, gateway plugins) recognises those fields.
//   - Only what handlers need is added on top: the user id and the email.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the user, valid for ttl.
//
// Why HS256?
//   - One service both issues and verifies tokens, so a shared secret is
//     enough and there is no key pair to distribute or rotate.
//   - If another service ever needs to verify without being able to issue,
//     switch to RS256 or EdDSA so only the issuer holds the private key.
func GenerateToken(userID uuid.UUID, email, secret string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies the signature and expiry of tokenString and returns
// its claims.
//
// Only HMAC signing methods are accepted. A token claiming "none" or an
// asymmetric algorithm is rejected before the key is ever used.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("token has no user")
	}

	return claims, nil
}
