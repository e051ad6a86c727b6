package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the acting user extracted from a verified bearer token.
type Identity struct {
	UserID   string
	Username string
}

// Verifier validates HMAC-signed bearer tokens issued by the identity
// provider and extracts the acting identity. The service never issues tokens
// in production; Issue exists for tests and local development.
type Verifier struct {
	secret []byte
}

// Claims defines the token payload this service understands.
type Claims struct {
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// NewVerifier constructs a Verifier over the shared signing secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: signing secret cannot be empty")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify parses and validates a token string, returning the acting identity.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("auth: parse token: %w", err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("auth: invalid token")
	}
	if claims.Subject == "" {
		return Identity{}, fmt.Errorf("auth: token missing subject")
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	return Identity{UserID: claims.Subject, Username: username}, nil
}

// Issue signs a token for the given identity, valid for ttl.
func (v *Verifier) Issue(userID, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}
