package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims issued by the identity gateway
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens minted by the identity gateway
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for tokens signed with secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify parses token and returns the actor it names
func (v *Verifier) Verify(token string) (Actor, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return Actor{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return Actor{}, errors.New("token has no subject")
	}

	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return Actor{ID: claims.Subject, Name: name}, nil
}

// Sign mints a token for actor. Production tokens come from the gateway;
// this is used by local tooling and tests.
func (v *Verifier) Sign(actor Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Name: actor.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
