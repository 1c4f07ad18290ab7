package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Authenticator turns a bearer credential into the identity provider's
// subject for the caller.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

type SignedDetails struct {
	Email string `json:"email,omitempty"`
	jwt.StandardClaims
}

type JWTAuthenticator struct {
	secret   []byte
	audience string
	issuer   string
}

func NewJWTAuthenticator(secret, audience, issuer string) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), audience: audience, issuer: issuer}
}

func (a *JWTAuthenticator) Authenticate(signedToken string) (string, error) {
	token, err := jwt.ParseWithClaims(
		signedToken,
		&SignedDetails{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	claims, ok := token.Claims.(*SignedDetails)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: the token is invalid", ErrUnauthenticated)
	}
	if a.audience != "" && !claims.VerifyAudience(a.audience, true) {
		return "", fmt.Errorf("%w: unexpected audience", ErrUnauthenticated)
	}
	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, true) {
		return "", fmt.Errorf("%w: unexpected issuer", ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims.Subject, nil
}

// GenerateToken signs an HS256 token the way the identity provider does. It is
// meant for local development and tests.
func GenerateToken(secret, subject, email, audience, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := SignedDetails{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			Audience:  audience,
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
