// Package auth turns a request's bearer token into the caller identity the
// services use to scope per-user records. Tokens are issued by an external
// identity provider; this package only verifies them.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrMalformedHeader = errors.New("invalid authorization header format")
	ErrInvalidToken    = errors.New("token verification failed")
	ErrMissingSubject  = errors.New("subject not found in token")
)

// Identity is the resolved caller. The zero value is the anonymous caller.
type Identity struct {
	Subject string `json:"subject"`
}

// Anonymous is the identity used when no credentials were presented.
var Anonymous = Identity{}

func (i Identity) Authenticated() bool {
	return i.Subject != ""
}

// Provider resolves the caller of a request. A request without credentials
// resolves to Anonymous with a nil error.
type Provider interface {
	Resolve(r *http.Request) (Identity, error)
}

// JWTProvider verifies HS256 tokens signed with a shared secret.
type JWTProvider struct {
	secret []byte
	issuer string
}

func NewJWTProvider(secret, issuer string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), issuer: issuer}
}

func (p *JWTProvider) Resolve(r *http.Request) (Identity, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Anonymous, nil
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return Anonymous, ErrMalformedHeader
	}
	return p.Verify(strings.TrimSpace(token))
}

// Verify checks the signature, expiry and issuer and returns the sub claim.
func (p *JWTProvider) Verify(tokenString string) (Identity, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Anonymous, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if p.issuer != "" && !claims.VerifyIssuer(p.issuer, true) {
		return Anonymous, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if claims.Subject == "" {
		return Anonymous, ErrMissingSubject
	}
	return Identity{Subject: claims.Subject}, nil
}

// Sign issues a token for subject. Used by tests and local tooling.
func (p *JWTProvider) Sign(claims jwt.RegisteredClaims) (string, error) {
	if claims.Issuer == "" {
		claims.Issuer = p.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}
