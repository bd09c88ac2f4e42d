package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-accounts-api/internal/config"
	"github.com/go-accounts-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// ResetClaims is the payload of a password-reset token. The user id rides
// in the registered Subject claim; Email ties the token to the address it
// was requested for.
type ResetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a process-wide secret.
type Provider struct {
	secret     []byte
	sessionTTL time.Duration
	resetTTL   time.Duration
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return &Provider{
		secret:     []byte(cfg.JWTSecret),
		sessionTTL: cfg.SessionTokenTTL,
		resetTTL:   cfg.ResetTokenTTL,
	}, nil
}

// SignSession issues a session token for the given user.
func (p *Provider) SignSession(userID string) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// SignReset issues a short-lived password-reset token scoped to the user
// id and email.
func (p *Provider) SignReset(userID, email string) (string, error) {
	claims := ResetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(p.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// VerifySession validates a session token. A bad signature and an expired
// token are both reported as domain.ErrInvalidToken.
func (p *Provider) VerifySession(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := p.verify(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyReset validates a password-reset token.
func (p *Provider) VerifyReset(tokenStr string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := p.verify(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (p *Provider) verify(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("verify token: %w", domain.ErrInvalidToken)
	}
	return nil
}
