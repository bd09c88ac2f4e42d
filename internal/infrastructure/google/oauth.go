package google

import (
	"context"
	"fmt"

	"github.com/go-accounts-api/internal/config"
	"github.com/go-accounts-api/internal/domain"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
)

// Payload holds the verified claims extracted from a Google ID token.
type Payload struct {
	Sub        string
	Email      string
	GivenName  string
	FamilyName string
}

// FullName derives a display name from the Google name claims. Falls back
// to "Guest" when the token carries no name parts at all.
func (p *Payload) FullName() string {
	switch {
	case p.GivenName != "" && p.FamilyName != "":
		return p.GivenName + " " + p.FamilyName
	case p.GivenName != "":
		return p.GivenName
	case p.FamilyName != "":
		return p.FamilyName
	default:
		return "Guest"
	}
}

// Client drives the Google authorization-code flow: it produces the
// consent URL and exchanges the returned code for a verified identity.
type Client struct {
	oauth    *oauth2.Config
	validate func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		validate: idtoken.Validate,
	}
}

// AuthURL returns the Google consent-screen URL.
func (c *Client) AuthURL() string {
	return c.oauth.AuthCodeURL("", oauth2.AccessTypeOnline)
}

// ExchangeCode trades an authorization code for tokens and validates the
// returned ID token. Any failure to produce a verified payload is reported
// as domain.ErrUnauthorized.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Payload, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", domain.ErrUnauthorized)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("no id_token in token response: %w", domain.ErrUnauthorized)
	}
	p, err := c.validate(ctx, rawIDToken, c.oauth.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google id token: %w", domain.ErrUnauthorized)
	}
	email, _ := p.Claims["email"].(string)
	givenName, _ := p.Claims["given_name"].(string)
	familyName, _ := p.Claims["family_name"].(string)
	return &Payload{
		Sub:        p.Subject,
		Email:      email,
		GivenName:  givenName,
		FamilyName: familyName,
	}, nil
}
