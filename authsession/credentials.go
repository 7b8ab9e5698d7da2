package authsession

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Credentials is the result of a successful code exchange.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Scopes       []string
	Expiry       time.Time
	IDToken      string
}

// HasRefreshToken reports whether the provider issued a refresh token, which it
// only does for access_type=offline.
func (c *Credentials) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// Expired reports whether the access token is past its expiry. A zero expiry never expires.
func (c *Credentials) Expired(now time.Time) bool {
	return !c.Expiry.IsZero() && !now.Before(c.Expiry)
}

// HasScope reports whether scope was granted.
func (c *Credentials) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Token converts the credentials back into an oauth2 token.
func (c *Credentials) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}

func credentialsFromToken(tok *oauth2.Token, requested []string) *Credentials {
	creds := &Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		Expiry:       tok.Expiry,
		Scopes:       append([]string(nil), requested...),
	}
	// Google reports the granted scopes, which can be narrower than requested.
	if granted, ok := tok.Extra("scope").(string); ok && strings.TrimSpace(granted) != "" {
		creds.Scopes = strings.Fields(granted)
	}
	if idToken, ok := tok.Extra("id_token").(string); ok {
		creds.IDToken = idToken
	}
	return creds
}
