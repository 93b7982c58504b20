package auth

import (
	"slices"
	"strings"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/desertthunder/plsort/internal/server"
	"github.com/desertthunder/plsort/internal/shared"
)

// expiryLeeway is how long before its expiry a token is already treated as expired.
const expiryLeeway = 60 * time.Second

// RequiredScopes are the scopes needed to read and rewrite the user's playlists.
var RequiredScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// State is the position of a [Flow] in session establishment.
type State int

const (
	Unauthenticated State = iota
	AwaitingCallback
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case AwaitingCallback:
		return "awaiting_callback"
	case Authenticated:
		return "authenticated"
	default:
		return ""
	}
}

// Session is an established authorization: the token pair and the scopes it was granted.
type Session struct {
	Token  *oauth2.Token
	Scopes []string
	Origin string // server.OriginCache or server.OriginCallback
}

// Valid reports whether the session can be used at now for every scope in required.
//
// A token without an expiry, or expiring within a minute, is not valid.
func (s *Session) Valid(required []string, now time.Time) bool {
	if s == nil || s.Token == nil || s.Token.AccessToken == "" {
		return false
	}
	if s.Token.Expiry.IsZero() || !s.Token.Expiry.After(now.Add(expiryLeeway)) {
		return false
	}
	return s.HasScopes(required)
}

// HasScopes reports whether every scope in required was granted.
func (s *Session) HasScopes(required []string) bool {
	for _, scope := range required {
		if !slices.Contains(s.Scopes, scope) {
			return false
		}
	}
	return true
}

// FromCache reports whether the session was loaded from the token cache.
func (s *Session) FromCache() bool {
	return s.Origin == server.OriginCache
}

// grantedScopes reads the scope list the token endpoint returned with token.
// Providers may omit it when the granted scopes equal the requested ones, so requested is the fallback.
func grantedScopes(token *oauth2.Token, requested []string) []string {
	if token != nil {
		if raw, ok := token.Extra("scope").(string); ok && strings.TrimSpace(raw) != "" {
			return strings.Fields(raw)
		}
	}
	return slices.Clone(requested)
}

// NewAuthenticator builds the authorization-code client for the configured application.
func NewAuthenticator(cfg shared.SpotifyConfig, scopes []string) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithRedirectURL(cfg.RedirectURI),
		spotifyauth.WithScopes(scopes...),
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
	)
}
