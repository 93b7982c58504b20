package auth

import (
	"context"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/plsort/internal/shared"
)

// Refresher exchanges a refresh token for a new access token.
//
// Satisfied by spotifyauth.Authenticator.
type Refresher interface {
	RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// NewClient returns an HTTP client authorized with session's token.
//
// The access token is refreshed through refresher when it expires, and every refreshed token is
// written to cache so the next run starts from it. A nil cache disables the write-back.
func NewClient(ctx context.Context, refresher Refresher, session *Session, cache *TokenCache, logger *log.Logger) *http.Client {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	src := &savingTokenSource{
		ctx:       ctx,
		refresher: refresher,
		cache:     cache,
		scopes:    session.Scopes,
		token:     session.Token,
		logger:    shared.WithLogger(logger, "component", "auth"),
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(session.Token, src))
}

// savingTokenSource refreshes the current token and persists each new one.
//
// It is only called by the reuse wrapper once the held token is no longer valid.
type savingTokenSource struct {
	ctx       context.Context
	refresher Refresher
	cache     *TokenCache
	scopes    []string
	logger    *log.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh, err := s.refresher.RefreshToken(s.ctx, &oauth2.Token{RefreshToken: s.token.RefreshToken})
	if err != nil {
		return nil, err
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = s.token.RefreshToken
	}
	s.token = fresh
	s.logger.Debug("access token refreshed", "expiry", fresh.Expiry)

	if s.cache != nil {
		session := &Session{Token: fresh, Scopes: grantedScopes(fresh, s.scopes)}
		if err := s.cache.Save(session); err != nil {
			s.logger.Warn("failed to write token cache", "path", s.cache.Path(), "error", err)
		}
	}
	return fresh, nil
}
