package main

import (
	"context"

	"github.com/desertthunder/plsort/internal/auth"
	"github.com/desertthunder/plsort/internal/services"
	"github.com/desertthunder/plsort/internal/shared"
)

// establishSession runs the authorization flow and wraps the resulting token in a Spotify service.
//
// The returned service's HTTP client refreshes the access token transparently and saves each refreshed
// token to the cache. Once the refresh token is rejected, calls fail with an error classified as token
// expiry.
func (r *Runner) establishSession(ctx context.Context) (services.Service, error) {
	cfg := r.config

	addr, err := cfg.CallbackAddr()
	if err != nil {
		return nil, err
	}

	authenticator := auth.NewAuthenticator(cfg.Credentials.Spotify, auth.RequiredScopes)

	var opener func(string) error
	if cfg.Auth.OpenBrowser {
		opener = shared.OpenBrowser
	}

	cache := auth.NewTokenCache(cfg.Auth.CachePath)
	flow := auth.NewFlow(auth.FlowOpts{
		Authorizer:   authenticator,
		Cache:        cache,
		Scopes:       auth.RequiredScopes,
		Addr:         addr,
		CallbackPath: cfg.CallbackPath(),
		OpenBrowser:  opener,
		Output:       r.output,
		Logger:       r.logger,
		Timeout:      cfg.AuthTimeout(),
	})

	r.logger.Debug("establishing session", "callback", addr+cfg.CallbackPath(), "cache", cfg.Auth.CachePath)
	session, err := flow.Establish(ctx)
	if err != nil {
		return nil, err
	}

	if session.FromCache() {
		r.writePlain("%s\n", r.palette.OK("Found a valid cached token. Authenticated."))
	} else {
		r.writePlain("%s\n", r.palette.OK("Authentication successful! Returning to the terminal..."))
	}

	client := auth.NewClient(ctx, authenticator, session, cache, r.logger)
	return services.NewSpotifyService(client, r.logger), nil
}
