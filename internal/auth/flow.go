package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/plsort/internal/server"
	"github.com/desertthunder/plsort/internal/shared"
)

const (
	defaultTimeout  = 5 * time.Minute
	shutdownTimeout = 5 * time.Second
)

// Authorizer builds authorization URLs, exchanges codes and refreshes tokens.
//
// Satisfied by spotifyauth.Authenticator.
type Authorizer interface {
	server.Exchanger
	Refresher
	AuthURL(state string, opts ...oauth2.AuthCodeOption) string
}

// FlowOpts configures a [Flow].
type FlowOpts struct {
	Authorizer   Authorizer
	Cache        *TokenCache
	Scopes       []string               // Required scopes (default: RequiredScopes)
	Addr         string                 // Loopback host:port to listen on
	CallbackPath string                 // Path of the redirect URI (default: /callback)
	OpenBrowser  func(url string) error // Optional; failures are logged
	Output       io.Writer              // Where the authorization URL is printed (default: stdout)
	Logger       *log.Logger
	Timeout      time.Duration // How long to wait for the callback (default: 5m)
	Now          func() time.Time
}

// Flow establishes a [Session]: from the token cache when possible, otherwise through the
// authorization-code flow with a short-lived loopback listener.
type Flow struct {
	authorizer   Authorizer
	cache        *TokenCache
	scopes       []string
	addr         string
	callbackPath string
	openBrowser  func(string) error
	output       io.Writer
	logger       *log.Logger
	timeout      time.Duration
	now          func() time.Time

	mu    sync.Mutex
	state State
}

// NewFlow creates a [Flow] in the [Unauthenticated] state.
func NewFlow(opts FlowOpts) *Flow {
	f := &Flow{
		authorizer:   opts.Authorizer,
		cache:        opts.Cache,
		scopes:       opts.Scopes,
		addr:         opts.Addr,
		callbackPath: opts.CallbackPath,
		openBrowser:  opts.OpenBrowser,
		output:       opts.Output,
		logger:       opts.Logger,
		timeout:      opts.Timeout,
		now:          opts.Now,
		state:        Unauthenticated,
	}
	if len(f.scopes) == 0 {
		f.scopes = slices.Clone(RequiredScopes)
	}
	if f.callbackPath == "" {
		f.callbackPath = "/callback"
	}
	if f.output == nil {
		f.output = os.Stdout
	}
	if f.logger == nil {
		f.logger = shared.NewLogger(nil)
	}
	f.logger = shared.WithLogger(f.logger, "component", "auth")
	if f.timeout <= 0 {
		f.timeout = defaultTimeout
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// State returns the current position in the flow.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logger.Debug("auth state", "from", f.state, "to", s)
	f.state = s
}

// Establish returns a valid session.
//
// A cached token that is unexpired and carries every required scope is used directly, with no listener.
// An expired one with a refresh token and every required scope is refreshed and written back to the
// cache. When neither works, the listener is started, the authorization URL printed, and Establish blocks until the
// callback delivers a result, the listener fails, the timeout passes, or ctx is done.
func (f *Flow) Establish(ctx context.Context) (*Session, error) {
	if s := f.cachedSession(); s != nil {
		f.logger.Info("using cached token", "path", f.cache.Path())
		f.setState(Authenticated)
		return s, nil
	}

	if f.authorizer == nil {
		return nil, fmt.Errorf("%w: no authorizer configured", shared.ErrAuthFailed)
	}

	if s := f.refreshedSession(ctx); s != nil {
		f.logger.Info("refreshed cached token", "path", f.cache.Path())
		f.setState(Authenticated)
		return s, nil
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	authURL := f.authorizer.AuthURL(state)

	oauth := server.NewOAuthHandler(f.authorizer, state, f.callbackPath)
	cached := func() (*oauth2.Token, bool) {
		if s := f.cachedSession(); s != nil {
			return s.Token, true
		}
		return nil, false
	}
	router := server.NewCallbackRouter(f.logger,
		server.NewLoginHandler(authURL, cached),
		oauth,
		server.NewCachedHandler(oauth, cached),
	)

	srv, serveErr, err := server.Serve(f.addr, router)
	if err != nil {
		return nil, err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			f.logger.Warn("callback listener shutdown", "error", err)
		}
	}()

	f.setState(AwaitingCallback)
	fmt.Fprintf(f.output, "Open this URL in your browser to authenticate:\n%s\n", authURL)
	if f.openBrowser != nil {
		if err := f.openBrowser(authURL); err != nil {
			f.logger.Warn("could not open browser", "error", err)
		}
	}

	timer := time.NewTimer(f.timeout)
	defer timer.Stop()

	select {
	case result, ok := <-oauth.Result():
		if !ok {
			f.setState(Unauthenticated)
			return nil, fmt.Errorf("%w: callback closed without a result", shared.ErrAuthFailed)
		}
		if err := result.Error(); err != nil {
			f.setState(Unauthenticated)
			return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
		}
		return f.complete(result), nil
	case err, ok := <-serveErr:
		f.setState(Unauthenticated)
		if !ok || err == nil {
			err = errors.New("listener stopped")
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrServerStartup, err)
	case <-timer.C:
		f.setState(Unauthenticated)
		return nil, fmt.Errorf("%w: no authorization callback within %s", shared.ErrTimeout, f.timeout)
	case <-ctx.Done():
		f.setState(Unauthenticated)
		return nil, ctx.Err()
	}
}

// complete turns a successful handler result into a session and persists fresh tokens.
func (f *Flow) complete(result server.OAuthResult) *Session {
	session := &Session{
		Token:  result.Token,
		Scopes: grantedScopes(result.Token, f.scopes),
		Origin: result.Origin,
	}

	if result.Origin == server.OriginCache {
		if s := f.cachedSession(); s != nil {
			session.Scopes = s.Scopes
		}
	} else if f.cache != nil {
		if err := f.cache.Save(session); err != nil {
			f.logger.Warn("failed to write token cache", "path", f.cache.Path(), "error", err)
		}
	}

	f.setState(Authenticated)
	f.logger.Info("authenticated", "origin", session.Origin)
	return session
}

// cachedSession returns the cached session when it is valid for the required scopes.
func (f *Flow) cachedSession() *Session {
	if f.cache == nil {
		return nil
	}
	s, err := f.cache.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("ignoring token cache", "error", err)
		}
		return nil
	}
	if !s.Valid(f.scopes, f.now()) {
		f.logger.Debug("cached token unusable", "expiry", s.Token.Expiry, "scopes", s.Scopes)
		return nil
	}
	return s
}

// refreshedSession exchanges the cached refresh token for a new access token and saves the result.
//
// It returns nil when there is no cache, no refresh token, a missing scope, or the refresh fails.
func (f *Flow) refreshedSession(ctx context.Context) *Session {
	if f.cache == nil {
		return nil
	}
	cached, err := f.cache.Load()
	if err != nil || cached.Token.RefreshToken == "" || !cached.HasScopes(f.scopes) {
		return nil
	}

	// Only the refresh token is passed so the token source always refreshes.
	fresh, err := f.authorizer.RefreshToken(ctx, &oauth2.Token{RefreshToken: cached.Token.RefreshToken})
	if err != nil {
		f.logger.Warn("token refresh failed, starting authorization", "error", err)
		return nil
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = cached.Token.RefreshToken
	}

	session := &Session{
		Token:  fresh,
		Scopes: grantedScopes(fresh, cached.Scopes),
		Origin: server.OriginCache,
	}
	if !session.Valid(f.scopes, f.now()) {
		f.logger.Debug("refreshed token unusable", "expiry", fresh.Expiry, "scopes", session.Scopes)
		return nil
	}

	if err := f.cache.Save(session); err != nil {
		f.logger.Warn("failed to write token cache", "path", f.cache.Path(), "error", err)
	}
	return session
}
