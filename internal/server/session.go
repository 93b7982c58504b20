package server

import (
	"net/http"

	"golang.org/x/oauth2"
)

// CachedTokenFunc returns the cached token when it is still valid for the required scopes.
type CachedTokenFunc func() (*oauth2.Token, bool)

// LoginHandler serves the entry route: it sends the browser to the authorization page,
// or straight to the cache route when a usable token is already stored.
type LoginHandler struct {
	authURL string
	cached  CachedTokenFunc
}

// NewLoginHandler creates a [LoginHandler] redirecting to authURL.
func NewLoginHandler(authURL string, cached CachedTokenFunc) *LoginHandler {
	return &LoginHandler{authURL: authURL, cached: cached}
}

// Routes returns the HTTP routes this handler serves.
func (h *LoginHandler) Routes() []string {
	return []string{"/{$}"}
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cached != nil {
		if _, ok := h.cached(); ok {
			http.Redirect(w, r, "/authenticated", http.StatusFound)
			return
		}
	}
	http.Redirect(w, r, h.authURL, http.StatusFound)
}

// CachedHandler completes the flow from the token cache.
//
// Without a usable cached token it redirects back to the entry route.
type CachedHandler struct {
	oauth  *OAuthHandler
	cached CachedTokenFunc
}

// NewCachedHandler creates a [CachedHandler] that reports through oauth's result channel.
func NewCachedHandler(oauth *OAuthHandler, cached CachedTokenFunc) *CachedHandler {
	return &CachedHandler{oauth: oauth, cached: cached}
}

// Routes returns the HTTP routes this handler serves.
func (h *CachedHandler) Routes() []string {
	return []string{"/authenticated"}
}

func (h *CachedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.cached == nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	token, ok := h.cached()
	if !ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	h.oauth.Send(NewOAuthResult(token, OriginCache))
	renderPage(w, http.StatusOK, "✓ Authenticated From Cache", "You can close this window and return to the terminal.")
}
