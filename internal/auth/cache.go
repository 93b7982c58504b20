package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/desertthunder/plsort/internal/server"
)

// cachedToken is the on-disk token layout, compatible with Spotipy's cache file.
type cachedToken struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
}

// TokenCache persists a [Session] to a local JSON file.
type TokenCache struct {
	path string
	now  func() time.Time
}

// NewTokenCache creates a cache backed by the file at path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path, now: time.Now}
}

// Path returns the cache file location.
func (c *TokenCache) Path() string {
	return c.path
}

// Load reads the cached session.
//
// A missing file yields an error matching [os.ErrNotExist].
func (c *TokenCache) Load() (*Session, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token cache: %w", err)
	}

	var ct cachedToken
	if err := json.Unmarshal(data, &ct); err != nil {
		return nil, fmt.Errorf("failed to decode token cache %s: %w", c.path, err)
	}
	if ct.AccessToken == "" {
		return nil, fmt.Errorf("token cache %s has no access token", c.path)
	}

	token := &oauth2.Token{
		AccessToken:  ct.AccessToken,
		TokenType:    ct.TokenType,
		RefreshToken: ct.RefreshToken,
	}
	if ct.ExpiresAt > 0 {
		token.Expiry = time.Unix(ct.ExpiresAt, 0)
	}

	return &Session{
		Token:  token,
		Scopes: strings.Fields(ct.Scope),
		Origin: server.OriginCache,
	}, nil
}

// Save writes s to the cache file with owner-only permissions.
func (c *TokenCache) Save(s *Session) error {
	if s == nil || s.Token == nil {
		return fmt.Errorf("no token to cache")
	}

	ct := cachedToken{
		AccessToken:  s.Token.AccessToken,
		TokenType:    s.Token.TokenType,
		Scope:        strings.Join(s.Scopes, " "),
		RefreshToken: s.Token.RefreshToken,
	}
	if ct.TokenType == "" {
		ct.TokenType = "Bearer"
	}
	if !s.Token.Expiry.IsZero() {
		ct.ExpiresAt = s.Token.Expiry.Unix()
		ct.ExpiresIn = max(int64(s.Token.Expiry.Sub(c.now()).Seconds()), 0)
	}

	data, err := json.Marshal(ct)
	if err != nil {
		return fmt.Errorf("failed to encode token cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token cache directory: %w", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache: %w", err)
	}
	return os.Chmod(c.path, 0600)
}
