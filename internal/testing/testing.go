// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"slices"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/desertthunder/plsort/internal/models"
)

// MockService is a test double for [services.Service].
//
// Mutation calls are recorded in Removed and Added. RemoveErr fails the RemoveErrAt-th
// remove call (1-based), or every remove call when RemoveErrAt is zero; AddErr likewise.
type MockService struct {
	mu sync.Mutex

	User      *models.User
	Playlists []models.Playlist
	Tracks    map[string][]models.TrackItem

	UserErr      error
	PlaylistsErr error
	TracksErr    error
	RemoveErr    error
	RemoveErrAt  int
	AddErr       error
	AddErrAt     int

	Removed       [][]string
	Added         [][]string
	PlaylistCalls int
	TrackCalls    int
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) CurrentUser(ctx context.Context) (*models.User, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	if m.User == nil {
		return &models.User{ID: "mock-user", DisplayName: "Mock User"}, nil
	}
	return m.User, nil
}

func (m *MockService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlaylistCalls++
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	return slices.Clone(m.Playlists), nil
}

func (m *MockService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.TrackItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrackCalls++
	if m.TracksErr != nil {
		return nil, m.TracksErr
	}
	return slices.Clone(m.Tracks[playlistID]), nil
}

func (m *MockService) RemoveTracks(ctx context.Context, playlistID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, slices.Clone(ids))
	if m.RemoveErr != nil && (m.RemoveErrAt == 0 || m.RemoveErrAt == len(m.Removed)) {
		return m.RemoveErr
	}
	return nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Added = append(m.Added, slices.Clone(ids))
	if m.AddErr != nil && (m.AddErrAt == 0 || m.AddErrAt == len(m.Added)) {
		return m.AddErr
	}
	return nil
}

// Calls returns the total number of mutation calls issued.
func (m *MockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Removed) + len(m.Added)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// MockAuthorizer is a test double for the OAuth authorization-code client.
//
// AuthURL returns AuthBase with the state appended; Exchange records each code it receives.
// RefreshToken returns Refreshed or RefreshErr and records the refresh token it was given.
type MockAuthorizer struct {
	mu sync.Mutex

	AuthBase string
	Token    *oauth2.Token
	Err      error
	Codes    []string

	Refreshed     *oauth2.Token
	RefreshErr    error
	RefreshTokens []string
}

func (m *MockAuthorizer) AuthURL(state string, opts ...oauth2.AuthCodeOption) string {
	return m.AuthBase + "?state=" + state
}

func (m *MockAuthorizer) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Codes = append(m.Codes, code)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Token, nil
}

func (m *MockAuthorizer) RefreshToken(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RefreshTokens = append(m.RefreshTokens, token.RefreshToken)
	if m.RefreshErr != nil {
		return nil, m.RefreshErr
	}
	if m.Refreshed == nil {
		return nil, errors.New("no refreshed token configured")
	}
	fresh := *m.Refreshed
	return &fresh, nil
}

// Refreshes returns the number of refresh calls so far.
func (m *MockAuthorizer) Refreshes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RefreshTokens)
}

// Exchanges returns the number of codes exchanged so far.
func (m *MockAuthorizer) Exchanges() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Codes)
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
