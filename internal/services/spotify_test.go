package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/zmb3/spotify/v2"

	"github.com/desertthunder/plsort/internal/models"
	"github.com/desertthunder/plsort/internal/shared"
	tu "github.com/desertthunder/plsort/internal/testing"
)

// fakeAPI serves the subset of the Web API the sorter consumes.
type fakeAPI struct {
	mu      sync.Mutex
	server  *httptest.Server
	deletes int
	posts   [][]string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "user-1", "display_name": "Ana"})
	})

	mux.HandleFunc("GET /me/playlists", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "1" {
			writeJSON(w, http.StatusOK, map[string]any{
				"items": []any{playlistJSON("pl-2", "Second", 7, true)},
				"total": 2,
				"next":  nil,
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []any{playlistJSON("pl-1", "First", 3, false)},
			"total": 2,
			"next":  api.server.URL + "/me/playlists?offset=1&limit=1",
		})
	})

	mux.HandleFunc("GET /playlists/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "missing":
			writeJSON(w, http.StatusNotFound, map[string]any{
				"error": map[string]any{"status": 404, "message": "Not found."},
			})
		case "expired":
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"status": 401, "message": "The access token expired"},
			})
		default:
			if r.URL.Query().Get("offset") == "2" {
				writeJSON(w, http.StatusOK, map[string]any{
					"items": []any{itemJSON("t3", "Gamma", "Zed", "2022-01-01T00:00:00Z")},
					"next":  nil,
				})
				return
			}
			local := itemJSON("", "Local file", "Me", "2021-06-01T00:00:00Z")
			writeJSON(w, http.StatusOK, map[string]any{
				"items": []any{
					itemJSON("t1", "Alpha", "Xavier", "2020-01-01T00:00:00Z"),
					local,
					itemJSON("t2", "Beta", "", "2021-01-01T00:00:00Z"),
				},
				"next": api.server.URL + "/playlists/" + r.PathValue("id") + "/tracks?offset=2&limit=2",
			})
		}
	})

	mux.HandleFunc("DELETE /playlists/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.deletes++
		api.mu.Unlock()
		if r.PathValue("id") == "locked" {
			writeJSON(w, http.StatusForbidden, map[string]any{
				"error": map[string]any{"status": 403, "message": "You cannot remove tracks from a playlist you don't own."},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"snapshot_id": "snap"})
	})

	mux.HandleFunc("POST /playlists/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		api.mu.Lock()
		api.posts = append(api.posts, body.URIs)
		api.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"snapshot_id": "snap"})
	})

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) service() *SpotifyService {
	return NewSpotifyService(a.server.Client(), shared.NewLogger(io.Discard), spotify.WithBaseURL(a.server.URL+"/"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func playlistJSON(id, name string, total int, collaborative bool) map[string]any {
	return map[string]any{
		"id":            id,
		"name":          name,
		"collaborative": collaborative,
		"owner":         map[string]any{"id": "user-1", "display_name": "Ana"},
		"tracks":        map[string]any{"href": "", "total": total},
	}
}

func itemJSON(id, name, artist, addedAt string) map[string]any {
	artists := []any{}
	if artist != "" {
		artists = append(artists, map[string]any{"name": artist})
	}
	var trackID any = id
	if id == "" {
		trackID = nil
	}
	return map[string]any{
		"added_at": addedAt,
		"is_local": id == "",
		"track": map[string]any{
			"type":    "track",
			"id":      trackID,
			"name":    name,
			"artists": artists,
		},
	}
}

func TestSpotifyService(t *testing.T) {
	ctx := context.Background()

	t.Run("Name", func(t *testing.T) {
		if got := NewSpotifyService(http.DefaultClient, nil).Name(); got != "Spotify" {
			t.Errorf("expected service name 'Spotify', got %s", got)
		}
	})

	t.Run("CurrentUser", func(t *testing.T) {
		user, err := newFakeAPI(t).service().CurrentUser(ctx)
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if user.ID != "user-1" || user.DisplayName != "Ana" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("GetPlaylists drains every page", func(t *testing.T) {
		playlists, err := newFakeAPI(t).service().GetPlaylists(ctx)
		if err != nil {
			t.Fatalf("GetPlaylists() error = %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(playlists))
		}
		want := models.Playlist{ID: "pl-2", Name: "Second", TrackCount: 7, Owner: "Ana", Collaborative: true}
		if playlists[1] != want {
			t.Errorf("second playlist = %+v, want %+v", playlists[1], want)
		}
		if playlists[0].ID != "pl-1" {
			t.Errorf("server order not kept: %+v", playlists)
		}
	})

	t.Run("GetPlaylistTracks skips local files and follows next", func(t *testing.T) {
		tracks, err := newFakeAPI(t).service().GetPlaylistTracks(ctx, "pl-1")
		if err != nil {
			t.Fatalf("GetPlaylistTracks() error = %v", err)
		}

		ids := make([]string, 0, len(tracks))
		for _, tr := range tracks {
			ids = append(ids, tr.ID)
		}
		if !slices.Equal(ids, []string{"t1", "t2", "t3"}) {
			t.Fatalf("ids = %v, want [t1 t2 t3]", ids)
		}
		if tracks[0].PrimaryArtist() != "Xavier" || tracks[0].AddedAt != "2020-01-01T00:00:00Z" {
			t.Errorf("unexpected first track %+v", tracks[0])
		}
		if len(tracks[1].Artists) != 0 {
			t.Errorf("expected no artists, got %v", tracks[1].Artists)
		}
	})

	t.Run("errors are classified", func(t *testing.T) {
		svc := newFakeAPI(t).service()

		_, err := svc.GetPlaylistTracks(ctx, "missing")
		if !errors.Is(ClassifyError(err), shared.ErrPlaylistNotFound) {
			t.Errorf("expected not found, got %v", err)
		}

		_, err = svc.GetPlaylistTracks(ctx, "expired")
		if !errors.Is(ClassifyError(err), shared.ErrTokenExpired) {
			t.Errorf("expected token expired, got %v", err)
		}

		err = svc.RemoveTracks(ctx, "locked", []string{"t1"})
		if !errors.Is(ClassifyError(err), shared.ErrPermissionDenied) {
			t.Errorf("expected permission denied, got %v", err)
		}
	})

	t.Run("RemoveTracks and AddTracks", func(t *testing.T) {
		api := newFakeAPI(t)
		svc := api.service()

		if err := svc.RemoveTracks(ctx, "pl-1", []string{"t1", "t2"}); err != nil {
			t.Fatalf("RemoveTracks() error = %v", err)
		}
		if err := svc.AddTracks(ctx, "pl-1", []string{"t2", "t1"}); err != nil {
			t.Fatalf("AddTracks() error = %v", err)
		}
		if err := svc.AddTracks(ctx, "pl-1", nil); err != nil {
			t.Fatalf("AddTracks(nil) error = %v", err)
		}

		if api.deletes != 1 {
			t.Errorf("expected 1 delete, got %d", api.deletes)
		}
		if len(api.posts) != 1 || !slices.Equal(api.posts[0], []string{"spotify:track:t2", "spotify:track:t1"}) {
			t.Errorf("posted uris = %v", api.posts)
		}
	})

	t.Run("oversized batches are rejected locally", func(t *testing.T) {
		api := newFakeAPI(t)
		ids := make([]string, shared.MaxBatchSize+1)
		for i := range ids {
			ids[i] = fmt.Sprintf("t%d", i)
		}

		err := api.service().AddTracks(ctx, "pl-1", ids)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if len(api.posts) != 0 {
			t.Error("no request should be sent")
		}
	})

	t.Run("transport failures surface unchanged", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(nil, errors.New("connection refused"))
		svc := NewSpotifyService(&http.Client{Transport: rt}, shared.NewLogger(io.Discard))

		_, err := svc.GetPlaylists(ctx)
		if err == nil || !strings.Contains(err.Error(), "connection refused") {
			t.Fatalf("expected transport error, got %v", err)
		}
		if !errors.Is(ClassifyError(err), shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest classification, got %v", ClassifyError(err))
		}
	})
}

func TestTrackItemsFromPage(t *testing.T) {
	full := func(id, name string, artists ...string) *spotify.FullTrack {
		tr := &spotify.FullTrack{}
		tr.ID = spotify.ID(id)
		tr.Name = name
		for _, a := range artists {
			tr.Artists = append(tr.Artists, spotify.SimpleArtist{Name: a})
		}
		return tr
	}

	items := []spotify.PlaylistItem{
		{AddedAt: "2021-01-01T00:00:00Z", Track: spotify.PlaylistItemTrack{Track: full("a", "One", "X", "Y")}},
		{AddedAt: "2021-01-02T00:00:00Z", Track: spotify.PlaylistItemTrack{Track: nil}},
		{AddedAt: "2021-01-03T00:00:00Z", Track: spotify.PlaylistItemTrack{Track: full("b", "Two")}},
		{AddedAt: "2021-01-04T00:00:00Z", Track: spotify.PlaylistItemTrack{Track: full("c", "Three", "Z")}},
		{AddedAt: "2021-01-05T00:00:00Z", Track: spotify.PlaylistItemTrack{Track: full("d", "Four", "W")}},
	}

	got := trackItemsFromPage(items)
	if len(got) != 4 {
		t.Fatalf("expected 4 tracks after dropping the null entry, got %d", len(got))
	}
	if !slices.Equal(got[0].Artists, []string{"X", "Y"}) {
		t.Errorf("artists = %v, want [X Y]", got[0].Artists)
	}
	if got[1].ID != "b" || got[1].AddedAt != "2021-01-03T00:00:00Z" {
		t.Errorf("unexpected second track %+v", got[1])
	}

	items = append(items, spotify.PlaylistItem{Track: spotify.PlaylistItemTrack{Track: full("", "Local")}})
	if got := trackItemsFromPage(items); len(got) != 4 {
		t.Errorf("expected id-less entry to be skipped, got %d tracks", len(got))
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"401 status", spotify.Error{Status: 401, Message: "Invalid access token"}, shared.ErrTokenExpired},
		{"expired message", errors.New("The access token expired"), shared.ErrTokenExpired},
		{"404 status", spotify.Error{Status: 404, Message: "Not found."}, shared.ErrPlaylistNotFound},
		{"playlist not found message", errors.New("playlist not found"), shared.ErrPlaylistNotFound},
		{"403 status", &spotify.Error{Status: 403, Message: "Forbidden"}, shared.ErrPermissionDenied},
		{"permission message", errors.New("insufficient permission"), shared.ErrPermissionDenied},
		{"other", errors.New("bad gateway"), shared.ErrAPIRequest},
		{"already classified", fmt.Errorf("%w: x", shared.ErrPermissionDenied), shared.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("ClassifyError() = %v, want %v", got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("classified error should keep the original in its chain")
			}
		})
	}

	if ClassifyError(nil) != nil {
		t.Error("ClassifyError(nil) should be nil")
	}
}
