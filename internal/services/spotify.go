// Spotify Web API implementation of [Service]
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"

	"github.com/desertthunder/plsort/internal/models"
	"github.com/desertthunder/plsort/internal/shared"
)

const (
	playlistPageSize = 50
	itemPageSize     = 100
)

// SpotifyService implements [Service] on top of a [spotify.Client].
//
// The HTTP client passed in carries the session's OAuth token; see [spotifyauth.Authenticator.Client].
type SpotifyService struct {
	client *spotify.Client
	logger *log.Logger
}

// NewSpotifyService creates a new Spotify service from an authorized HTTP client.
//
// No retry option is set: API errors reach the caller on the first failure.
func NewSpotifyService(httpClient *http.Client, logger *log.Logger, opts ...spotify.ClientOption) *SpotifyService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SpotifyService{
		client: spotify.New(httpClient, opts...),
		logger: shared.WithLogger(logger, "service", "spotify"),
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &models.User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// GetPlaylists retrieves all playlists for the authenticated user.
func (s *SpotifyService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(playlistPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	var playlists []models.Playlist
	for {
		for _, pl := range page.Playlists {
			playlists = append(playlists, models.Playlist{
				ID:            string(pl.ID),
				Name:          pl.Name,
				TrackCount:    int(pl.Tracks.Total),
				Owner:         pl.Owner.DisplayName,
				Collaborative: pl.Collaborative,
			})
		}

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to page playlists: %w", err)
		}
	}

	s.logger.Debug("fetched playlists", "count", len(playlists))
	return playlists, nil
}

// GetPlaylistTracks retrieves every track of a playlist, following pagination to the end.
func (s *SpotifyService) GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.TrackItem, error) {
	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(itemPageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist %s items: %w", playlistID, err)
	}

	var (
		tracks  []models.TrackItem
		skipped int
	)
	for {
		items := trackItemsFromPage(page.Items)
		skipped += len(page.Items) - len(items)
		tracks = append(tracks, items...)

		err := s.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to page playlist %s items: %w", playlistID, err)
		}
	}

	s.logger.Debug("fetched playlist items", "playlist", playlistID, "tracks", len(tracks), "skipped", skipped)
	return tracks, nil
}

// RemoveTracks removes every occurrence of ids from the playlist.
func (s *SpotifyService) RemoveTracks(ctx context.Context, playlistID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > shared.MaxBatchSize {
		return fmt.Errorf("%w: %d ids exceeds the %d per request limit", shared.ErrInvalidArgument, len(ids), shared.MaxBatchSize)
	}
	if _, err := s.client.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), toSpotifyIDs(ids)...); err != nil {
		return fmt.Errorf("failed to remove tracks from playlist %s: %w", playlistID, err)
	}
	return nil
}

// AddTracks appends ids to the end of the playlist.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > shared.MaxBatchSize {
		return fmt.Errorf("%w: %d ids exceeds the %d per request limit", shared.ErrInvalidArgument, len(ids), shared.MaxBatchSize)
	}
	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), toSpotifyIDs(ids)...); err != nil {
		return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
	}
	return nil
}

// trackItemsFromPage converts playlist items, dropping entries whose track is null
// (unavailable, deleted or an episode) or has no ID (local files).
func trackItemsFromPage(items []spotify.PlaylistItem) []models.TrackItem {
	tracks := make([]models.TrackItem, 0, len(items))
	for _, item := range items {
		t := item.Track.Track
		if t == nil || t.ID == "" {
			continue
		}

		artists := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			artists = append(artists, a.Name)
		}

		tracks = append(tracks, models.TrackItem{
			ID:      string(t.ID),
			Name:    t.Name,
			Artists: artists,
			AddedAt: item.AddedAt,
		})
	}
	return tracks
}

func toSpotifyIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}
