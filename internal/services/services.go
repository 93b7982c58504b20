// package services defines interface Service for interacting with the streaming API
package services

import (
	"context"

	"github.com/desertthunder/plsort/internal/models"
)

// Service defines the authenticated session handle the sorter uses to read and rewrite playlists.
type Service interface {
	// CurrentUser returns the account the session belongs to.
	CurrentUser(ctx context.Context) (*models.User, error)

	// GetPlaylists retrieves all playlists for the authenticated user, draining every page.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylistTracks retrieves every track entry of a playlist in server order.
	// Entries without a track payload or without an ID are skipped.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.TrackItem, error)

	// RemoveTracks removes all occurrences of ids from the playlist (at most 100).
	RemoveTracks(ctx context.Context, playlistID string, ids []string) error

	// AddTracks appends ids to the playlist in order (at most 100).
	AddTracks(ctx context.Context, playlistID string, ids []string) error

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
