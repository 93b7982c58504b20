// Package services defines the [Service] interface for the streaming API session and implements it for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] wraps a [spotify.Client] built from an authorized [http.Client].
// The HTTP client comes from the OAuth session (see package auth) and refreshes the access token on its own.
//
// Both list operations drain cursor pagination with [spotify.Client.NextPage] until [spotify.ErrNoMorePages],
// returning complete sequences in server order. Playlist entries whose track is null (unavailable, deleted, or
// an episode) or has no ID (local files) are skipped while converting to [models.TrackItem].
//
// # Error Handling
//
// Service methods return transport and API errors unchanged, wrapped with context. There is no retry.
// [ClassifyError] maps them onto the shared sentinels at the CLI boundary:
//   - [shared.ErrTokenExpired] : OAuth token expired, restart to reauthorize
//   - [shared.ErrPlaylistNotFound] : Playlist ID not found
//   - [shared.ErrPermissionDenied] : The user cannot modify the playlist
//   - [shared.ErrAPIRequest] : Any other failed request
package services
