package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/desertthunder/plsort/internal/shared"
)

// ClassifyError maps an error returned by a [Service] onto one of the shared sentinels.
//
// The result wraps both the sentinel and err, so errors.Is matches either:
//   - [shared.ErrTokenExpired] : status 401, an "access token expired" message, or a failed token refresh
//   - [shared.ErrPlaylistNotFound] : status 404, or a "not found" message about a playlist
//   - [shared.ErrPermissionDenied] : status 403, or a message mentioning permission
//   - [shared.ErrAPIRequest] : anything else
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{shared.ErrTokenExpired, shared.ErrPlaylistNotFound, shared.ErrPermissionDenied, shared.ErrAPIRequest} {
		if errors.Is(err, known) {
			return err
		}
	}

	status, message := apiStatus(err)
	lower := strings.ToLower(message)

	var sentinel error
	switch {
	case status == http.StatusUnauthorized || strings.Contains(lower, "access token expired") || isRefreshFailure(err):
		sentinel = shared.ErrTokenExpired
	case status == http.StatusNotFound || (strings.Contains(lower, "not found") && strings.Contains(lower, "playlist")):
		sentinel = shared.ErrPlaylistNotFound
	case status == http.StatusForbidden || strings.Contains(lower, "permission"):
		sentinel = shared.ErrPermissionDenied
	default:
		sentinel = shared.ErrAPIRequest
	}

	return fmt.Errorf("%w: %w", sentinel, err)
}

// apiStatus extracts the HTTP status and message of a Web API error, if err carries one.
func apiStatus(err error) (int, string) {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status, apiErr.Message + " " + err.Error()
	}
	var apiErrPtr *spotify.Error
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Status, apiErrPtr.Message + " " + err.Error()
	}
	return 0, err.Error()
}

// isRefreshFailure reports whether the token source failed to refresh the access token.
func isRefreshFailure(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	return errors.As(err, &retrieveErr)
}
