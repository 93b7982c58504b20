package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrServerStartup = fmt.Errorf("callback server failed to start")
	ErrTokenExpired  = fmt.Errorf("access token expired")
	ErrTimeout       = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrPermissionDenied   = fmt.Errorf("permission denied")
	ErrJournalUnavailable = fmt.Errorf("rewrite journal unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrOutOfRange      = fmt.Errorf("choice out of range")
	ErrInputClosed     = fmt.Errorf("input closed")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
