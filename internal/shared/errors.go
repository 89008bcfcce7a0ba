package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrMissingState        = fmt.Errorf("missing state parameter")
	ErrInvalidState        = fmt.Errorf("invalid state parameter")
	ErrTokenExchangeFailed = fmt.Errorf("token exchange failed")
	ErrNotAuthenticated    = fmt.Errorf("not authenticated")
	ErrTokenExpired        = fmt.Errorf("access token expired")
	ErrRefreshFailed       = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken      = fmt.Errorf("no refresh token available")
	ErrTimeout             = fmt.Errorf("operation timed out")

	// Provider and generator errors
	ErrUnauthorized        = fmt.Errorf("unauthorized")
	ErrNoData              = fmt.Errorf("no metric data available")
	ErrTransport           = fmt.Errorf("provider request failed")
	ErrArtGenerationFailed = fmt.Errorf("art generation failed")

	// Storage errors
	ErrArtworkNotFound = fmt.Errorf("artwork not found")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
