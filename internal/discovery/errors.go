package discovery

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned when a search request fails validation.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrQuotaExceeded is returned when the upstream reports the daily quota is used up.
	ErrQuotaExceeded = errors.New("youtube API quota exceeded")

	// ErrInvalidAPIKey is returned when the upstream rejects the API key.
	ErrInvalidAPIKey = errors.New("youtube API key not valid")

	// ErrNothingToExport is returned when no non-empty result set is cached.
	ErrNothingToExport = errors.New("no search results to export")
)

// ConfigError reports an invalid or missing setting detected before any upstream call.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return "configuration: " + e.Setting + ": " + e.Reason
}

// DiscoveryError wraps a failed search call. Stage names the call that failed
// (e.g. "segment 2/3", "page 1", "relaxed search").
type DiscoveryError struct {
	Stage string
	Err   error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discovery failed at %s: %v", e.Stage, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }
