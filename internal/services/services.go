package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// TokenProvider exchanges service credentials for a short-lived bearer token.
type TokenProvider interface {
	// FetchAccessToken returns a fresh access token. Failures are reported as [*AuthError].
	FetchAccessToken(ctx context.Context) (string, error)
}

// Catalog searches the external music catalog.
type Catalog interface {
	// Search returns the tracks matching query. An empty result is not an error.
	Search(ctx context.Context, query, token string) ([]models.Track, error)
}

// AuthError reports a failed token exchange.
type AuthError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("authentication failed (%d): %s", e.StatusCode, e.Message)
	}
	return "authentication failed: " + e.Message
}

func (e *AuthError) Unwrap() []error {
	if e.Err != nil {
		return []error{shared.ErrAuthFailed, e.Err}
	}
	return []error{shared.ErrAuthFailed}
}

// SearchError reports a failed catalog request.
type SearchError struct {
	Query      string
	StatusCode int
	Message    string
	Err        error
}

func (e *SearchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("search for %q failed (%d): %s", e.Query, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("search for %q failed: %s", e.Query, e.Message)
}

func (e *SearchError) Unwrap() []error {
	if e.Err != nil {
		return []error{shared.ErrAPIRequest, e.Err}
	}
	return []error{shared.ErrAPIRequest}
}
