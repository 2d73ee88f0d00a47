package app

import (
	"context"
	"errors"

	"github.com/desertthunder/crate/internal/services"
)

// Searcher runs the token fetch and the catalog search, in that order. A fresh token is fetched for
// every search.
type Searcher struct {
	tokens  services.TokenProvider
	catalog services.Catalog
}

// NewSearcher creates a Searcher.
func NewSearcher(tokens services.TokenProvider, catalog services.Catalog) *Searcher {
	return &Searcher{tokens: tokens, catalog: catalog}
}

// Run performs search seq for query. It touches no session state and is safe to call from a goroutine.
func (s *Searcher) Run(ctx context.Context, seq uint64, query string) SearchResolved {
	res := SearchResolved{Seq: seq, Query: query}

	token, err := s.tokens.FetchAccessToken(ctx)
	if err != nil {
		var authErr *services.AuthError
		if !errors.As(err, &authErr) {
			err = &services.AuthError{Message: err.Error(), Err: err}
		}
		res.Err = err
		return res
	}

	res.Tracks, res.Err = s.catalog.Search(ctx, query, token)
	return res
}
