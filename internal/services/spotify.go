// Spotify catalog search backed by github.com/zmb3/spotify/v2
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/crate/internal/models"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
)

const (
	// SpotifyBaseURL is the Web API root. The trailing slash is required by the client.
	SpotifyBaseURL = "https://api.spotify.com/v1/"
	// DefaultSearchLimit is the page size cap for a single search.
	DefaultSearchLimit = 50
)

// SpotifyCatalog implements [Catalog] against the Spotify Web API.
type SpotifyCatalog struct {
	baseURL    string
	limit      int
	httpClient *http.Client
}

// NewSpotifyCatalog creates a catalog client. Empty or non-positive values fall back to
// [SpotifyBaseURL] and [DefaultSearchLimit]; limits above 50 are capped.
func NewSpotifyCatalog(baseURL string, limit int, client *http.Client) *SpotifyCatalog {
	if baseURL == "" {
		baseURL = SpotifyBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &SpotifyCatalog{baseURL: baseURL, limit: limit, httpClient: client}
}

// Limit returns the page size sent with each search.
func (c *SpotifyCatalog) Limit() int { return c.limit }

// Search issues one track search. The query is trimmed; a blank query returns no tracks without a request.
func (c *SpotifyCatalog) Search(ctx context.Context, query, token string) ([]models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	client := c.client(ctx, token)
	results, err := client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(c.limit))
	if err != nil {
		return nil, searchError(query, err)
	}

	if results == nil || results.Tracks == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(results.Tracks.Tracks))
	for i := range results.Tracks.Tracks {
		tracks = append(tracks, convertTrack(&results.Tracks.Tracks[i]))
	}

	return tracks, nil
}

func (c *SpotifyCatalog) client(ctx context.Context, token string) *spotify.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return spotify.New(oauth2.NewClient(ctx, src), spotify.WithBaseURL(c.baseURL))
}

func searchError(query string, err error) *SearchError {
	se := &SearchError{Query: query, Message: err.Error(), Err: err}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		se.StatusCode = apiErr.Status
		if apiErr.Message != "" {
			se.Message = apiErr.Message
		}
	}
	return se
}

// convertTrack maps a catalog track onto the local model.
func convertTrack(t *spotify.FullTrack) models.Track {
	track := models.Track{
		ID:          string(t.ID),
		Name:        t.Name,
		Artists:     make([]models.Artist, 0, len(t.Artists)),
		DurationMS:  int(t.Duration),
		ExternalURL: t.ExternalURLs["spotify"],
		Album: models.Album{
			Name:   t.Album.Name,
			Images: make([]models.Image, 0, len(t.Album.Images)),
		},
	}

	for _, a := range t.Artists {
		track.Artists = append(track.Artists, models.Artist{Name: a.Name})
	}
	for _, img := range t.Album.Images {
		track.Album.Images = append(track.Album.Images, models.Image{URL: img.URL})
	}

	return track
}
