// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/crate/internal/models"
)

// MemoryPersister is an in-memory [library.Persister]. Saves are recorded so tests can count them.
type MemoryPersister struct {
	mu        sync.Mutex
	Playlists []models.Playlist
	Saves     int
	LoadErr   error
	SaveErr   error
}

func NewMemoryPersister(playlists ...models.Playlist) *MemoryPersister {
	return &MemoryPersister{Playlists: playlists}
}

func (m *MemoryPersister) Load(ctx context.Context) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return append([]models.Playlist(nil), m.Playlists...), nil
}

func (m *MemoryPersister) Save(ctx context.Context, playlists []models.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Playlists = append([]models.Playlist(nil), playlists...)
	return nil
}

func (m *MemoryPersister) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Saves
}

// StubTokenProvider is a test double for [services.TokenProvider]
type StubTokenProvider struct {
	AccessToken string
	Err         error
	Calls       int
}

func (s *StubTokenProvider) FetchAccessToken(ctx context.Context) (string, error) {
	s.Calls++
	return s.AccessToken, s.Err
}

// StubCatalog is a test double for [services.Catalog]. Results are keyed by query.
type StubCatalog struct {
	mu      sync.Mutex
	Results map[string][]models.Track
	Err     error
	Queries []string
	Tokens  []string
}

func (s *StubCatalog) Search(ctx context.Context, query, token string) ([]models.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Queries = append(s.Queries, query)
	s.Tokens = append(s.Tokens, token)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Results[query], nil
}

// Track builds a minimal valid track.
func Track(id, name string, artists ...string) models.Track {
	t := models.Track{ID: id, Name: name, DurationMS: 180000, ExternalURL: "https://open.spotify.com/track/" + id}
	for _, a := range artists {
		t.Artists = append(t.Artists, models.Artist{Name: a})
	}
	return t
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
