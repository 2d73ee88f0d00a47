// Package library owns the user's playlist collection.
//
// A [Store] keeps the collection in memory and rewrites the whole collection through a [Persister]
// after every successful mutation. Persistence is best effort: a failed save is logged and the
// in-memory state stays authoritative for the rest of the session.
package library

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/sahilm/fuzzy"
)

// Persister loads and saves the entire playlist collection as one unit.
type Persister interface {
	Load(ctx context.Context) ([]models.Playlist, error)
	Save(ctx context.Context, playlists []models.Playlist) error
}

// Store is the single owner of the playlist collection.
type Store struct {
	mu        sync.RWMutex
	playlists []models.Playlist
	persister Persister
	logger    *log.Logger
	newID     func() string
	lastErr   error
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the logger used to report persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator replaces [shared.GenerateID] for new playlists.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// Open creates a Store and reads the persisted collection once.
//
// A load failure is logged and the store starts empty; records that fail validation are skipped.
func Open(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{persister: p, newID: shared.GenerateID}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}

	if p == nil {
		return s
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load playlists, starting empty", "error", err)
		return s
	}

	seen := make(map[string]struct{}, len(loaded))
	for _, pl := range loaded {
		if err := pl.Validate(); err != nil {
			s.logger.Warn("skipping stored playlist", "error", err)
			continue
		}
		if _, dup := seen[pl.ID]; dup {
			s.logger.Warn("skipping duplicate stored playlist", "id", pl.ID)
			continue
		}
		seen[pl.ID] = struct{}{}

		var dropped []error
		pl, dropped = pl.Repair()
		for _, err := range dropped {
			s.logger.Warn("dropping stored track", "playlist", pl.ID, "error", err)
		}
		if pl.Cover == "" {
			pl.Cover = models.DefaultCover(pl.Name)
		}
		s.playlists = append(s.playlists, pl)
	}

	return s
}

// Create appends a new empty playlist. A blank cover gets the generated default.
func (s *Store) Create(ctx context.Context, name, cover string) (models.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Playlist{}, shared.ErrInvalidName
	}

	cover = strings.TrimSpace(cover)
	if cover == "" {
		cover = models.DefaultCover(name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := models.Playlist{ID: s.newID(), Name: name, Cover: cover, Tracks: []models.Track{}}
	s.playlists = append(s.playlists, p)
	s.persist(ctx)

	return p.Clone(), nil
}

// Rename changes a playlist's name. It reports false without saving when the new name is blank or unchanged.
//
// A playlist still showing its generated cover gets the cover for the new name.
func (s *Store) Rename(ctx context.Context, id, name string) (bool, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	p := &s.playlists[i]
	if name == "" || name == p.Name {
		return false, nil
	}

	if p.HasDefaultCover() {
		p.Cover = models.DefaultCover(name)
	}
	p.Name = name
	s.persist(ctx)

	return true, nil
}

// SetCover replaces a playlist's cover. The URL must begin with a scheme.
func (s *Store) SetCover(ctx context.Context, id, url string) error {
	url = strings.TrimSpace(url)
	if !shared.HasURLScheme(url) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidCover, url)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	s.playlists[i].Cover = url
	s.persist(ctx)
	return nil
}

// Delete removes a playlist.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	s.playlists = slices.Delete(s.playlists, i, i+1)
	s.persist(ctx)
	return nil
}

// AddTrack appends t unless a track with the same id is present, in which case it returns [shared.ErrTrackExists]
// and leaves the playlist untouched.
//
// The first track added to a playlist that still has its generated cover lends its artwork as the cover.
func (s *Store) AddTrack(ctx context.Context, id string, t models.Track) (models.Playlist, error) {
	if err := t.Validate(); err != nil {
		return models.Playlist{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	p := &s.playlists[i]
	if p.Contains(t) {
		return p.Clone(), fmt.Errorf("%w: %q in %q", shared.ErrTrackExists, t.Name, p.Name)
	}

	if len(p.Tracks) == 0 && p.HasDefaultCover() {
		if img := t.ImageURL(); img != models.PlaceholderImage {
			p.Cover = img
		}
	}
	p.Tracks = append(p.Tracks, t)
	s.persist(ctx)

	return p.Clone(), nil
}

// RemoveTrack removes the track with trackID. It reports false without saving when the track is absent.
func (s *Store) RemoveTrack(ctx context.Context, id, trackID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return false, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	p := &s.playlists[i]
	j := p.IndexOf(trackID)
	if j < 0 {
		return false, nil
	}

	p.Tracks = slices.Delete(p.Tracks, j, j+1)
	s.persist(ctx)
	return true, nil
}

// Get returns a copy of the playlist with id.
func (s *Store) Get(id string) (models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.index(id)
	if i < 0 {
		return models.Playlist{}, false
	}
	return s.playlists[i].Clone(), true
}

// List returns copies of all playlists in creation order.
func (s *Store) List() []models.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Playlist, len(s.playlists))
	for i, p := range s.playlists {
		out[i] = p.Clone()
	}
	return out
}

// Len returns the number of playlists.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.playlists)
}

// LastSaveError returns the error from the most recent save, or nil if it succeeded.
func (s *Store) LastSaveError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Resolve finds a playlist from a user-supplied reference: an exact id, then a case-insensitive name,
// then the best fuzzy name match when it is unambiguous.
func (s *Store) Resolve(ref string) (models.Playlist, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist reference", shared.ErrMissingArgument)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(ref); i >= 0 {
		return s.playlists[i].Clone(), nil
	}

	for _, p := range s.playlists {
		if strings.EqualFold(p.Name, ref) {
			return p.Clone(), nil
		}
	}

	names := make([]string, len(s.playlists))
	for i, p := range s.playlists {
		names[i] = p.Name
	}

	matches := fuzzy.Find(ref, names)
	switch {
	case len(matches) == 1:
		return s.playlists[matches[0].Index].Clone(), nil
	case len(matches) > 1 && matches[0].Score > matches[1].Score:
		return s.playlists[matches[0].Index].Clone(), nil
	case len(matches) > 1:
		return models.Playlist{}, fmt.Errorf("%w: %q matches %q and %q", shared.ErrInvalidArgument, ref, matches[0].Str, matches[1].Str)
	default:
		return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, ref)
	}
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.playlists, func(p models.Playlist) bool { return p.ID == id })
}

// persist saves a snapshot of the collection. Callers hold the write lock.
func (s *Store) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}

	snapshot := make([]models.Playlist, len(s.playlists))
	for i, p := range s.playlists {
		snapshot[i] = p.Clone()
	}

	s.lastErr = s.persister.Save(ctx, snapshot)
	if s.lastErr != nil {
		s.logger.Warn("failed to persist playlists", "error", s.lastErr, "count", len(snapshot))
	}
}
