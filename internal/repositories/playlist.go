package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// PlaylistsKey is the local storage key holding the serialized playlist collection.
const PlaylistsKey = "crate.playlists"

// PlaylistPersister stores the playlist collection as one JSON array under [PlaylistsKey].
type PlaylistPersister struct {
	storage *LocalStorageRepository
	logger  *log.Logger
}

// NewPlaylistPersister creates a new PlaylistPersister with the given database connection
func NewPlaylistPersister(db *sql.DB, logger *log.Logger) *PlaylistPersister {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistPersister{storage: NewLocalStorageRepository(db), logger: logger}
}

// Load reads the collection. A missing key yields an empty collection.
//
// A stored value that is not a JSON array of playlists is logged and treated as empty so a corrupt
// document never blocks startup. Record-level validation is left to the caller.
func (p *PlaylistPersister) Load(ctx context.Context) ([]models.Playlist, error) {
	raw, ok, err := p.storage.Get(ctx, PlaylistsKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []models.Playlist{}, nil
	}

	var playlists []models.Playlist
	if err := json.Unmarshal([]byte(raw), &playlists); err != nil {
		p.logger.Warn("stored playlists are unreadable, treating as empty", "key", PlaylistsKey, "error", err)
		return []models.Playlist{}, nil
	}

	for i := range playlists {
		if playlists[i].Tracks == nil {
			playlists[i].Tracks = []models.Track{}
		}
	}

	return playlists, nil
}

// Save replaces the stored collection with playlists. A nil track list is stored as an empty array.
func (p *PlaylistPersister) Save(ctx context.Context, playlists []models.Playlist) error {
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	out := make([]models.Playlist, len(playlists))
	for i, pl := range playlists {
		if pl.Tracks == nil {
			pl.Tracks = []models.Track{}
		}
		out[i] = pl
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("%w: failed to encode playlists: %v", shared.ErrPersistence, err)
	}

	return p.storage.Set(ctx, PlaylistsKey, string(data))
}
