package repositories

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(context.Background(), shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestLocalStorageRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Get missing key", func(t *testing.T) {
		repo := NewLocalStorageRepository(setupTestDB(t))

		value, ok, err := repo.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok || value != "" {
			t.Errorf("expected no value, got %q (ok=%v)", value, ok)
		}
	})

	t.Run("Set then Get", func(t *testing.T) {
		repo := NewLocalStorageRepository(setupTestDB(t))

		if err := repo.Set(ctx, "k", `{"a":1}`); err != nil {
			t.Fatalf("failed to set: %v", err)
		}
		value, ok, err := repo.Get(ctx, "k")
		if err != nil || !ok || value != `{"a":1}` {
			t.Errorf("unexpected read: %q ok=%v err=%v", value, ok, err)
		}
	})

	t.Run("Set overwrites", func(t *testing.T) {
		repo := NewLocalStorageRepository(setupTestDB(t))

		repo.Set(ctx, "k", "first")
		repo.Set(ctx, "k", "second")

		value, _, _ := repo.Get(ctx, "k")
		if value != "second" {
			t.Errorf("expected second, got %q", value)
		}
		keys, err := repo.Keys(ctx)
		if err != nil {
			t.Fatalf("failed to list keys: %v", err)
		}
		if !slices.Equal(keys, []string{"k"}) {
			t.Errorf("expected one key, got %v", keys)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		repo := NewLocalStorageRepository(setupTestDB(t))

		repo.Set(ctx, "a", "1")
		repo.Set(ctx, "b", "2")
		if err := repo.Remove(ctx, "a"); err != nil {
			t.Fatalf("failed to remove: %v", err)
		}
		if err := repo.Remove(ctx, "a"); err != nil {
			t.Errorf("removing a missing key should not fail: %v", err)
		}

		keys, _ := repo.Keys(ctx)
		if !slices.Equal(keys, []string{"b"}) {
			t.Errorf("expected [b], got %v", keys)
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewLocalStorageRepository(db)
		db.Close()

		if err := repo.Set(ctx, "k", "v"); !errors.Is(err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
		if _, _, err := repo.Get(ctx, "k"); !errors.Is(err, shared.ErrPersistence) {
			t.Errorf("expected ErrPersistence, got %v", err)
		}
	})
}

func TestPlaylistPersister(t *testing.T) {
	ctx := context.Background()

	t.Run("empty storage loads an empty collection", func(t *testing.T) {
		p := NewPlaylistPersister(setupTestDB(t), nil)

		got, err := p.Load(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil collection, got %#v", got)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		p := NewPlaylistPersister(setupTestDB(t), nil)
		want := []models.Playlist{
			{ID: "a", Name: "Study", Cover: models.DefaultCover("Study"), Tracks: []models.Track{
				{ID: "t1", Name: "One", Artists: []models.Artist{{Name: "X"}}, DurationMS: 1000,
					Album: models.Album{Name: "Alb", Images: []models.Image{{URL: "https://img/1"}}}},
				{ID: "t2", Name: "Two", DurationMS: 2000},
			}},
			{ID: "b", Name: "Empty", Cover: "https://img/b", Tracks: []models.Track{}},
		}

		if err := p.Save(ctx, want); err != nil {
			t.Fatalf("failed to save: %v", err)
		}
		got, err := p.Load(ctx)
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}

		if len(got) != len(want) {
			t.Fatalf("expected %d playlists, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].ID != want[i].ID || got[i].Name != want[i].Name || got[i].Cover != want[i].Cover {
				t.Errorf("playlist %d: expected %+v, got %+v", i, want[i], got[i])
			}
			if len(got[i].Tracks) != len(want[i].Tracks) {
				t.Fatalf("playlist %d: expected %d tracks, got %d", i, len(want[i].Tracks), len(got[i].Tracks))
			}
			for j := range want[i].Tracks {
				if got[i].Tracks[j].ID != want[i].Tracks[j].ID {
					t.Errorf("playlist %d track %d: expected %s, got %s", i, j, want[i].Tracks[j].ID, got[i].Tracks[j].ID)
				}
			}
		}
		if got[0].Tracks[0].ImageURL() != "https://img/1" || got[0].Tracks[0].ArtistNames() != "X" {
			t.Errorf("track details lost: %+v", got[0].Tracks[0])
		}
	})

	t.Run("stores under the well known key", func(t *testing.T) {
		db := setupTestDB(t)
		p := NewPlaylistPersister(db, nil)
		p.Save(ctx, []models.Playlist{{ID: "a", Name: "A"}})

		raw, ok, err := NewLocalStorageRepository(db).Get(ctx, PlaylistsKey)
		if err != nil || !ok {
			t.Fatalf("expected %s to be set, ok=%v err=%v", PlaylistsKey, ok, err)
		}
		if raw[0] != '[' {
			t.Errorf("expected a JSON array, got %q", raw)
		}
	})

	t.Run("corrupt value is treated as empty", func(t *testing.T) {
		for _, raw := range []string{"not json", `{"id":"a"}`, `[1,2,3]`} {
			db := setupTestDB(t)
			NewLocalStorageRepository(db).Set(ctx, PlaylistsKey, raw)

			got, err := NewPlaylistPersister(db, nil).Load(ctx)
			if err != nil {
				t.Errorf("%q: expected no error, got %v", raw, err)
			}
			if len(got) != 0 {
				t.Errorf("%q: expected empty collection, got %+v", raw, got)
			}
		}
	})

	t.Run("missing tracks become empty", func(t *testing.T) {
		db := setupTestDB(t)
		NewLocalStorageRepository(db).Set(ctx, PlaylistsKey, `[{"id":"a","name":"A"}]`)

		got, _ := NewPlaylistPersister(db, nil).Load(ctx)
		if len(got) != 1 || got[0].Tracks == nil {
			t.Errorf("expected non-nil tracks, got %#v", got)
		}
	})

	t.Run("empty playlists store a tracks array", func(t *testing.T) {
		db := setupTestDB(t)
		store := library.Open(ctx, NewPlaylistPersister(db, nil))
		if _, err := store.Create(ctx, "Empty", ""); err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		NewPlaylistPersister(db, nil).Save(ctx, append(store.List(), models.Playlist{ID: "b", Name: "Nil"}))

		raw, _, err := NewLocalStorageRepository(db).Get(ctx, PlaylistsKey)
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if strings.Contains(raw, `"tracks":null`) || strings.Count(raw, `"tracks":[]`) != 2 {
			t.Errorf("expected empty track arrays, got %s", raw)
		}
	})

	t.Run("backs the library store", func(t *testing.T) {
		db := setupTestDB(t)
		store := library.Open(ctx, NewPlaylistPersister(db, nil))
		pl, err := store.Create(ctx, "Study", "")
		if err != nil {
			t.Fatalf("failed to create: %v", err)
		}
		store.AddTrack(ctx, pl.ID, models.Track{ID: "t1", Name: "One"})

		reopened := library.Open(ctx, NewPlaylistPersister(db, nil))
		got, ok := reopened.Get(pl.ID)
		if !ok {
			t.Fatal("expected playlist after reopening")
		}
		if got.Name != "Study" || len(got.Tracks) != 1 || got.Tracks[0].ID != "t1" {
			t.Errorf("unexpected playlist after reopening: %+v", got)
		}
	})
}

func TestSearchHistoryRepository(t *testing.T) {
	ctx := context.Background()

	newRepo := func(t *testing.T) *SearchHistoryRepository {
		repo := NewSearchHistoryRepository(setupTestDB(t))
		base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
		n := 0
		repo.now = func() time.Time {
			n++
			return base.Add(time.Duration(n) * time.Minute)
		}
		return repo
	}

	t.Run("Record and Recent", func(t *testing.T) {
		repo := newRepo(t)
		for i, q := range []string{"lofi", "jazz", "  ambient  "} {
			if err := repo.Record(ctx, q, i*10); err != nil {
				t.Fatalf("failed to record %q: %v", q, err)
			}
		}

		entries, err := repo.Recent(ctx, 2)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Query != "ambient" || entries[0].ResultCount != 20 {
			t.Errorf("expected newest ambient/20, got %+v", entries[0])
		}
		if entries[1].Query != "jazz" {
			t.Errorf("expected jazz second, got %+v", entries[1])
		}
		if entries[0].SearchedAt.IsZero() {
			t.Error("expected searched_at to be set")
		}
	})

	t.Run("blank queries are ignored", func(t *testing.T) {
		repo := newRepo(t)
		repo.Record(ctx, "   ", 0)

		entries, _ := repo.Recent(ctx, 0)
		if len(entries) != 0 {
			t.Errorf("expected no entries, got %+v", entries)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := newRepo(t)
		repo.Record(ctx, "a", 1)
		repo.Record(ctx, "b", 1)

		n, err := repo.Clear(ctx)
		if err != nil || n != 2 {
			t.Errorf("expected 2 removed, got %d (err=%v)", n, err)
		}
		entries, _ := repo.Recent(ctx, 0)
		if len(entries) != 0 {
			t.Errorf("expected empty history, got %d", len(entries))
		}
	})
}
