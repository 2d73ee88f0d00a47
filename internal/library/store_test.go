package library

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
	tu "github.com/desertthunder/crate/internal/testing"
)

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("pl-%d", n)
	})
}

func newStore(t *testing.T, seed ...models.Playlist) (*Store, *tu.MemoryPersister) {
	t.Helper()
	p := tu.NewMemoryPersister(seed...)
	return Open(context.Background(), p, sequentialIDs()), p
}

func trackIDs(p models.Playlist) []string {
	ids := make([]string, len(p.Tracks))
	for i, tr := range p.Tracks {
		ids[i] = tr.ID
	}
	return ids
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		t.Run("adds one empty playlist with a default cover", func(t *testing.T) {
			s, p := newStore(t)

			pl, err := s.Create(ctx, "Study", "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Len() != 1 {
				t.Fatalf("expected 1 playlist, got %d", s.Len())
			}
			if pl.Name != "Study" || len(pl.Tracks) != 0 {
				t.Errorf("unexpected playlist: %+v", pl)
			}
			if pl.Cover != models.DefaultCover("Study") {
				t.Errorf("expected default cover, got %q", pl.Cover)
			}
			if p.SaveCount() != 1 || len(p.Playlists) != 1 {
				t.Errorf("expected collection persisted once, saves=%d stored=%d", p.SaveCount(), len(p.Playlists))
			}
		})

		t.Run("trims the name and keeps an explicit cover", func(t *testing.T) {
			s, _ := newStore(t)
			pl, err := s.Create(ctx, "  Gym  ", "https://img.example/gym.png")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pl.Name != "Gym" || pl.Cover != "https://img.example/gym.png" {
				t.Errorf("unexpected playlist: %+v", pl)
			}
		})

		for _, name := range []string{"", "   ", "\t\n"} {
			t.Run(fmt.Sprintf("rejects blank name %q", name), func(t *testing.T) {
				s, p := newStore(t)
				_, err := s.Create(ctx, name, "")
				if !errors.Is(err, shared.ErrInvalidName) {
					t.Errorf("expected ErrInvalidName, got %v", err)
				}
				if s.Len() != 0 || p.SaveCount() != 0 {
					t.Errorf("expected no playlist and no save, len=%d saves=%d", s.Len(), p.SaveCount())
				}
			})
		}

		t.Run("assigns distinct ids", func(t *testing.T) {
			s := Open(ctx, nil)
			a, _ := s.Create(ctx, "A", "")
			b, _ := s.Create(ctx, "B", "")
			if a.ID == "" || a.ID == b.ID {
				t.Errorf("expected distinct ids, got %q and %q", a.ID, b.ID)
			}
		})
	})

	t.Run("Rename", func(t *testing.T) {
		t.Run("updates the name and the default cover", func(t *testing.T) {
			s, _ := newStore(t)
			pl, _ := s.Create(ctx, "Study", "")

			changed, err := s.Rename(ctx, pl.ID, "Focus")
			if err != nil || !changed {
				t.Fatalf("expected rename, changed=%v err=%v", changed, err)
			}
			got, _ := s.Get(pl.ID)
			if got.Name != "Focus" || got.Cover != models.DefaultCover("Focus") {
				t.Errorf("unexpected playlist after rename: %+v", got)
			}
		})

		t.Run("keeps a custom cover", func(t *testing.T) {
			s, _ := newStore(t)
			pl, _ := s.Create(ctx, "Study", "https://img.example/s.png")
			s.Rename(ctx, pl.ID, "Focus")
			got, _ := s.Get(pl.ID)
			if got.Cover != "https://img.example/s.png" {
				t.Errorf("expected custom cover kept, got %q", got.Cover)
			}
		})

		t.Run("is a no-op for blank or unchanged names", func(t *testing.T) {
			s, p := newStore(t)
			pl, _ := s.Create(ctx, "Study", "")
			saves := p.SaveCount()

			for _, name := range []string{"", "  ", "Study", " Study "} {
				changed, err := s.Rename(ctx, pl.ID, name)
				if err != nil || changed {
					t.Errorf("Rename(%q): expected no-op, changed=%v err=%v", name, changed, err)
				}
			}
			if p.SaveCount() != saves {
				t.Errorf("expected no saves, got %d", p.SaveCount()-saves)
			}
		})

		t.Run("unknown playlist", func(t *testing.T) {
			s, _ := newStore(t)
			if _, err := s.Rename(ctx, "missing", "x"); !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})
	})

	t.Run("SetCover", func(t *testing.T) {
		tests := []struct {
			name  string
			url   string
			valid bool
		}{
			{"https", "https://img.example/c.png", true},
			{"data uri", "data:image/png;base64,AAAA", true},
			{"custom scheme", "spotify:image:abc", true},
			{"no scheme", "img.example/c.png", false},
			{"empty", "", false},
			{"leading digit", "1http://x", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s, _ := newStore(t)
				pl, _ := s.Create(ctx, "Study", "")

				err := s.SetCover(ctx, pl.ID, tt.url)
				got, _ := s.Get(pl.ID)
				if tt.valid {
					if err != nil || got.Cover != tt.url {
						t.Errorf("expected cover %q, got %q (err=%v)", tt.url, got.Cover, err)
					}
					return
				}
				if !errors.Is(err, shared.ErrInvalidCover) {
					t.Errorf("expected ErrInvalidCover, got %v", err)
				}
				if got.Cover != pl.Cover {
					t.Errorf("expected cover unchanged, got %q", got.Cover)
				}
			})
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s, p := newStore(t)
		a, _ := s.Create(ctx, "A", "")
		b, _ := s.Create(ctx, "B", "")

		if err := s.Delete(ctx, a.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := s.Get(a.ID); ok {
			t.Error("expected deleted playlist to be unresolvable")
		}
		if _, err := s.Resolve(a.ID); err == nil {
			t.Error("expected Resolve to fail for a deleted id")
		}
		if got := s.List(); len(got) != 1 || got[0].ID != b.ID {
			t.Errorf("unexpected remaining playlists: %+v", got)
		}
		if len(p.Playlists) != 1 {
			t.Errorf("expected persisted collection of 1, got %d", len(p.Playlists))
		}
		if err := s.Delete(ctx, a.ID); !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound on second delete, got %v", err)
		}
	})

	t.Run("AddTrack", func(t *testing.T) {
		t.Run("is idempotent and reports duplicates", func(t *testing.T) {
			s, p := newStore(t)
			pl, _ := s.Create(ctx, "Study", "")
			t1 := tu.Track("t1", "Lofi One", "A")

			if _, err := s.AddTrack(ctx, pl.ID, t1); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			saves := p.SaveCount()

			got, err := s.AddTrack(ctx, pl.ID, t1)
			if !errors.Is(err, shared.ErrTrackExists) {
				t.Errorf("expected ErrTrackExists, got %v", err)
			}
			if ids := trackIDs(got); !slices.Equal(ids, []string{"t1"}) {
				t.Errorf("expected [t1], got %v", ids)
			}
			if p.SaveCount() != saves {
				t.Error("expected duplicate add not to persist")
			}
		})

		t.Run("identity is the id only", func(t *testing.T) {
			s, _ := newStore(t)
			pl, _ := s.Create(ctx, "Study", "")
			s.AddTrack(ctx, pl.ID, tu.Track("t1", "Original"))
			_, err := s.AddTrack(ctx, pl.ID, tu.Track("t1", "Renamed upstream"))
			if !errors.Is(err, shared.ErrTrackExists) {
				t.Errorf("expected ErrTrackExists, got %v", err)
			}
		})

		t.Run("first track lends its artwork to a default cover", func(t *testing.T) {
			s, _ := newStore(t)
			pl, _ := s.Create(ctx, "Study", "")
			t1 := tu.Track("t1", "One")
			t1.Album.Images = []models.Image{{URL: "https://img.example/640"}, {URL: "https://img.example/300"}}
			t2 := tu.Track("t2", "Two")
			t2.Album.Images = []models.Image{{URL: "https://img.example/other"}}

			s.AddTrack(ctx, pl.ID, t1)
			got, _ := s.AddTrack(ctx, pl.ID, t2)
			if got.Cover != "https://img.example/300" {
				t.Errorf("expected auto cover from first track, got %q", got.Cover)
			}
		})

		t.Run("custom cover is kept", func(t *testing.T) {
			s, _ := newStore(t)
			pl, _ := s.Create(ctx, "Study", "https://img.example/mine")
			t1 := tu.Track("t1", "One")
			t1.Album.Images = []models.Image{{URL: "https://img.example/640"}}

			got, _ := s.AddTrack(ctx, pl.ID, t1)
			if got.Cover != "https://img.example/mine" {
				t.Errorf("expected custom cover, got %q", got.Cover)
			}
		})

		t.Run("unknown playlist", func(t *testing.T) {
			s, _ := newStore(t)
			if _, err := s.AddTrack(ctx, "missing", tu.Track("t1", "x")); !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})

		t.Run("invalid track", func(t *testing.T) {
			s, _ := newStore(t)
			pl, _ := s.Create(ctx, "Study", "")
			if _, err := s.AddTrack(ctx, pl.ID, models.Track{Name: "no id"}); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("RemoveTrack", func(t *testing.T) {
		s, p := newStore(t)
		pl, _ := s.Create(ctx, "Study", "")
		s.AddTrack(ctx, pl.ID, tu.Track("t1", "One"))
		s.AddTrack(ctx, pl.ID, tu.Track("t2", "Two"))

		removed, err := s.RemoveTrack(ctx, pl.ID, "t1")
		if err != nil || !removed {
			t.Fatalf("expected removal, removed=%v err=%v", removed, err)
		}
		got, _ := s.Get(pl.ID)
		if ids := trackIDs(got); !slices.Equal(ids, []string{"t2"}) {
			t.Errorf("expected [t2], got %v", ids)
		}

		saves := p.SaveCount()
		removed, err = s.RemoveTrack(ctx, pl.ID, "t1")
		if err != nil || removed {
			t.Errorf("expected no-op for absent track, removed=%v err=%v", removed, err)
		}
		if p.SaveCount() != saves {
			t.Error("expected no save for absent track")
		}
	})

	t.Run("returned playlists are copies", func(t *testing.T) {
		s, _ := newStore(t)
		pl, _ := s.Create(ctx, "Study", "")
		s.AddTrack(ctx, pl.ID, tu.Track("t1", "One"))

		got, _ := s.Get(pl.ID)
		got.Tracks[0].Name = "mutated"
		got.Name = "mutated"

		again, _ := s.Get(pl.ID)
		if again.Name != "Study" || again.Tracks[0].Name != "One" {
			t.Errorf("store state leaked through a copy: %+v", again)
		}
	})
}

func TestStorePersistence(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		s, p := newStore(t)
		a, _ := s.Create(ctx, "Study", "")
		b, _ := s.Create(ctx, "Gym", "https://img.example/gym")
		s.AddTrack(ctx, a.ID, tu.Track("t1", "One"))
		s.AddTrack(ctx, a.ID, tu.Track("t2", "Two"))
		s.AddTrack(ctx, b.ID, tu.Track("t3", "Three"))

		reloaded := Open(ctx, tu.NewMemoryPersister(p.Playlists...))
		before, after := s.List(), reloaded.List()
		if len(before) != len(after) {
			t.Fatalf("expected %d playlists, got %d", len(before), len(after))
		}
		for i := range before {
			if before[i].ID != after[i].ID || before[i].Name != after[i].Name || before[i].Cover != after[i].Cover {
				t.Errorf("playlist %d differs: %+v vs %+v", i, before[i], after[i])
			}
			if !slices.Equal(trackIDs(before[i]), trackIDs(after[i])) {
				t.Errorf("playlist %d tracks differ: %v vs %v", i, trackIDs(before[i]), trackIDs(after[i]))
			}
		}
	})

	t.Run("every mutation is persisted before returning", func(t *testing.T) {
		s, p := newStore(t)
		pl, _ := s.Create(ctx, "Study", "")
		s.AddTrack(ctx, pl.ID, tu.Track("t1", "One"))
		if got := trackIDs(p.Playlists[0]); !slices.Equal(got, []string{"t1"}) {
			t.Errorf("expected persisted [t1], got %v", got)
		}
		s.Rename(ctx, pl.ID, "Focus")
		if p.Playlists[0].Name != "Focus" {
			t.Errorf("expected persisted rename, got %q", p.Playlists[0].Name)
		}
		if p.SaveCount() != 3 {
			t.Errorf("expected 3 saves, got %d", p.SaveCount())
		}
	})

	t.Run("save failure keeps memory state", func(t *testing.T) {
		s, p := newStore(t)
		p.SaveErr = errors.New("disk full")

		pl, err := s.Create(ctx, "Study", "")
		if err != nil {
			t.Fatalf("expected create to succeed despite save failure, got %v", err)
		}
		if _, ok := s.Get(pl.ID); !ok {
			t.Error("expected playlist in memory")
		}
		if s.LastSaveError() == nil {
			t.Error("expected LastSaveError to report the failure")
		}
	})

	t.Run("load failure starts empty", func(t *testing.T) {
		p := tu.NewMemoryPersister()
		p.LoadErr = errors.New("corrupt")
		s := Open(ctx, p)
		if s.Len() != 0 {
			t.Errorf("expected empty store, got %d", s.Len())
		}
	})

	t.Run("invalid and duplicate records are skipped", func(t *testing.T) {
		s, _ := newStore(t,
			models.Playlist{ID: "a", Name: "Good"},
			models.Playlist{ID: "", Name: "No id"},
			models.Playlist{ID: "b", Name: "  "},
			models.Playlist{ID: "a", Name: "Duplicate"},
		)
		got := s.List()
		if len(got) != 1 || got[0].Name != "Good" {
			t.Fatalf("expected only the valid record, got %+v", got)
		}
		if got[0].Cover != models.DefaultCover("Good") {
			t.Errorf("expected missing cover to default, got %q", got[0].Cover)
		}
	})

	t.Run("bad tracks are dropped, not the playlist", func(t *testing.T) {
		s, p := newStore(t,
			models.Playlist{ID: "a", Name: "Study", Tracks: []models.Track{
				tu.Track("t1", "One"), tu.Track("t2", "Two"), tu.Track("t1", "One again"), {ID: ""},
			}},
			models.Playlist{ID: "b", Name: "Gym"},
		)

		study, ok := s.Get("a")
		if !ok {
			t.Fatal("expected playlist with bad tracks to be kept")
		}
		if len(study.Tracks) != 2 || study.Tracks[0].ID != "t1" || study.Tracks[1].ID != "t2" {
			t.Errorf("expected first occurrences t1, t2, got %+v", study.Tracks)
		}
		if study.Tracks[0].Name != "One" {
			t.Errorf("expected first copy kept, got %q", study.Tracks[0].Name)
		}

		if _, err := s.Rename(ctx, "b", "Gym2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Playlists) != 2 || p.Playlists[0].ID != "a" || len(p.Playlists[0].Tracks) != 2 {
			t.Errorf("expected repaired playlist to survive the next save, got %+v", p.Playlists)
		}
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	study, _ := s.Create(ctx, "Study Beats", "")
	gym, _ := s.Create(ctx, "Gym", "")
	s.Create(ctx, "Road Trip", "")
	s.Create(ctx, "Rainy Day", "")

	tests := []struct {
		name    string
		ref     string
		wantID  string
		wantErr error
	}{
		{"by id", study.ID, study.ID, nil},
		{"exact name ignoring case", "gym", gym.ID, nil},
		{"fuzzy", "stdy", study.ID, nil},
		{"blank", "  ", "", shared.ErrMissingArgument},
		{"no match", "zzz", "", shared.ErrPlaylistNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Resolve(tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("expected %s, got %s (%s)", tt.wantID, got.ID, got.Name)
			}
		})
	}
}
