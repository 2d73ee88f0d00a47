package models

import "testing"

func track(id string) Track {
	return Track{ID: id, Name: "Track " + id, Artists: []Artist{{Name: "A"}}, DurationMS: 1000}
}

func TestTrack(t *testing.T) {
	t.Run("Same", func(t *testing.T) {
		a := Track{ID: "t1", Name: "One"}
		b := Track{ID: "t1", Name: "Renamed"}
		if !a.Same(b) {
			t.Error("tracks with equal ids should be the same")
		}
		if a.Same(Track{ID: "t2", Name: "One"}) {
			t.Error("tracks with different ids should differ")
		}
	})

	t.Run("ArtistNames", func(t *testing.T) {
		tr := Track{Artists: []Artist{{Name: "Nujabes"}, {Name: "Shing02"}}}
		if got := tr.ArtistNames(); got != "Nujabes, Shing02" {
			t.Errorf("expected joined artists, got %q", got)
		}
		if got := (Track{}).ArtistNames(); got != "" {
			t.Errorf("expected empty artist line, got %q", got)
		}
	})

	t.Run("ImageURL", func(t *testing.T) {
		tc := []struct {
			name   string
			images []Image
			want   string
		}{
			{name: "prefers second", images: []Image{{URL: "large"}, {URL: "medium"}, {URL: "small"}}, want: "medium"},
			{name: "falls back to first", images: []Image{{URL: "large"}}, want: "large"},
			{name: "placeholder", images: nil, want: PlaceholderImage},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				tr := Track{Album: Album{Images: tt.images}}
				if got := tr.ImageURL(); got != tt.want {
					t.Errorf("expected %s, got %s", tt.want, got)
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		if err := (Track{}).Validate(); err == nil {
			t.Error("expected error for missing id")
		}
		if err := (Track{ID: "t1", DurationMS: -1}).Validate(); err == nil {
			t.Error("expected error for negative duration")
		}
		if err := track("t1").Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestPlaylist(t *testing.T) {
	t.Run("DefaultCover", func(t *testing.T) {
		if got := DefaultCover("Study"); got != "https://via.placeholder.com/100?text=S" {
			t.Errorf("unexpected default cover %s", got)
		}
		if got := DefaultCover("  &mix"); got != "https://via.placeholder.com/100?text=%26" {
			t.Errorf("expected escaped initial, got %s", got)
		}
		if got := DefaultCover("공부"); got != "https://via.placeholder.com/100?text=%EA%B3%B5" {
			t.Errorf("expected escaped multibyte initial, got %s", got)
		}
	})

	t.Run("HasDefaultCover", func(t *testing.T) {
		p := Playlist{Name: "Study", Cover: DefaultCover("Study")}
		if !p.HasDefaultCover() {
			t.Error("expected generated cover to count as default")
		}
		p.Cover = "https://example.com/c.jpg"
		if p.HasDefaultCover() {
			t.Error("expected custom cover not to count as default")
		}
	})

	t.Run("Contains And IndexOf", func(t *testing.T) {
		p := Playlist{Tracks: []Track{track("t1"), track("t2")}}
		if p.IndexOf("t2") != 1 {
			t.Errorf("expected index 1, got %d", p.IndexOf("t2"))
		}
		if p.IndexOf("t3") != -1 {
			t.Error("expected -1 for missing track")
		}
		if !p.Contains(Track{ID: "t1"}) {
			t.Error("expected identity-based containment")
		}
	})

	t.Run("Duration", func(t *testing.T) {
		p := Playlist{Tracks: []Track{track("t1"), track("t2")}}
		if p.Duration() != 2000 {
			t.Errorf("expected 2000ms, got %d", p.Duration())
		}
	})

	t.Run("Clone", func(t *testing.T) {
		p := Playlist{ID: "p1", Name: "Study", Tracks: []Track{track("t1")}}
		c := p.Clone()
		c.Tracks[0] = track("t9")
		if p.Tracks[0].ID != "t1" {
			t.Error("mutating a clone must not affect the original")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name    string
			p       Playlist
			wantErr bool
		}{
			{name: "valid", p: Playlist{ID: "p1", Name: "Study", Tracks: []Track{track("t1")}}},
			{name: "missing id", p: Playlist{Name: "Study"}, wantErr: true},
			{name: "blank name", p: Playlist{ID: "p1", Name: "   "}, wantErr: true},
			{name: "duplicate track is repaired later", p: Playlist{ID: "p1", Name: "Study", Tracks: []Track{track("t1"), track("t1")}}},
			{name: "invalid track is repaired later", p: Playlist{ID: "p1", Name: "Study", Tracks: []Track{{}}}},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.p.Validate()
				if (err != nil) != tt.wantErr {
					t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				}
			})
		}
	})

	t.Run("Repair", func(t *testing.T) {
		p := Playlist{ID: "p1", Name: "Study", Tracks: []Track{track("t1"), {}, track("t2"), track("t1"), {ID: "t3", DurationMS: -5}}}

		got, dropped := p.Repair()
		if len(got.Tracks) != 2 || got.Tracks[0].ID != "t1" || got.Tracks[1].ID != "t2" {
			t.Errorf("expected t1, t2, got %+v", got.Tracks)
		}
		if len(dropped) != 3 {
			t.Errorf("expected 3 dropped tracks, got %v", dropped)
		}
		if len(p.Tracks) != 5 {
			t.Error("expected original playlist untouched")
		}

		empty, dropped := Playlist{ID: "p2", Name: "Empty"}.Repair()
		if empty.Tracks == nil || len(dropped) != 0 {
			t.Errorf("expected empty non-nil tracks, got %#v %v", empty.Tracks, dropped)
		}
	})

	t.Run("Clone keeps empty tracks non-nil", func(t *testing.T) {
		c := Playlist{ID: "p1", Name: "Empty", Tracks: []Track{}}.Clone()
		if c.Tracks == nil {
			t.Error("expected non-nil tracks")
		}
		if (Playlist{ID: "p2", Name: "Nil"}).Clone().Tracks == nil {
			t.Error("expected nil tracks to clone to an empty slice")
		}
	})
}
