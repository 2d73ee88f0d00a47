package models

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// PlaceholderImage is shown for tracks whose album has no artwork.
const PlaceholderImage = "https://via.placeholder.com/100"

// Image is one rendition of album artwork.
type Image struct {
	URL string `json:"url"`
}

// Artist is a credited performer on a track.
type Artist struct {
	Name string `json:"name"`
}

// Album is the release a track belongs to. Images are ordered largest first.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is a catalog item. Two tracks with the same ID are the same track regardless of other fields.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	Album       Album    `json:"album"`
	DurationMS  int      `json:"duration_ms"`
	ExternalURL string   `json:"external_url"`
}

// Same reports whether t and o identify the same catalog track.
func (t Track) Same(o Track) bool {
	return t.ID == o.ID
}

// ArtistNames joins the credited artists with ", ".
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// ImageURL picks the artwork shown next to a track: the second (medium) rendition when present,
// else the first, else [PlaceholderImage].
func (t Track) ImageURL() string {
	images := t.Album.Images
	switch {
	case len(images) > 1 && images[1].URL != "":
		return images[1].URL
	case len(images) > 0 && images[0].URL != "":
		return images[0].URL
	default:
		return PlaceholderImage
	}
}

// Validate checks the fields the playlist store relies on.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track id is required")
	}
	if t.DurationMS < 0 {
		return fmt.Errorf("track %s has negative duration", t.ID)
	}
	return nil
}

// Playlist is a named, ordered collection of tracks. Insertion order is display order.
type Playlist struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Cover  string  `json:"cover"`
	Tracks []Track `json:"tracks"`
}

// DefaultCover returns the generated cover for a playlist named name: a placeholder image labelled with its initial.
func DefaultCover(name string) string {
	initial := ""
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		initial = string(r)
	}
	return PlaceholderImage + "?text=" + url.QueryEscape(initial)
}

// HasDefaultCover reports whether the playlist still shows its generated cover.
func (p Playlist) HasDefaultCover() bool {
	return p.Cover == "" || p.Cover == DefaultCover(p.Name)
}

// IndexOf returns the position of the track with id, or -1.
func (p Playlist) IndexOf(id string) int {
	for i, t := range p.Tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Contains reports whether a track with the same identity is already in the playlist.
func (p Playlist) Contains(t Track) bool {
	return p.IndexOf(t.ID) >= 0
}

// Duration sums the durations of all tracks in milliseconds.
func (p Playlist) Duration() int {
	total := 0
	for _, t := range p.Tracks {
		total += t.DurationMS
	}
	return total
}

// Clone returns a deep copy so callers cannot mutate store-owned slices. An empty track list stays non-nil.
func (p Playlist) Clone() Playlist {
	c := p
	c.Tracks = make([]Track, len(p.Tracks))
	copy(c.Tracks, p.Tracks)
	return c
}

// Validate checks the fields that identify a stored playlist. Track problems are fixed by [Playlist.Repair].
func (p Playlist) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("playlist id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("playlist %s has an empty name", p.ID)
	}
	return nil
}

// Repair drops invalid tracks and later copies of a repeated track id, keeping order.
// It returns the repaired playlist and one error per dropped track.
func (p Playlist) Repair() (Playlist, []error) {
	c := p
	c.Tracks = make([]Track, 0, len(p.Tracks))

	var dropped []error
	seen := make(map[string]struct{}, len(p.Tracks))
	for _, t := range p.Tracks {
		if err := t.Validate(); err != nil {
			dropped = append(dropped, fmt.Errorf("playlist %s: %w", p.ID, err))
			continue
		}
		if _, dup := seen[t.ID]; dup {
			dropped = append(dropped, fmt.Errorf("playlist %s contains track %s twice", p.ID, t.ID))
			continue
		}
		seen[t.ID] = struct{}{}
		c.Tracks = append(c.Tracks, t)
	}
	return c, dropped
}
