package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// HistoryRecorder stores completed searches.
type HistoryRecorder interface {
	Record(ctx context.Context, query string, resultCount int) error
}

// Session is the single writer of [State]. It turns user intents into store mutations and view
// transitions, and reports store outcomes as notifications. It is not safe for concurrent use;
// only [Searcher.Run] may run off the owning goroutine.
type Session struct {
	state    State
	store    *library.Store
	searcher *Searcher
	history  HistoryRecorder
	logger   *log.Logger
	seq      uint64
}

// SessionOption configures a [Session].
type SessionOption func(*Session)

// WithHistory records every accepted search.
func WithHistory(h HistoryRecorder) SessionOption {
	return func(s *Session) { s.history = h }
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(l *log.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession creates a session in the [Initial] state.
func NewSession(store *library.Store, searcher *Searcher, opts ...SessionOption) *Session {
	s := &Session{state: Initial(), store: store, searcher: searcher}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Store returns the playlist store.
func (s *Session) Store() *library.Store { return s.store }

// Searcher returns the searcher used for [Session.StartSearch] requests.
func (s *Session) Searcher() *Searcher { return s.searcher }

func (s *Session) apply(e Event) State {
	s.state = s.state.Apply(e)
	return s.state
}

// Notify replaces the notification and restarts its timer.
func (s *Session) Notify(text string) State { return s.apply(Notified{Text: text}) }

// ExpireNotice clears the notification if gen is still current.
func (s *Session) ExpireNotice(gen uint64) State { return s.apply(NoticeExpired{Gen: gen}) }

// StartSearch issues a new search for query. A blank query is ignored and ok is false; otherwise the
// returned event must be passed to [Searcher.Run] and its result to [Session.ResolveSearch].
func (s *Session) StartSearch(query string) (SearchStarted, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchStarted{}, false
	}

	s.seq++
	started := SearchStarted{Seq: s.seq, Query: query}
	s.apply(started)
	return started, true
}

// ResolveSearch applies a search outcome. It reports false for a stale result, which is discarded.
func (s *Session) ResolveSearch(ctx context.Context, res SearchResolved) bool {
	if !s.state.Search.Pending || res.Seq != s.state.Search.Latest {
		s.logger.Debug("discarding stale search", "seq", res.Seq, "latest", s.state.Search.Latest, "query", res.Query)
		return false
	}

	s.apply(res)
	if res.Err != nil {
		s.logger.Error("search failed", "query", res.Query, "error", res.Err)
		return true
	}

	if s.history != nil {
		if err := s.history.Record(ctx, res.Query, len(res.Tracks)); err != nil {
			s.logger.Warn("failed to record search", "query", res.Query, "error", err)
		}
	}
	return true
}

// Search runs a whole search synchronously.
func (s *Session) Search(ctx context.Context, query string) State {
	started, ok := s.StartSearch(query)
	if !ok {
		return s.state
	}
	s.ResolveSearch(ctx, s.searcher.Run(ctx, started.Seq, started.Query))
	return s.state
}

// SelectPlaylist shows playlist id.
func (s *Session) SelectPlaylist(id string) State { return s.apply(PlaylistSelected{ID: id}) }

// GoHome returns to an empty search view.
func (s *Session) GoHome() State { return s.apply(WentHome{}) }

// CreatePlaylist creates a playlist. A blank name is ignored without a notice.
func (s *Session) CreatePlaylist(ctx context.Context, name, cover string) (models.Playlist, error) {
	p, err := s.store.Create(ctx, name, cover)
	if err != nil {
		return p, err
	}
	s.Notify(fmt.Sprintf("Created playlist %q.", p.Name))
	return p, nil
}

// RenamePlaylist renames playlist id.
func (s *Session) RenamePlaylist(ctx context.Context, id, name string) error {
	changed, err := s.store.Rename(ctx, id, name)
	if err != nil {
		return s.fail(err)
	}
	if changed {
		s.Notify(fmt.Sprintf("Renamed to %q.", strings.TrimSpace(name)))
	}
	return nil
}

// SetCover replaces the cover of playlist id.
func (s *Session) SetCover(ctx context.Context, id, url string) error {
	if err := s.store.SetCover(ctx, id, url); err != nil {
		return s.fail(err)
	}
	s.Notify("Cover updated.")
	return nil
}

// DeletePlaylist removes playlist id. If it was on screen the view returns to the search results.
func (s *Session) DeletePlaylist(ctx context.Context, id string) error {
	p, _ := s.store.Get(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return s.fail(err)
	}
	s.apply(PlaylistDeleted{ID: id})
	s.Notify(fmt.Sprintf("Deleted playlist %q.", p.Name))
	return nil
}

// AddTrack adds t to playlist id. A duplicate is reported as a notice, not an error.
func (s *Session) AddTrack(ctx context.Context, id string, t models.Track) error {
	p, err := s.store.AddTrack(ctx, id, t)
	switch {
	case errors.Is(err, shared.ErrTrackExists):
		s.Notify(NoticeDuplicate)
		return nil
	case err != nil:
		return s.fail(err)
	}
	s.Notify(fmt.Sprintf("Added %q to %q.", t.Name, p.Name))
	return nil
}

// RemoveTrack removes trackID from playlist id.
func (s *Session) RemoveTrack(ctx context.Context, id, trackID string) error {
	removed, err := s.store.RemoveTrack(ctx, id, trackID)
	if err != nil {
		return s.fail(err)
	}
	if removed {
		s.Notify("Removed from playlist.")
	}
	return nil
}

// OpenMenu opens the add-to-playlist menu for t at x, y.
func (s *Session) OpenMenu(x, y int, t models.Track) State {
	return s.apply(MenuOpened{X: x, Y: y, Track: t, Entries: s.store.Len()})
}

// CloseMenu closes the add-to-playlist menu.
func (s *Session) CloseMenu() State { return s.apply(MenuClosed{}) }

// ChooseMenuEntry adds the menu's pending track to the i-th playlist and closes the menu.
func (s *Session) ChooseMenuEntry(ctx context.Context, i int) error {
	menu := s.state.Menu
	if !menu.Open {
		return nil
	}
	s.CloseMenu()

	playlists := s.store.List()
	if i < 0 || i >= len(playlists) {
		return fmt.Errorf("%w: menu entry %d", shared.ErrInvalidArgument, i)
	}
	return s.AddTrack(ctx, playlists[i].ID, menu.Track)
}

// Click handles a pointer click. Inside the open menu it selects the entry under the pointer;
// anywhere else it closes the menu. It reports whether the click was consumed by the menu.
func (s *Session) Click(ctx context.Context, x, y int) (bool, error) {
	menu := s.state.Menu
	if !menu.Open {
		return false, nil
	}
	if i, ok := menu.EntryAt(x, y); ok {
		return true, s.ChooseMenuEntry(ctx, i)
	}
	inside := menu.Contains(x, y)
	s.apply(Clicked{X: x, Y: y})
	return inside, nil
}

// BeginEdit opens an editor. Rename and cover editors start from the playlist's current value.
func (s *Session) BeginEdit(mode EditMode, target string) State {
	input := ""
	if p, ok := s.store.Get(target); ok {
		switch mode {
		case EditRename:
			input = p.Name
		case EditCover:
			if !p.HasDefaultCover() {
				input = p.Cover
			}
		}
	}
	return s.apply(EditBegan{Mode: mode, Target: target, Input: input})
}

// EditInput replaces the editor's input.
func (s *Session) EditInput(text string) State { return s.apply(EditChanged{Input: text}) }

// CancelEdit closes the editor without changes.
func (s *Session) CancelEdit() State { return s.apply(EditCancelled{}) }

// SubmitEdit applies the open editor. An invalid cover keeps the editor open; everything else closes it.
func (s *Session) SubmitEdit(ctx context.Context) error {
	edit := s.state.Edit
	if !edit.Active() {
		return nil
	}

	var err error
	switch edit.Mode {
	case EditCreate:
		var p models.Playlist
		p, err = s.CreatePlaylist(ctx, edit.Input, "")
		if errors.Is(err, shared.ErrInvalidName) {
			err = nil
		} else if err == nil {
			s.apply(EditCancelled{})
			s.SelectPlaylist(p.ID)
			return nil
		}
	case EditRename:
		err = s.RenamePlaylist(ctx, edit.Target, edit.Input)
	case EditCover:
		if err = s.SetCover(ctx, edit.Target, edit.Input); errors.Is(err, shared.ErrInvalidCover) {
			return err
		}
	case ConfirmDelete:
		err = s.DeletePlaylist(ctx, edit.Target)
	}

	s.apply(EditCancelled{})
	return err
}

// fail reports err as a notice and returns it.
func (s *Session) fail(err error) error {
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound):
		s.Notify("Playlist not found.")
	case errors.Is(err, shared.ErrInvalidCover):
		s.Notify("Cover must be a URL such as https://...")
	default:
		s.Notify(err.Error())
	}
	return err
}
