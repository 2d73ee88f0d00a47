package app

import (
	"errors"
	"fmt"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
)

// InitialPrompt is the status shown before the first search and after going home.
const InitialPrompt = "Search for a song you want to hear!"

// View is the active main pane: [SearchView] or [PlaylistView].
type View interface {
	isView()
}

// SearchView shows the last search results and status.
type SearchView struct{}

// PlaylistView shows one playlist, looked up by id at render time.
type PlaylistView struct {
	ID string
}

func (SearchView) isView()   {}
func (PlaylistView) isView() {}

// SearchState holds the outcome of the latest search. It is kept while a playlist is shown.
type SearchState struct {
	Query   string
	Results []models.Track
	Status  string
	Latest  uint64 // sequence number of the newest issued search
	Pending bool
}

// Notice is the transient notification line. Gen changes on every notification so an expiry
// scheduled for an older one is ignored.
type Notice struct {
	Text string
	Gen  uint64
}

// EditMode selects what an open editor submits to.
type EditMode int

const (
	EditNone EditMode = iota
	EditCreate
	EditRename
	EditCover
	ConfirmDelete
)

func (m EditMode) String() string {
	switch m {
	case EditCreate:
		return "New playlist"
	case EditRename:
		return "Rename playlist"
	case EditCover:
		return "Cover image URL"
	case ConfirmDelete:
		return "Delete playlist"
	default:
		return ""
	}
}

// Edit is the modal input sub-state. Target is the playlist id for rename, cover and delete.
type Edit struct {
	Mode   EditMode
	Target string
	Input  string
}

// Active reports whether an editor is open.
func (e Edit) Active() bool { return e.Mode != EditNone }

// State is everything the presentation layer renders. It is a value; [State.Apply] returns a new one.
type State struct {
	View   View
	Search SearchState
	Notice Notice
	Menu   Menu
	Edit   Edit
}

// Initial returns the state of a fresh session.
func Initial() State {
	return State{View: SearchView{}, Search: SearchState{Status: InitialPrompt}}
}

// ActivePlaylist returns the id shown in a [PlaylistView].
func (s State) ActivePlaylist() (string, bool) {
	pv, ok := s.View.(PlaylistView)
	return pv.ID, ok
}

// Event is an input to [State.Apply].
type Event interface {
	event()
}

type (
	// SearchStarted switches to the search view, clears results and records seq as the latest search.
	SearchStarted struct {
		Seq   uint64
		Query string
	}

	// SearchResolved carries the outcome of search Seq. It is dropped unless Seq is the latest pending search.
	SearchResolved struct {
		Seq    uint64
		Query  string
		Tracks []models.Track
		Err    error
	}

	PlaylistSelected struct{ ID string }
	WentHome         struct{}
	PlaylistDeleted  struct{ ID string }

	Notified      struct{ Text string }
	NoticeExpired struct{ Gen uint64 }

	// MenuOpened anchors the add-to-playlist menu at X, Y for Track. Entries is the number of
	// playlists listed; with none the menu is refused with a notice.
	MenuOpened struct {
		X, Y    int
		Track   models.Track
		Entries int
	}
	MenuClosed struct{}
	Clicked    struct{ X, Y int }

	EditBegan struct {
		Mode   EditMode
		Target string
		Input  string
	}
	EditChanged   struct{ Input string }
	EditCancelled struct{}
)

func (SearchStarted) event()    {}
func (SearchResolved) event()   {}
func (PlaylistSelected) event() {}
func (WentHome) event()         {}
func (PlaylistDeleted) event()  {}
func (Notified) event()         {}
func (NoticeExpired) event()    {}
func (MenuOpened) event()       {}
func (MenuClosed) event()       {}
func (Clicked) event()          {}
func (EditBegan) event()        {}
func (EditChanged) event()      {}
func (EditCancelled) event()    {}

// Status messages.
const (
	NoticeNeedPlaylist = "Create a playlist first!"
	NoticeDuplicate    = "This song is already in the playlist."
)

func searchingStatus(q string) string { return fmt.Sprintf(`Searching for "%s"...`, q) }
func noResultsStatus(q string) string { return fmt.Sprintf(`No results for "%s".`, q) }

// errorStatus distinguishes token failures from catalog failures.
func errorStatus(err error) string {
	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		return "Authentication failed: " + authErr.Message
	}
	var searchErr *services.SearchError
	if errors.As(err, &searchErr) {
		return "Search failed: " + searchErr.Message
	}
	return "Search failed: " + err.Error()
}

// Apply returns the state after e. It never mutates s.
func (s State) Apply(e Event) State {
	switch e := e.(type) {
	case SearchStarted:
		s.View = SearchView{}
		s.Search = SearchState{
			Query:   e.Query,
			Status:  searchingStatus(e.Query),
			Latest:  e.Seq,
			Pending: true,
		}
		s.Menu = Menu{}

	case SearchResolved:
		if !s.Search.Pending || e.Seq != s.Search.Latest {
			return s
		}
		s.Search.Pending = false
		switch {
		case e.Err != nil:
			s.Search.Results = nil
			s.Search.Status = errorStatus(e.Err)
		case len(e.Tracks) == 0:
			s.Search.Results = nil
			s.Search.Status = noResultsStatus(e.Query)
		default:
			s.Search.Results = append([]models.Track(nil), e.Tracks...)
			s.Search.Status = ""
		}

	case PlaylistSelected:
		s.View = PlaylistView{ID: e.ID}
		s.Search.Status = ""
		s.Menu = Menu{}

	case WentHome:
		s.View = SearchView{}
		s.Search = SearchState{Status: InitialPrompt, Latest: s.Search.Latest}
		s.Menu = Menu{}

	case PlaylistDeleted:
		if id, ok := s.ActivePlaylist(); ok && id == e.ID {
			s.View = SearchView{}
		}
		if s.Edit.Target == e.ID {
			s.Edit = Edit{}
		}

	case Notified:
		s.Notice = Notice{Text: e.Text, Gen: s.Notice.Gen + 1}

	case NoticeExpired:
		if e.Gen == s.Notice.Gen {
			s.Notice.Text = ""
		}

	case MenuOpened:
		if e.Entries <= 0 {
			return s.Apply(Notified{Text: NoticeNeedPlaylist})
		}
		s.Menu = openMenu(e.X, e.Y, e.Track, e.Entries)

	case MenuClosed:
		s.Menu = Menu{}

	case Clicked:
		if s.Menu.Open && !s.Menu.Contains(e.X, e.Y) {
			s.Menu = Menu{}
		}

	case EditBegan:
		s.Edit = Edit{Mode: e.Mode, Target: e.Target, Input: e.Input}
		s.Menu = Menu{}

	case EditChanged:
		if s.Edit.Active() {
			s.Edit.Input = e.Input
		}

	case EditCancelled:
		s.Edit = Edit{}
	}

	return s
}
