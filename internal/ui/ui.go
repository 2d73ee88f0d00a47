package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/app"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// focus is the pane receiving key input.
type focus int

const (
	focusSearch focus = iota
	focusTracks
	focusSidebar
)

// DefaultNoticeDelay is how long a notification stays on screen.
const DefaultNoticeDelay = 3 * time.Second

type (
	searchResultMsg  app.SearchResolved
	noticeExpiredMsg struct{ gen uint64 }
	browserOpenedMsg struct {
		url string
		err error
	}
)

// Model represents the TUI application state. All view-selection state lives in the [app.Session];
// the model only adds widgets, focus and scroll position.
type Model struct {
	ctx         context.Context
	session     *app.Session
	logger      *log.Logger
	keys        keyMap
	help        help.Model
	search      textinput.Model
	editor      textinput.Model
	sidebar     list.Model
	focus       focus
	cursor      int
	offset      int
	menuCursor  int
	width       int
	height      int
	noticeDelay time.Duration
	lastGen     uint64
	open        func(string) error
}

// Option configures a [Model].
type Option func(*Model)

// WithNoticeDelay overrides [DefaultNoticeDelay].
func WithNoticeDelay(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.noticeDelay = d
		}
	}
}

// WithLogger sets the logger. The TUI owns the terminal, so this should write to a file.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithOpener replaces [shared.OpenBrowser].
func WithOpener(fn func(string) error) Option {
	return func(m *Model) { m.open = fn }
}

// NewModel creates a new TUI model over session.
func NewModel(ctx context.Context, session *app.Session, opts ...Option) *Model {
	search := textinput.New()
	search.Placeholder = "Search songs, artists, albums"
	search.Prompt = "🔍 "
	search.CharLimit = 200
	search.Width = 40
	search.Focus()

	editor := textinput.New()
	editor.CharLimit = 500
	editor.Width = 48

	m := &Model{
		ctx:         ctx,
		session:     session,
		keys:        newKeyMap(),
		help:        help.New(),
		search:      search,
		editor:      editor,
		sidebar:     newSidebar(session.Store().List()),
		focus:       focusSearch,
		noticeDelay: DefaultNoticeDelay,
		open:        shared.OpenBrowser,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = shared.NewLogger(nil)
	}
	return m
}

// Init starts the cursor blink in the search box.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.search.Width = max(msg.Width-logoWidth-8, 10)
		m.help.Width = msg.Width

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		cmds = append(cmds, m.handleMouse(msg))

	case searchResultMsg:
		if m.session.ResolveSearch(m.ctx, app.SearchResolved(msg)) {
			m.cursor, m.offset = 0, 0
		}

	case noticeExpiredMsg:
		m.session.ExpireNotice(msg.gen)

	case browserOpenedMsg:
		if msg.err != nil {
			m.logger.Error("failed to open browser", "url", msg.url, "error", msg.err)
			m.session.Notify(fmt.Sprintf("Could not open %s", msg.url))
		}

	default:
		var cmd tea.Cmd
		if m.focus == focusSearch {
			m.search, cmd = m.search.Update(msg)
		} else if m.session.State().Edit.Active() {
			m.editor, cmd = m.editor.Update(msg)
		}
		cmds = append(cmds, cmd)
	}

	m.sync()
	cmds = append(cmds, m.scheduleNoticeExpiry())
	return m, tea.Batch(cmds...)
}

// scheduleNoticeExpiry starts a timer whenever a new notification appeared.
func (m *Model) scheduleNoticeExpiry() tea.Cmd {
	notice := m.session.State().Notice
	if notice.Gen == m.lastGen {
		return nil
	}
	m.lastGen = notice.Gen
	if notice.Text == "" {
		return nil
	}

	gen := notice.Gen
	return tea.Tick(m.noticeDelay, func(time.Time) tea.Msg { return noticeExpiredMsg{gen: gen} })
}

// sync refreshes the sidebar from the store and keeps the cursors in range.
func (m *Model) sync() {
	idx := m.sidebar.Index()
	m.sidebar.SetItems(playlistItems(m.session.Store().List()))
	if n := len(m.sidebar.Items()); n > 0 {
		m.sidebar.Select(min(idx, n-1))
	}

	n := len(m.tracks())
	switch {
	case n == 0:
		m.cursor, m.offset = 0, 0
	case m.cursor >= n:
		m.cursor = n - 1
	}
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return tea.Quit
	}

	state := m.session.State()
	switch {
	case state.Edit.Active():
		return m.handleEditKey(msg, state.Edit)
	case state.Menu.Open:
		return m.handleMenuKey(msg)
	case m.focus == focusSearch:
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.search):
		return m.focusSearch()
	case key.Matches(msg, m.keys.tab):
		if m.focus == focusTracks {
			m.focus = focusSidebar
		} else {
			m.focus = focusTracks
		}
	case key.Matches(msg, m.keys.back):
		m.focus = focusTracks
	case key.Matches(msg, m.keys.up):
		m.move(-1)
	case key.Matches(msg, m.keys.down):
		m.move(1)
	case key.Matches(msg, m.keys.enter):
		if m.focus == focusSidebar {
			if p, ok := m.selectedPlaylist(); ok {
				m.session.SelectPlaylist(p.ID)
				m.cursor, m.offset = 0, 0
				m.focus = focusTracks
			}
			return nil
		}
		return m.openMenuAtCursor()
	case key.Matches(msg, m.keys.add):
		return m.openMenuAtCursor()
	case key.Matches(msg, m.keys.remove):
		if id, ok := state.ActivePlaylist(); ok {
			if t, ok := m.currentTrack(); ok {
				m.session.RemoveTrack(m.ctx, id, t.ID)
			}
		}
	case key.Matches(msg, m.keys.open):
		if t, ok := m.currentTrack(); ok {
			return m.openURL(t.ExternalURL)
		}
	case key.Matches(msg, m.keys.home):
		return m.goHome()
	case key.Matches(msg, m.keys.create):
		return m.beginEdit(app.EditCreate, "")
	case key.Matches(msg, m.keys.rename):
		return m.editTarget(app.EditRename)
	case key.Matches(msg, m.keys.cover):
		return m.editTarget(app.EditCover)
	case key.Matches(msg, m.keys.delete):
		return m.editTarget(app.ConfirmDelete)
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		started, ok := m.session.StartSearch(m.search.Value())
		if !ok {
			return nil
		}
		m.search.Blur()
		m.focus = focusTracks
		m.cursor, m.offset = 0, 0
		return m.searchCmd(started)
	case tea.KeyEsc, tea.KeyTab:
		m.search.Blur()
		m.focus = focusTracks
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	n := m.session.Store().Len()
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.session.CloseMenu()
	case key.Matches(msg, m.keys.up):
		m.menuCursor = max(m.menuCursor-1, 0)
	case key.Matches(msg, m.keys.down):
		m.menuCursor = min(m.menuCursor+1, n-1)
	case key.Matches(msg, m.keys.enter):
		if err := m.session.ChooseMenuEntry(m.ctx, m.menuCursor); err != nil {
			m.logger.Warn("failed to add track", "error", err)
		}
	}
	return nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg, edit app.Edit) tea.Cmd {
	if edit.Mode == app.ConfirmDelete {
		switch {
		case key.Matches(msg, m.keys.yes):
			if err := m.session.SubmitEdit(m.ctx); err != nil {
				m.logger.Warn("delete failed", "error", err)
			}
		case key.Matches(msg, m.keys.no):
			m.session.CancelEdit()
		}
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.session.CancelEdit()
		m.editor.Blur()
		return nil
	case tea.KeyEnter:
		m.session.EditInput(m.editor.Value())
		if err := m.session.SubmitEdit(m.ctx); err != nil {
			m.logger.Warn("edit rejected", "mode", edit.Mode.String(), "error", err)
		}
		if !m.session.State().Edit.Active() {
			m.editor.Blur()
			if _, ok := m.session.State().ActivePlaylist(); ok {
				m.focus = focusTracks
			}
		}
		return nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.session.EditInput(m.editor.Value())
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress {
		return nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.move(-1)
		return nil
	case tea.MouseButtonWheelDown:
		m.move(1)
		return nil
	}

	if m.session.State().Edit.Active() {
		return nil
	}

	if m.session.State().Menu.Open {
		consumed, err := m.session.Click(m.ctx, msg.X, msg.Y)
		if err != nil {
			m.logger.Warn("failed to add track", "error", err)
		}
		if consumed {
			return nil
		}
	}

	if msg.Button == tea.MouseButtonLeft && msg.Y == 0 && msg.X < logoWidth {
		return m.goHome()
	}
	if msg.Button == tea.MouseButtonLeft && msg.Y == 0 {
		return m.focusSearch()
	}

	if i, ok := m.trackRowAt(msg.X, msg.Y); ok {
		m.cursor = i
		m.focus = focusTracks
		m.search.Blur()
		if msg.Button == tea.MouseButtonRight {
			if _, inPlaylist := m.session.State().ActivePlaylist(); !inPlaylist {
				m.openMenu(msg.X, msg.Y)
			}
		}
		return nil
	}

	if i, ok := m.sidebarRowAt(msg.X, msg.Y); ok && msg.Button == tea.MouseButtonLeft {
		m.sidebar.Select(i)
		if p, ok := m.selectedPlaylist(); ok {
			m.session.SelectPlaylist(p.ID)
			m.cursor, m.offset = 0, 0
		}
		m.focus = focusSidebar
		m.search.Blur()
	}
	return nil
}

func (m *Model) move(delta int) {
	if m.focus == focusSidebar {
		if delta < 0 {
			m.sidebar.CursorUp()
		} else {
			m.sidebar.CursorDown()
		}
		return
	}
	n := len(m.tracks())
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
}

func (m *Model) focusSearch() tea.Cmd {
	m.focus = focusSearch
	return m.search.Focus()
}

func (m *Model) goHome() tea.Cmd {
	m.session.GoHome()
	m.search.SetValue("")
	m.cursor, m.offset = 0, 0
	return m.focusSearch()
}

func (m *Model) searchCmd(started app.SearchStarted) tea.Cmd {
	ctx, searcher := m.ctx, m.session.Searcher()
	return func() tea.Msg {
		return searchResultMsg(searcher.Run(ctx, started.Seq, started.Query))
	}
}

func (m *Model) openURL(url string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		return browserOpenedMsg{url: url, err: open(url)}
	}
}

func (m *Model) openMenuAtCursor() tea.Cmd {
	if _, inPlaylist := m.session.State().ActivePlaylist(); inPlaylist {
		return nil
	}
	if _, ok := m.currentTrack(); !ok {
		return nil
	}
	m.openMenu(mainLeft+4, trackTop+m.cursor-m.offset+1)
	return nil
}

// openMenu anchors the menu at x, y, shifted so it stays on screen.
func (m *Model) openMenu(x, y int) {
	t, ok := m.currentTrack()
	if !ok {
		return
	}
	if m.width > 0 {
		x = min(x, m.width-app.MenuWidth)
	}
	if m.height > 0 {
		y = min(y, m.height-m.session.Store().Len()-2)
	}
	m.menuCursor = 0
	m.session.OpenMenu(x, y, t)
}

func (m *Model) beginEdit(mode app.EditMode, target string) tea.Cmd {
	state := m.session.BeginEdit(mode, target)
	m.editor.SetValue(state.Edit.Input)
	m.editor.CursorEnd()
	m.search.Blur()
	return m.editor.Focus()
}

// editTarget opens an editor for the playlist under the sidebar cursor, or the one on screen.
func (m *Model) editTarget(mode app.EditMode) tea.Cmd {
	id, ok := m.session.State().ActivePlaylist()
	if m.focus == focusSidebar || !ok {
		p, found := m.selectedPlaylist()
		if !found {
			m.session.Notify(app.NoticeNeedPlaylist)
			return nil
		}
		id = p.ID
	}
	return m.beginEdit(mode, id)
}

// tracks returns the rows of the main pane.
func (m *Model) tracks() []models.Track {
	state := m.session.State()
	if id, ok := state.ActivePlaylist(); ok {
		p, found := m.session.Store().Get(id)
		if !found {
			return nil
		}
		return p.Tracks
	}
	return state.Search.Results
}

func (m *Model) currentTrack() (models.Track, bool) {
	tracks := m.tracks()
	if m.cursor < 0 || m.cursor >= len(tracks) {
		return models.Track{}, false
	}
	return tracks[m.cursor], true
}

func (m *Model) selectedPlaylist() (models.Playlist, bool) {
	item, ok := m.sidebar.SelectedItem().(playlistItem)
	if !ok {
		return models.Playlist{}, false
	}
	return item.playlist, true
}
