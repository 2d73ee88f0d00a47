package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/desertthunder/crate/internal/app"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

const (
	logo         = "crate"
	sidebarWidth = 26
	separator    = " │ "
	// trackTop is the screen row of the first track and the first sidebar entry.
	trackTop = 4
)

var (
	logoWidth = lipgloss.Width(styles.logo.Render(logo))
	mainLeft  = sidebarWidth + lipgloss.Width(separator)
)

// visibleRows is the number of track rows that fit between the headers and the help line.
func (m *Model) visibleRows() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-trackTop-2, 1)
}

// trackRowAt maps a screen cell to an index into the main pane's tracks.
func (m *Model) trackRowAt(x, y int) (int, bool) {
	if x < mainLeft || y < trackTop || y-trackTop >= m.visibleRows() {
		return 0, false
	}
	i := m.offset + y - trackTop
	return i, i < len(m.tracks())
}

// sidebarRowAt maps a screen cell to an index into the playlist sidebar.
func (m *Model) sidebarRowAt(x, y int) (int, bool) {
	if x >= sidebarWidth || y < trackTop || y-trackTop >= m.visibleRows() {
		return 0, false
	}
	i := m.sidebar.Paginator.Page*m.sidebar.Paginator.PerPage + y - trackTop
	return i, i < len(m.sidebar.Items())
}

// View renders the header, the sidebar and main pane, and any overlay on top.
func (m *Model) View() string {
	state := m.session.State()
	m.sidebar.SetSize(sidebarWidth, m.visibleRows())

	lines := []string{
		styles.logo.Render(logo) + " " + m.search.View(),
		m.renderNotice(state.Notice),
		"",
	}

	if state.Edit.Active() {
		lines = append(lines, strings.Split(m.renderEditor(state), "\n")...)
	} else {
		lines = append(lines, m.renderBody(state)...)
	}

	if state.Menu.Open {
		lines = m.overlayMenu(lines, state.Menu)
	}

	lines = append(lines, "", styles.help.Render(m.help.View(m.keys)))
	return strings.Join(lines, "\n")
}

func (m *Model) renderNotice(n app.Notice) string {
	if n.Text == "" {
		return ""
	}
	return styles.notice.Render(n.Text)
}

func (m *Model) renderBody(state app.State) []string {
	header, rows := m.renderMain(state)
	pane := append([]string{header}, rows...)

	title := styles.dim.Render("Playlists")
	if m.focus == focusSidebar {
		title = styles.title.Render("Playlists")
	}
	side := append([]string{title}, strings.Split(m.sidebar.View(), "\n")...)
	if len(m.sidebar.Items()) == 0 {
		side = append(side[:1], styles.dim.Render("n to create one"))
	}

	height := max(len(pane), len(side))
	body := make([]string, height)
	for i := range height {
		var l, r string
		if i < len(side) {
			l = side[i]
		}
		if i < len(pane) {
			r = pane[i]
		}
		body[i] = pad(ansi.Truncate(l, sidebarWidth, ""), sidebarWidth) + styles.dim.Render(separator) + r
	}
	return body
}

// renderMain returns the main pane's header line and its visible track rows.
func (m *Model) renderMain(state app.State) (string, []string) {
	id, ok := state.ActivePlaylist()
	if !ok {
		if len(state.Search.Results) == 0 {
			return styles.dim.Render(state.Search.Status), nil
		}
		header := styles.title.Render(fmt.Sprintf("Results for %q", state.Search.Query))
		if state.Search.Pending {
			header += " " + styles.dim.Render(state.Search.Status)
		}
		return header, m.renderTracks(state.Search.Results)
	}

	p, found := m.session.Store().Get(id)
	if !found {
		return styles.err.Render("Playlist not found."), nil
	}

	header := styles.title.Render(p.Name) + " " +
		styles.dim.Render(fmt.Sprintf("%d songs • %s", len(p.Tracks), shared.FormatDuration(p.Duration())))
	if !p.HasDefaultCover() {
		header += " " + styles.dim.Render(p.Cover)
	}
	if len(p.Tracks) == 0 {
		return header, []string{styles.dim.Render("No songs in this playlist.")}
	}
	return header, m.renderTracks(p.Tracks)
}

func (m *Model) renderTracks(tracks []models.Track) []string {
	width := m.width - mainLeft
	if width <= 0 {
		width = 80
	}

	end := min(m.offset+m.visibleRows(), len(tracks))
	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		t := tracks[i]
		line := fmt.Sprintf("%3d. %s · %s  %s", i+1, t.Name, t.ArtistNames(), shared.FormatDuration(t.DurationMS))
		line = ansi.Truncate(line, width-2, "…")
		if i == m.cursor && m.focus != focusSidebar {
			rows = append(rows, styles.selected.Render("▸ "+line))
		} else {
			rows = append(rows, "  "+line)
		}
	}
	return rows
}

func (m *Model) renderEditor(state app.State) string {
	edit := state.Edit
	var body string
	if edit.Mode == app.ConfirmDelete {
		name := edit.Target
		if p, ok := m.session.Store().Get(edit.Target); ok {
			name = p.Name
		}
		body = fmt.Sprintf("Delete %q? (y/n)", name)
	} else {
		body = m.editor.View() + "\n\n" + styles.help.Render("enter to save • esc to cancel")
	}
	return styles.modal.Render(styles.title.Render(edit.Mode.String()) + "\n\n" + body)
}

// renderMenu draws one row per playlist, in store order, inside a border.
func (m *Model) renderMenu(menu app.Menu) []string {
	inner := app.MenuWidth - 2
	entries := make([]string, 0, menu.Entries)
	for i, p := range m.session.Store().List() {
		if i >= menu.Entries {
			break
		}
		text := pad(ansi.Truncate("+ "+p.Name, inner, "…"), inner)
		if i == m.menuCursor {
			text = styles.selected.Reverse(true).Render(text)
		}
		entries = append(entries, text)
	}
	return strings.Split(styles.menu.Width(inner).Render(strings.Join(entries, "\n")), "\n")
}

// overlayMenu splices the menu over lines with its top-left corner at the menu's anchor.
func (m *Model) overlayMenu(lines []string, menu app.Menu) []string {
	for j, row := range m.renderMenu(menu) {
		y := menu.Y + j
		for len(lines) <= y {
			lines = append(lines, "")
		}
		lines[y] = pad(ansi.Truncate(lines[y], menu.X, ""), menu.X) + row
	}
	return lines
}

// pad right-fills s with spaces to width cells.
func pad(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
