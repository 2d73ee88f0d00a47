package app

import "github.com/desertthunder/crate/internal/models"

// MenuWidth is the rendered width of the add-to-playlist menu in cells, borders included.
const MenuWidth = 28

// Menu is the add-to-playlist popup. Its rectangle starts at X, Y; the first and last rows are borders
// and each row in between is one playlist entry.
type Menu struct {
	Open    bool
	X, Y    int
	Track   models.Track
	Entries int
}

func openMenu(x, y int, t models.Track, entries int) Menu {
	return Menu{Open: true, X: max(x, 0), Y: max(y, 0), Track: t, Entries: entries}
}

// Width and Height give the menu's extent in cells.
func (m Menu) Width() int  { return MenuWidth }
func (m Menu) Height() int { return m.Entries + 2 }

// Contains reports whether the cell x, y falls inside the open menu.
func (m Menu) Contains(x, y int) bool {
	if !m.Open {
		return false
	}
	return x >= m.X && x < m.X+m.Width() && y >= m.Y && y < m.Y+m.Height()
}

// EntryAt maps a cell inside the menu to a playlist entry index.
func (m Menu) EntryAt(x, y int) (int, bool) {
	if !m.Contains(x, y) {
		return 0, false
	}
	i := y - m.Y - 1
	if i < 0 || i >= m.Entries {
		return 0, false
	}
	return i, true
}
