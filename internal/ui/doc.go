// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The screen has a search box with the logo above a playlist sidebar and a main pane. The main pane shows either
// catalog results or the tracks of the selected playlist, as decided by the [app.Session] view selector.
// Clicking the logo or pressing g returns to search.
//
// Searches run as [tea.Cmd]s and come back as messages carrying their sequence number, so a slow response never
// replaces a newer one. Notifications are cleared by a tick scheduled when they appear.
//
// Right-clicking a result (or pressing a) opens the add-to-playlist menu at the pointer. Playlists are created,
// renamed, re-covered and deleted through a modal editor.
package ui
