// Package app holds the view selector: which track list is on screen, the search status line,
// notifications, the add-to-playlist menu and the modal editors.
//
// [State] is a plain value and [State.Apply] is a pure transition function over [Event] values, so
// every transition can be tested without a terminal. [Session] owns the current State together with
// the playlist store and is the only code that mutates either.
//
// Searches are sequence numbered. [Session.StartSearch] issues seq n and clears the results, then
// [Searcher.Run] fetches a fresh token and queries the catalog off the UI goroutine. The outcome is
// accepted by [Session.ResolveSearch] only if n is still the latest pending search.
package app
