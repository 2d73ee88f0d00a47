// Package models defines the catalog and playlist entities shared by every layer of crate.
//
// The package contains two kinds of types:
//
// 1. Catalog records, shaped by the external music catalog and treated as read-only:
//   - [Track] : one playable catalog item
//   - [Artist], [Album], [Image] : nested catalog metadata
//
// 2. Local entities owned by the playlist store:
//   - [Playlist] : a user-created, ordered, duplicate-free collection of tracks
//
// Track identity is defined solely by [Track.ID]; see [Track.Same].
// The JSON encoding of these types is the persisted representation of the playlist collection.
package models
