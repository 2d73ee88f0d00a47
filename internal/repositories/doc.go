// Package repositories implements SQLite persistence for crate.
//
// The database stands in for browser local storage: [LocalStorageRepository] is a plain key/value table
// where every key holds one JSON document. The playlist collection is stored whole under [PlaylistsKey]
// by [PlaylistPersister], which the library store uses as its persistence port.
//
// Key Implementations:
//   - [LocalStorageRepository] : key/value documents with upsert semantics
//   - [PlaylistPersister] : JSON (de)serialization of the full playlist collection
//   - [SearchHistoryRepository] : append-only log of submitted searches
package repositories
