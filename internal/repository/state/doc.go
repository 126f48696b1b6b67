// Package state implements persistence for the alert Snapshot.
//
// Two backends expose the same Repository interface the alert service
// depends on: FileRepository stores the snapshot as a JSON file,
// SQLiteRepository stores it as a key/value table in an embedded database.
// Both are versionless; there is no migration path.
package state
