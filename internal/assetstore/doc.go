// Package assetstore implements asset.Store.
//
// Store persists assets in SQLite (modernc.org/sqlite, WAL mode) as JSON
// payloads keyed by id with a unique store path per asset. Memory keeps the
// same semantics in process for tests and fixtures, and Overlay layers an
// in-memory write set over any backend so dry runs never touch the database.
//
// Store paths are slash-separated and relative to the store root. They name
// artifacts inside the store; nothing is written to the host filesystem apart
// from the database itself and the advisory lock file managed by Lock.
package assetstore
