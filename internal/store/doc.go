// Package store persists local content snapshots in SQLite.
//
// A snapshot is a point-in-time copy of the backend's episodes and official
// links, captured explicitly with `castctl snapshot save` for backup and
// export. Snapshots are never consulted by the site or the admin TUI; the
// backend stays the only source of truth for live content.
//
// Schema management uses embedded SQL migrations tracked in a
// schema_migrations table.
package store
