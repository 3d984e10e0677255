// Package models defines the domain entities exchanged with the MetôCast backend.
//
// The package contains two categories of types:
//
// 1. Entities: re-fetchable copies of backend-owned records
//   - [Episode] : a podcast installment with a draft/published lifecycle
//   - [OfficialLink] : a curated outbound URL with a typed category and display order
//   - [User] : the authenticated principal, cached locally for display only
//
// 2. Write payloads: the fields a client may set on create/update
//   - [EpisodeParams] and [LinkParams], each with field-level validation
//
// Tags cross the wire either as a JSON array or as a comma-delimited string
// depending on the backend revision; [TagList] normalizes both forms into a
// single canonical list so nothing downstream has to care.
package models
