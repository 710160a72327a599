// Package tracker contains the reconciliation engine: the decision, for
// each incoming scraped item, between appending a new spreadsheet row,
// updating today's existing row in place, or appending a new row that
// inherits a previously uploaded image.
//
// The identity rule is "last append wins": the URL key is not unique in
// storage (one row per day the post was seen), and lookups resolve to the
// highest-index match. Re-submitting a URL on the same calendar day is
// idempotent at the row level; re-submitting on a later day grows history
// by one row while the image URL stays frozen at its first upload.
package tracker
