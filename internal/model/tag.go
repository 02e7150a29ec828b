package model

import "time"

// Limits on tags and aliases. The space-wide and per-owner caps are
// enforced at creation time only; a claim can push an owner past the cap.
const (
	MaxNameLength    = 50
	MaxContentLength = 2000
	MaxAliasLength   = 100
	MaxAliasesPerTag = 5
	MaxTagsPerSpace  = 100
	MaxTagsPerOwner  = 10
)

// Tag is a named text snippet owned by a user within a space.
// (space_id, name) identifies it uniquely; aliases resolve to the same tag
// but are never stored as tags themselves.
type Tag struct {
	SpaceID   int64     `db:"space_id" json:"space_id"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	Aliases   []string  `db:"-" json:"aliases"`
}

// TagSummary is a single row of a tag listing. Index is 1-based and
// assigned from the listing order; it is not stable across mutations.
type TagSummary struct {
	Index   int    `db:"-" json:"index"`
	Name    string `db:"name" json:"name"`
	OwnerID int64  `db:"owner_id" json:"owner_id"`
}
