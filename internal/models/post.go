// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Post represents a blog post in Chronicle.
//
// A post moves through three conceptual states: draft (is_draft true),
// scheduled (is_draft false, published_at in the future) and live (is_draft
// false, published_at passed). The state is never stored; it is recomputed
// from the clock on every read.
type Post struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`
	// IsDraft hides the post from public reads regardless of published_at.
	IsDraft bool `gorm:"not null;default:false" json:"is_draft"`
	// PublishedAt is nil for drafts and for posts that were never scheduled.
	PublishedAt *time.Time `gorm:"index" json:"published_at"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// VisibleAt reports whether the post is publicly visible at t: not a draft,
// with a publish instant that has already passed. A live post satisfies the
// same predicate; "scheduled" is a non-draft post for which VisibleAt is not
// yet true.
func (p *Post) VisibleAt(t time.Time) bool {
	return !p.IsDraft && p.PublishedAt != nil && !p.PublishedAt.After(t)
}
