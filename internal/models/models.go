package models

import (
	"time"
)

// Expose is an anonymous, time-limited submission. ExpiresAt is stamped once
// at creation and never extended afterwards.
type Expose struct {
	ID        string
	Title     string
	Content   string
	Hashtag   string
	ImageURLs []string
	AudioURL  string
	CreatedAt time.Time
	ExpiresAt time.Time
	Views     int
	Comments  int
	Upvotes   int
	Downvotes int
	Shares    int
}

// NetVotes returns the derived score for an expose.
func (e *Expose) NetVotes() int {
	return e.Upvotes - e.Downvotes
}

// MediaURLs returns every media reference attached to the expose, images
// first, then the optional audio clip.
func (e *Expose) MediaURLs() []string {
	urls := make([]string, 0, len(e.ImageURLs)+1)
	urls = append(urls, e.ImageURLs...)
	if e.AudioURL != "" {
		urls = append(urls, e.AudioURL)
	}
	return urls
}

// Comment is an anonymous comment on an expose. Comments outlive the parent
// expose's application-level expiry; the store removes them on its own TTL.
type Comment struct {
	ID        string
	ExposeID  string
	Text      string
	AuthorID  string // derived anonymous identity, anon_ prefixed
	HashedIP  string // sha256 hex of the origin IP
	UserAgent string
	CreatedAt time.Time
}

// ViewRecord marks that a session has viewed an expose. At most one record
// exists per (session, expose) pair; the store's unique index enforces it.
type ViewRecord struct {
	ID        string
	ExposeID  string
	SessionID string
	HashedIP  string
	ViewedAt  time.Time
}

// Article is a published news article. Articles do not expire.
type Article struct {
	ID          string
	Title       string
	Slug        string
	Category    string
	Content     string
	Author      string
	ImageURL    string
	PublishedAt time.Time
	Views       int
}
