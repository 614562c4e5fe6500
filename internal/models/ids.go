package models

import (
	"strings"

	"github.com/google/uuid"
)

// Identifier prefixes. Every stored document carries a prefixed ID so that a
// raw identifier is self-describing in logs and API payloads.
const (
	ExposeIDPrefix  = "expose_"
	CommentIDPrefix = "comment_"
	ViewIDPrefix    = "view_"
	ArticleIDPrefix = "article_"
	SessionIDPrefix = "session_"
)

func NewExposeID() string {
	return ExposeIDPrefix + uuid.NewString()
}

func NewCommentID() string {
	return CommentIDPrefix + uuid.NewString()
}

func NewViewID() string {
	return ViewIDPrefix + uuid.NewString()
}

func NewArticleID() string {
	return ArticleIDPrefix + uuid.NewString()
}

// ValidExposeID reports whether id is a well-formed expose identifier.
// Validation checks the prefix format only; whether such an expose exists is
// the store's business, so "expose_abc" is well-formed and simply not found.
func ValidExposeID(id string) bool {
	return validPrefixedID(id, ExposeIDPrefix)
}

// ValidCommentID reports whether id is a well-formed comment identifier.
func ValidCommentID(id string) bool {
	return validPrefixedID(id, CommentIDPrefix)
}

// ValidArticleID reports whether id is a well-formed article identifier.
func ValidArticleID(id string) bool {
	return validPrefixedID(id, ArticleIDPrefix)
}

// ValidSessionID reports whether id is an acceptable client session
// identifier. Sessions are minted client-side; any non-empty URL-safe token
// after the prefix is accepted, "session_1" included.
func ValidSessionID(id string) bool {
	return validPrefixedID(id, SessionIDPrefix)
}

// validPrefixedID accepts the prefix followed by a non-empty token of
// [A-Za-z0-9_-].
func validPrefixedID(id, prefix string) bool {
	if !strings.HasPrefix(id, prefix) {
		return false
	}
	token := strings.TrimPrefix(id, prefix)
	if token == "" {
		return false
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}
