package models

// VoteType represents the direction of a vote on an expose.
type VoteType string

const (
	VoteUp   VoteType = "upvote"
	VoteDown VoteType = "downvote"
)

// Valid reports whether v is a member of the vote enum.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}
