package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewExposeID(t *testing.T) {
	id := NewExposeID()
	assert.True(t, strings.HasPrefix(id, ExposeIDPrefix))
	assert.True(t, ValidExposeID(id))
}

func TestValidExposeID(t *testing.T) {
	assert.True(t, ValidExposeID("expose_7b7a3f8e-9f1c-4a6f-8f3e-2d1b9a0c4e5d"))
	// Prefix format is all that is checked; short hand-written IDs are
	// well-formed and resolve to not-found at the store.
	assert.True(t, ValidExposeID("expose_abc"))
	assert.False(t, ValidExposeID("7b7a3f8e-9f1c-4a6f-8f3e-2d1b9a0c4e5d"))
	assert.False(t, ValidExposeID("comment_7b7a3f8e-9f1c-4a6f-8f3e-2d1b9a0c4e5d"))
	assert.False(t, ValidExposeID("expose_"))
	assert.False(t, ValidExposeID("expose_has space"))
	assert.False(t, ValidExposeID(""))
}

func TestValidSessionID(t *testing.T) {
	assert.True(t, ValidSessionID("session_abc12345"))
	assert.True(t, ValidSessionID("session_1"))
	assert.True(t, ValidSessionID("session_"+strings.Repeat("a", 64)))
	assert.False(t, ValidSessionID("session_"))
	assert.False(t, ValidSessionID("sess_abc12345"))
	assert.False(t, ValidSessionID("session_has space!"))
}

func TestVoteTypeValid(t *testing.T) {
	assert.True(t, VoteUp.Valid())
	assert.True(t, VoteDown.Valid())
	assert.False(t, VoteType("sideways").Valid())
	assert.False(t, VoteType("").Valid())
}

func TestExposeNetVotes(t *testing.T) {
	e := &Expose{Upvotes: 7, Downvotes: 3}
	assert.Equal(t, 4, e.NetVotes())
}

func TestExposeMediaURLs(t *testing.T) {
	e := &Expose{
		ImageURLs: []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		AudioURL:  "https://cdn.example.com/clip.mp3",
	}
	assert.Equal(t, 3, len(e.MediaURLs()))

	noAudio := &Expose{ImageURLs: []string{"https://cdn.example.com/a.jpg"}}
	assert.Equal(t, 1, len(noAudio.MediaURLs()))
}
