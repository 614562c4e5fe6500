package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeExpiry(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, createdAt.Add(24*time.Hour), ComputeExpiry(createdAt, 24*time.Hour))
	assert.Equal(t, createdAt.Add(72*time.Hour), ComputeExpiry(createdAt, 72*time.Hour))
}

func TestIsExpired(t *testing.T) {
	expiresAt := time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC)

	assert.False(t, IsExpired(expiresAt, expiresAt.Add(-time.Hour)))
	assert.False(t, IsExpired(expiresAt, expiresAt.Add(-time.Nanosecond)))
	// Boundary counts as expired.
	assert.True(t, IsExpired(expiresAt, expiresAt))
	assert.True(t, IsExpired(expiresAt, expiresAt.Add(time.Second)))
}

// Mirrors the lifecycle of a post created with a 24h window: still alive at
// T+23h, gone one second past T+24h.
func TestExpiryWindowLifecycle(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	expiresAt := ComputeExpiry(createdAt, 24*time.Hour)

	assert.False(t, IsExpired(expiresAt, createdAt.Add(23*time.Hour)))
	assert.True(t, IsExpired(expiresAt, createdAt.Add(24*time.Hour+time.Second)))
}
