package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIP(t *testing.T) {
	h := HashIP("203.0.113.7")

	assert.Equal(t, 64, len(h))
	assert.True(t, ValidHashedIP(h))
	// Deterministic, and distinct origins hash apart.
	assert.Equal(t, h, HashIP("203.0.113.7"))
	assert.NotEqual(t, h, HashIP("203.0.113.8"))
}

func TestAnonymousID(t *testing.T) {
	hashedIP := HashIP("203.0.113.7")

	id := AnonymousID(hashedIP, "Mozilla/5.0")
	assert.True(t, ValidAnonymousID(id))
	assert.Equal(t, id, AnonymousID(hashedIP, "Mozilla/5.0"))
	assert.NotEqual(t, id, AnonymousID(hashedIP, "curl/8.0"))
}

func TestValidHashedIP(t *testing.T) {
	assert.False(t, ValidHashedIP("203.0.113.7"))
	assert.False(t, ValidHashedIP(""))
	// Right length, not hex.
	assert.False(t, ValidHashedIP("zz3d4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b1c2d3z"))
}

func TestValidAnonymousID(t *testing.T) {
	assert.True(t, ValidAnonymousID("anon_a1b2c3d4e5f6"))
	assert.False(t, ValidAnonymousID("anon_a1b2c3"))
	assert.False(t, ValidAnonymousID("user_a1b2c3d4e5f6"))
	assert.False(t, ValidAnonymousID("anon_zzzzzzzzzzzz"))
}

func TestAppErrorToHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, AppErrorToHTTPStatus(ErrInvalidInput))
	assert.Equal(t, 404, AppErrorToHTTPStatus(ErrNotFound))
	assert.Equal(t, 404, AppErrorToHTTPStatus(ErrExposeExpired))
	assert.Equal(t, 401, AppErrorToHTTPStatus(ErrUnauthorized))
	assert.Equal(t, 409, AppErrorToHTTPStatus(ErrCleanupInProgress))
	assert.Equal(t, 500, AppErrorToHTTPStatus(ErrDatabase))
	assert.Equal(t, 500, AppErrorToHTTPStatus("SOMETHING_ELSE"))
}

func TestAppErrorMessage(t *testing.T) {
	err := NewExposeExpiredError("expose_abc")
	assert.Equal(t, ErrExposeExpired, err.Code)
	assert.Contains(t, err.Error(), "expose_abc")

	wrapped := NewAppError(ErrDatabase, "query failed", assert.AnError)
	assert.Contains(t, wrapped.Error(), assert.AnError.Error())
	assert.True(t, IsErrorCode(wrapped, ErrDatabase))
	assert.False(t, IsErrorCode(wrapped, ErrNotFound))
}
