// Package expiry holds the expose expiration policy. Both functions are pure
// so the cleanup service and the actors share one definition of "expired".
package expiry

import "time"

// ComputeExpiry returns the expiry timestamp for content created at
// createdAt under the given fatigue window.
func ComputeExpiry(createdAt time.Time, window time.Duration) time.Time {
	return createdAt.Add(window)
}

// IsExpired reports whether content with the given expiry timestamp is
// expired at now. The boundary instant counts as expired.
func IsExpired(expiresAt, now time.Time) bool {
	return !expiresAt.After(now)
}
