package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// AnonymousIDPrefix marks derived anonymous author identities.
const AnonymousIDPrefix = "anon_"

const anonymousIDHexLen = 12

// HashIP returns the sha256 hex digest of an origin IP. The digest is
// deterministic so the same origin always maps to the same stored value, but
// the raw address is never persisted.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// AnonymousID derives a stable anonymous author identity from a hashed IP
// and a user agent. The same browser on the same origin gets the same
// identity across comments without any account existing.
func AnonymousID(hashedIP, userAgent string) string {
	sum := sha256.Sum256([]byte(hashedIP + "|" + userAgent))
	return AnonymousIDPrefix + hex.EncodeToString(sum[:])[:anonymousIDHexLen]
}

// ValidHashedIP reports whether s looks like a sha256 hex digest.
func ValidHashedIP(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// ValidAnonymousID reports whether s matches the derived identity format.
func ValidAnonymousID(s string) bool {
	if !strings.HasPrefix(s, AnonymousIDPrefix) {
		return false
	}
	token := strings.TrimPrefix(s, AnonymousIDPrefix)
	if len(token) != anonymousIDHexLen {
		return false
	}
	_, err := hex.DecodeString(token)
	return err == nil
}
