package moderation

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/fwber/warden/keyword"
)

// Fingerprint returns the deterministic cache/dedup key for a piece of
// text: hex sha256 of the normalized form. Identical normalized text yields
// an identical fingerprint, so casing/spacing/punctuation variants of the
// same content share one cache entry.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(keyword.NormalizeText(text)))
	return hex.EncodeToString(sum[:])
}
