package calendar

import (
	"crypto/sha256"
	"encoding/hex"
)

// externalIdLength keeps ids well under Google Calendar's 1024-character
// limit while leaving collisions a theoretical-only concern.
const externalIdLength = 40

// ExternalID derives the remote calendar event id from a natural key. It is
// a pure function: the same key maps to the same id on every run and every
// machine, which is what makes the upsert path idempotent. The lowercase hex
// digest stays inside Google's base32hex id alphabet.
func ExternalID(naturalKey string) string {
	digest := sha256.Sum256([]byte(naturalKey))
	return hex.EncodeToString(digest[:])[:externalIdLength]
}
