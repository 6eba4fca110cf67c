package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalID(t *testing.T) {
	key := "11/23/2025 | 08:00 | Holiday Concert | Fox Theatre | Stagehand | Corporate"

	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, ExternalID(key), ExternalID(key))
	})

	t.Run("is stable across releases", func(t *testing.T) {
		// Pinned digest: ids already written to remote calendars depend on
		// this value never changing.
		assert.Equal(t, "b8014008d824d73f97353d79caf9c115c52ec6a9", ExternalID(key))
	})

	t.Run("differs for different keys", func(t *testing.T) {
		assert.NotEqual(t, ExternalID(key), ExternalID(key+"x"))
	})

	t.Run("fits the remote id constraints", func(t *testing.T) {
		id := ExternalID(key)
		assert.Len(t, id, 40)
		for _, r := range id {
			valid := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'v')
			assert.True(t, valid, "character %q outside base32hex alphabet", r)
		}
	})
}
