package schedule

import (
	"testing"
	"time"

	"github.com/shiftcal/shiftcal/internal/utils"
	"github.com/shiftcal/shiftcal/pkg/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRow(overrides map[int]string) scraper.RawRow {
	row := scraper.RawRow{
		"11/23/2025",      // date
		"08:00",           // call time
		"Holiday Concert", // show
		"Fox Theatre",     // venue
		"Atlanta, GA",     // location
		"Encore",          // client
		"Corporate",       // type
		"Stagehand",       // position
		"Load in dock B",  // details
		"Confirmed",       // status
		"Bring gloves",    // notes
		"",                // call cancelled cell
	}
	for i, v := range overrides {
		row[i] = v
	}
	return row
}

func newTestNormalizer(t *testing.T, now time.Time) *Normalizer {
	t.Helper()
	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return NewNormalizer(location, &utils.MockClock{FixedNow: now})
}

func TestNormalize(t *testing.T) {
	now := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)

	t.Run("parses a well-formed future row", func(t *testing.T) {
		n := newTestNormalizer(t, now)

		entries := n.Normalize([]scraper.RawRow{testRow(nil)})

		require.Len(t, entries, 1)
		entry := entries[0]
		assert.Equal(t, "Holiday Concert", entry.Show)
		assert.Equal(t, "11/23/2025", entry.RawDate)
		assert.Equal(t, "08:00", entry.RawTime)
		assert.Equal(t, 2025, entry.CallTime.Year())
		assert.Equal(t, time.November, entry.CallTime.Month())
		assert.Equal(t, 23, entry.CallTime.Day())
		assert.Equal(t, 8, entry.CallTime.Hour())
		assert.Equal(t, 0, entry.CallTime.Minute())
		assert.False(t, entry.CallCancelled)
	})

	t.Run("drops rows with fewer than 12 cells", func(t *testing.T) {
		n := newTestNormalizer(t, now)

		short := scraper.RawRow{"11/23/2025", "08:00", "Show"}
		entries := n.Normalize([]scraper.RawRow{short})

		assert.Empty(t, entries)
	})

	t.Run("drops rows with unparseable date or time", func(t *testing.T) {
		n := newTestNormalizer(t, now)

		entries := n.Normalize([]scraper.RawRow{
			testRow(map[int]string{0: "Sunday"}),
			testRow(map[int]string{1: "8 o'clock"}),
			testRow(map[int]string{0: ""}),
		})

		assert.Empty(t, entries)
	})

	t.Run("drops entries marked by the cancellation cell", func(t *testing.T) {
		n := newTestNormalizer(t, now)

		entries := n.Normalize([]scraper.RawRow{
			testRow(map[int]string{11: "Call Cancelled"}),
			testRow(map[int]string{11: "CALL CANCELLED"}),
		})

		assert.Empty(t, entries)
	})

	t.Run("drops entries with cancelled marker in show name", func(t *testing.T) {
		n := newTestNormalizer(t, now)

		entries := n.Normalize([]scraper.RawRow{
			testRow(map[int]string{2: "CANCELLED (C) GHSA CHAMPIONSHIP"}),
			testRow(map[int]string{2: "cancelled - private event"}),
		})

		assert.Empty(t, entries)
	})

	t.Run("drops entries with called out status", func(t *testing.T) {
		n := newTestNormalizer(t, now)

		entries := n.Normalize([]scraper.RawRow{
			testRow(map[int]string{9: "Called Out"}),
			testRow(map[int]string{9: "CALLED OUT - sick"}),
		})

		assert.Empty(t, entries)
	})

	t.Run("keeps only strictly future entries", func(t *testing.T) {
		location, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)
		// Exactly the call time of the test row.
		atCallTime := time.Date(2025, time.November, 23, 8, 0, 0, 0, location)
		n := newTestNormalizer(t, atCallTime)

		entries := n.Normalize([]scraper.RawRow{
			testRow(nil), // at "now", not strictly after
			testRow(map[int]string{0: "11/22/2025"}),
			testRow(map[int]string{1: "08:01"}),
		})

		require.Len(t, entries, 1)
		assert.Equal(t, "08:01", entries[0].RawTime)
	})

	t.Run("accepts unpadded dates", func(t *testing.T) {
		n := newTestNormalizer(t, now)

		entries := n.Normalize([]scraper.RawRow{
			testRow(map[int]string{0: "1/5/2026"}),
		})

		require.Len(t, entries, 1)
		assert.Equal(t, time.January, entries[0].CallTime.Month())
		assert.Equal(t, 5, entries[0].CallTime.Day())
	})
}
