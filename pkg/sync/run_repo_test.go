package sync

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE sync_run
		(
			id          TEXT PRIMARY KEY,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			success     INTEGER NOT NULL,
			purged      INTEGER NOT NULL DEFAULT 0,
			created     INTEGER NOT NULL DEFAULT 0,
			updated     INTEGER NOT NULL DEFAULT 0,
			failed      INTEGER NOT NULL DEFAULT 0,
			errors      TEXT    NOT NULL DEFAULT '[]'
		)`)
	require.NoError(t, err)
	return db
}

func TestRunRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and reads back a report", func(t *testing.T) {
		repo := NewRunRepo(newTestDB(t))
		report := Report{
			RunID:      uuid.NewString(),
			StartedAt:  time.Date(2025, time.November, 23, 6, 0, 0, 0, time.UTC),
			FinishedAt: time.Date(2025, time.November, 23, 6, 1, 0, 0, time.UTC),
			Success:    true,
			Purged:     3,
			Created:    2,
			Updated:    1,
			Failed:     1,
			Errors:     []EventError{{NaturalKey: "key-a", Summary: "8am Show", Error: "rate limited"}},
		}

		require.NoError(t, repo.StoreRun(ctx, report))

		reports, err := repo.RecentRuns(ctx, 10)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		got := reports[0]
		assert.Equal(t, report.RunID, got.RunID)
		assert.True(t, got.Success)
		assert.Equal(t, 3, got.Purged)
		assert.Equal(t, report.Errors, got.Errors)
		assert.Equal(t, report.StartedAt.Unix(), got.StartedAt.Unix())
	})

	t.Run("returns newest runs first and honors the limit", func(t *testing.T) {
		repo := NewRunRepo(newTestDB(t))
		base := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			report := Report{
				RunID:      uuid.NewString(),
				StartedAt:  base.Add(time.Duration(i) * time.Hour),
				FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
				Success:    true,
			}
			require.NoError(t, repo.StoreRun(ctx, report))
		}

		reports, err := repo.RecentRuns(ctx, 2)
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.True(t, reports[0].StartedAt.After(reports[1].StartedAt))
	})
}
