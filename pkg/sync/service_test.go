package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shiftcal/shiftcal/internal/utils"
	"github.com/shiftcal/shiftcal/pkg/calendar"
	"github.com/shiftcal/shiftcal/pkg/schedule"
	"github.com/shiftcal/shiftcal/pkg/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	rows []scraper.RawRow
	err  error
}

func (s *stubExtractor) Rows(ctx context.Context) ([]scraper.RawRow, error) {
	return s.rows, s.err
}

type stubReauthorizer struct {
	calls         int
	err           error
	onReauthorize func()
}

func (s *stubReauthorizer) Reauthorize(ctx context.Context) error {
	s.calls++
	if s.onReauthorize != nil {
		s.onReauthorize()
	}
	return s.err
}

type stubRunRepo struct {
	stored []Report
}

func (s *stubRunRepo) StoreRun(ctx context.Context, report Report) error {
	s.stored = append(s.stored, report)
	return nil
}

func (s *stubRunRepo) RecentRuns(ctx context.Context, limit int) ([]Report, error) {
	if limit > len(s.stored) {
		limit = len(s.stored)
	}
	return s.stored[:limit], nil
}

func futureRow() scraper.RawRow {
	return scraper.RawRow{
		"11/23/2025", "08:00", "Holiday Concert", "Fox Theatre", "Atlanta, GA",
		"Encore", "Corporate", "Stagehand", "Load in dock B", "Confirmed", "", "",
	}
}

func newTestService(t *testing.T, extractor scraper.Extractor, store EventStore,
	reauth Reauthorizer, runs RunRepository, interactive bool) *ServiceImpl {
	t.Helper()
	location, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2025, time.November, 1, 12, 0, 0, 0, time.UTC)
	clock := &utils.MockClock{FixedNow: now}
	service := NewService(extractor, schedule.NewNormalizer(location, clock),
		NewReconciler(store, clock), reauth, runs, interactive)
	service.clock = clock
	return service
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("purges stale managed events and inserts the desired set", func(t *testing.T) {
		store := NewStubEventStore()
		staleId := calendar.ExternalID("stale-key")
		store.Events[staleId] = RemoteEvent{
			ID: staleId, Managed: true, NaturalKey: "stale-key",
			Start: time.Date(2025, time.November, 20, 7, 30, 0, 0, time.UTC),
		}
		store.Events["foreign"] = RemoteEvent{ID: "foreign"}
		runs := &stubRunRepo{}
		service := newTestService(t, &stubExtractor{rows: []scraper.RawRow{futureRow()}}, store, &stubReauthorizer{}, runs, true)

		report, err := service.Run(ctx)

		require.NoError(t, err)
		assert.True(t, report.Success)
		assert.Equal(t, 1, report.Purged)
		assert.Equal(t, 1, report.Created)
		assert.Equal(t, 0, report.Failed)
		assert.NotContains(t, store.Events, staleId)
		assert.Contains(t, store.Events, "foreign")
		assert.Len(t, store.Events, 2)

		require.Len(t, runs.stored, 1)
		assert.Equal(t, report.RunID, runs.stored[0].RunID)
	})

	t.Run("a scrape failure is fatal and still recorded", func(t *testing.T) {
		store := NewStubEventStore()
		runs := &stubRunRepo{}
		service := newTestService(t, &stubExtractor{err: errors.New("selector not found")}, store, &stubReauthorizer{}, runs, true)

		report, err := service.Run(ctx)

		require.Error(t, err)
		assert.False(t, report.Success)
		require.Len(t, runs.stored, 1)
		assert.False(t, runs.stored[0].Success)
	})

	t.Run("expired credentials trigger one reauthorization and retry", func(t *testing.T) {
		store := NewStubEventStore()
		store.ListErr = ErrAuthExpired
		reauth := &stubReauthorizer{}
		reauth.onReauthorize = func() { store.ListErr = nil }
		service := newTestService(t, &stubExtractor{rows: []scraper.RawRow{futureRow()}}, store, reauth, &stubRunRepo{}, true)

		report, err := service.Run(ctx)

		require.NoError(t, err)
		assert.True(t, report.Success)
		assert.Equal(t, 1, reauth.calls)
		assert.Equal(t, 1, report.Created)
	})

	t.Run("expired credentials are fatal without an interactive context", func(t *testing.T) {
		store := NewStubEventStore()
		store.ListErr = ErrAuthExpired
		reauth := &stubReauthorizer{}
		service := newTestService(t, &stubExtractor{rows: []scraper.RawRow{futureRow()}}, store, reauth, &stubRunRepo{}, false)

		_, err := service.Run(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAuthExpired)
		assert.Contains(t, err.Error(), "interactive authorization is disabled")
		assert.Equal(t, 0, reauth.calls)
	})

	t.Run("a failed reauthorization is not retried again", func(t *testing.T) {
		store := NewStubEventStore()
		store.ListErr = ErrAuthExpired
		reauth := &stubReauthorizer{err: errors.New("user abandoned consent flow")}
		service := newTestService(t, &stubExtractor{rows: []scraper.RawRow{futureRow()}}, store, reauth, &stubRunRepo{}, true)

		_, err := service.Run(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to reauthorize")
		assert.Equal(t, 1, reauth.calls)
	})
}

func TestServiceDedupe(t *testing.T) {
	ctx := context.Background()

	t.Run("delegates to the reconciler", func(t *testing.T) {
		store := NewStubEventStore()
		deterministicId := calendar.ExternalID("key-a")
		store.Events[deterministicId] = RemoteEvent{ID: deterministicId, Managed: true, NaturalKey: "key-a"}
		store.Events["legacy-dup"] = RemoteEvent{ID: "legacy-dup", Managed: true, NaturalKey: "key-a"}
		service := newTestService(t, &stubExtractor{}, store, &stubReauthorizer{}, &stubRunRepo{}, true)

		report, err := service.Dedupe(ctx, false)

		require.NoError(t, err)
		assert.Equal(t, []string{"legacy-dup"}, report.DeletedIds)
	})
}
