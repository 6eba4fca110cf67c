package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shiftcal/shiftcal/internal/utils"
	"github.com/shiftcal/shiftcal/pkg/calendar"
	"github.com/shiftcal/shiftcal/pkg/schedule"
	"github.com/shiftcal/shiftcal/pkg/scraper"
	log "github.com/sirupsen/logrus"
)

// Reauthorizer re-runs the interactive Google authorization flow after the
// cached credential has expired.
type Reauthorizer interface {
	Reauthorize(ctx context.Context) error
}

type Service interface {
	Run(ctx context.Context) (*Report, error)
	Dedupe(ctx context.Context, dryRun bool) (*DedupeReport, error)
	RecentRuns(ctx context.Context, limit int) ([]Report, error)
}

// ServiceImpl drives one full scrape-and-reconcile cycle. Recurring
// execution is an external concern; the service itself never loops.
type ServiceImpl struct {
	extractor   scraper.Extractor
	normalizer  *schedule.Normalizer
	reconciler  *Reconciler
	reauth      Reauthorizer
	runs        RunRepository
	clock       utils.Clock
	interactive bool
}

func NewService(extractor scraper.Extractor, normalizer *schedule.Normalizer, reconciler *Reconciler,
	reauth Reauthorizer, runs RunRepository, interactive bool) *ServiceImpl {
	return &ServiceImpl{
		extractor:   extractor,
		normalizer:  normalizer,
		reconciler:  reconciler,
		reauth:      reauth,
		runs:        runs,
		clock:       utils.SystemClock{},
		interactive: interactive,
	}
}

// Run executes the pipeline once: scrape, normalize, map, purge, upsert.
// The report is persisted whether or not the run succeeded.
func (s *ServiceImpl) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: s.clock.Now(),
	}
	log.Infof("Starting sync run %s", report.RunID)

	err := s.run(ctx, report)
	report.FinishedAt = s.clock.Now()
	report.Success = err == nil

	if s.runs != nil {
		if storeErr := s.runs.StoreRun(ctx, *report); storeErr != nil {
			log.Errorf("failed to store run report: %v", storeErr)
		}
	}

	if err != nil {
		log.Errorf("Sync run %s failed: %v", report.RunID, err)
		return report, err
	}
	log.Infof("Sync run %s finished: %d purged, %d created, %d updated, %d failed",
		report.RunID, report.Purged, report.Created, report.Updated, report.Failed)
	return report, nil
}

func (s *ServiceImpl) run(ctx context.Context, report *Report) error {
	rows, err := s.extractor.Rows(ctx)
	if err != nil {
		return fmt.Errorf("failed to scrape schedule: %w", err)
	}

	entries := s.normalizer.Normalize(rows)
	desired := calendar.ToEvents(entries)

	err = s.withReauth(ctx, func() error {
		purged, purgeErr := s.reconciler.Purge(ctx)
		report.Purged = purged
		return purgeErr
	})
	if err != nil {
		return err
	}

	return s.withReauth(ctx, func() error {
		created, updated, eventErrors, upsertErr := s.reconciler.Upsert(ctx, desired)
		report.Created = created
		report.Updated = updated
		report.Failed = len(eventErrors)
		report.Errors = eventErrors
		return upsertErr
	})
}

// Dedupe runs the duplicate cleanup maintenance pass.
func (s *ServiceImpl) Dedupe(ctx context.Context, dryRun bool) (*DedupeReport, error) {
	var report *DedupeReport
	err := s.withReauth(ctx, func() error {
		var dedupeErr error
		report, dedupeErr = s.reconciler.Dedupe(ctx, dryRun)
		return dedupeErr
	})
	return report, err
}

func (s *ServiceImpl) RecentRuns(ctx context.Context, limit int) ([]Report, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.RecentRuns(ctx, limit)
}

// withReauth retries an operation exactly once after refreshing expired
// credentials. Without an interactive context there is no way to recover, so
// the failure is returned with an actionable message.
func (s *ServiceImpl) withReauth(ctx context.Context, op func() error) error {
	err := op()
	if err == nil || !errors.Is(err, ErrAuthExpired) {
		return err
	}
	if !s.interactive {
		return fmt.Errorf("google credentials expired and interactive authorization is disabled; "+
			"run `shiftcal sync` locally with sync.interactive enabled to refresh them: %w", err)
	}
	log.Warn("Google credentials expired, re-running authorization flow")
	if reauthErr := s.reauth.Reauthorize(ctx); reauthErr != nil {
		return fmt.Errorf("failed to reauthorize: %w", reauthErr)
	}
	return op()
}
