package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shiftcal/shiftcal/internal/utils"
	"github.com/shiftcal/shiftcal/pkg/calendar"
	log "github.com/sirupsen/logrus"
)

// Reconciler applies the minimal create/update/delete set so that the
// managed subset of the remote calendar exactly matches the desired events.
type Reconciler struct {
	store EventStore
	clock utils.Clock
}

func NewReconciler(store EventStore, clock utils.Clock) *Reconciler {
	return &Reconciler{store: store, clock: clock}
}

// Purge deletes every managed event that has not yet started before the
// desired set is written. A delete failure other than "not found" aborts
// the pass: a skipped delete would duplicate the event on the next insert.
func (r *Reconciler) Purge(ctx context.Context) (int, error) {
	remote, err := r.store.ListFuture(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list future events: %w", err)
	}

	now := r.clock.Now()
	purged := 0
	for _, event := range remote {
		if !event.Managed {
			continue
		}
		// The listing includes events already in progress, since the remote
		// bound applies to the end time. A started shift is gone from the
		// desired set, so deleting it here would wipe it with no replacement.
		if !event.Start.After(now) {
			continue
		}
		if err := r.deleteManaged(ctx, event); err != nil {
			return purged, fmt.Errorf("failed to purge event %q: %w", event.Summary, err)
		}
		purged++
	}
	log.Infof("Purged %d managed future events", purged)
	return purged, nil
}

// deleteManaged deletes by the deterministic id derived from the stored
// natural key, falling back to the event's own remote id for events created
// before ids became deterministic.
func (r *Reconciler) deleteManaged(ctx context.Context, event RemoteEvent) error {
	if event.NaturalKey != "" {
		id := calendar.ExternalID(event.NaturalKey)
		err := r.store.Delete(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		log.Debugf("No event under deterministic id %s, deleting by remote id %s", id, event.ID)
	}
	if err := r.store.Delete(ctx, event.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

// Upsert writes each desired event under its deterministic id: update when
// the id already exists, insert otherwise. Events are processed one at a
// time; a failing event is recorded and the rest of the batch continues.
// An expired credential aborts the batch so the driver can reauthorize.
func (r *Reconciler) Upsert(ctx context.Context, desired []calendar.Event) (created, updated int, eventErrors []EventError, err error) {
	for _, event := range desired {
		remote := desiredToRemote(event)

		_, getErr := r.store.Get(ctx, remote.ID)
		switch {
		case getErr == nil:
			if updateErr := r.store.Update(ctx, remote); updateErr != nil {
				if errors.Is(updateErr, ErrAuthExpired) {
					return created, updated, eventErrors, updateErr
				}
				eventErrors = append(eventErrors, newEventError(event, updateErr))
				continue
			}
			updated++
		case errors.Is(getErr, ErrNotFound):
			if insertErr := r.store.Insert(ctx, remote); insertErr != nil {
				if errors.Is(insertErr, ErrAuthExpired) {
					return created, updated, eventErrors, insertErr
				}
				eventErrors = append(eventErrors, newEventError(event, insertErr))
				continue
			}
			created++
		case errors.Is(getErr, ErrAuthExpired):
			return created, updated, eventErrors, getErr
		default:
			eventErrors = append(eventErrors, newEventError(event, getErr))
		}
	}
	log.Infof("Upserted desired events: %d created, %d updated, %d failed", created, updated, len(eventErrors))
	return created, updated, eventErrors, nil
}

// Dedupe removes duplicate future managed events sharing a natural key. The
// keeper is the member stored under the deterministic id for that key, or
// failing that the most recently updated member. Not part of the regular
// cycle; run it as a maintenance pass.
func (r *Reconciler) Dedupe(ctx context.Context, dryRun bool) (*DedupeReport, error) {
	remote, err := r.store.ListFuture(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list future events: %w", err)
	}

	groups := make(map[string][]RemoteEvent)
	for _, event := range remote {
		if !event.Managed || event.NaturalKey == "" {
			continue
		}
		groups[event.NaturalKey] = append(groups[event.NaturalKey], event)
	}

	report := &DedupeReport{DryRun: dryRun}
	for key, group := range groups {
		if len(group) < 2 {
			continue
		}
		report.Groups++
		keeper := pickKeeper(key, group)
		for _, event := range group {
			if event.ID == keeper.ID {
				continue
			}
			if dryRun {
				log.Infof("Would delete duplicate event %s (%s)", event.ID, event.Summary)
				report.DeletedIds = append(report.DeletedIds, event.ID)
				continue
			}
			if err := r.store.Delete(ctx, event.ID); err != nil && !errors.Is(err, ErrNotFound) {
				return report, fmt.Errorf("failed to delete duplicate event %s: %w", event.ID, err)
			}
			log.Infof("Deleted duplicate event %s (%s)", event.ID, event.Summary)
			report.DeletedIds = append(report.DeletedIds, event.ID)
		}
	}
	sort.Strings(report.DeletedIds)
	return report, nil
}

func pickKeeper(naturalKey string, group []RemoteEvent) RemoteEvent {
	deterministicId := calendar.ExternalID(naturalKey)
	keeper := group[0]
	for _, event := range group {
		if event.ID == deterministicId {
			return event
		}
		if event.Updated.After(keeper.Updated) {
			keeper = event
		}
	}
	return keeper
}

func desiredToRemote(event calendar.Event) RemoteEvent {
	return RemoteEvent{
		ID:          calendar.ExternalID(event.NaturalKey),
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
		Start:       event.Start,
		End:         event.End,
		Status:      event.Status,
		Managed:     true,
		NaturalKey:  event.NaturalKey,
	}
}

func newEventError(event calendar.Event, err error) EventError {
	log.Errorf("failed to sync event %q: %v", event.Summary, err)
	return EventError{
		NaturalKey: event.NaturalKey,
		Summary:    event.Summary,
		Error:      err.Error(),
	}
}
