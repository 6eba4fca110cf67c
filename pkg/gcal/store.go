package gcal

import (
	"context"
	"time"

	"github.com/shiftcal/shiftcal/internal/config"
	"github.com/shiftcal/shiftcal/internal/utils"
	"github.com/shiftcal/shiftcal/pkg/sync"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	gcal "google.golang.org/api/calendar/v3"
)

// Extended private properties marking events owned by this system.
const (
	managedProp = "shiftcalManaged"
	keyProp     = "shiftcalKey"
)

// localTimeLayout is a naive local timestamp; the remote calendar interprets
// it in the named timezone sent alongside.
const localTimeLayout = "2006-01-02T15:04:05"

// Conservative defaults, well below Google's per-user Calendar quota.
const (
	requestsPerSecond = 5
	burstSize         = 10
)

// Store implements sync.EventStore on a Google Calendar. All calls go
// through a token-bucket rate limiter and are issued strictly serially by
// the reconciler, which keeps the write pattern gentle on quotas.
type Store struct {
	auth       *Authenticator
	calendarId string
	timezone   string
	limiter    *rate.Limiter
	clock      utils.Clock
}

func NewStore(auth *Authenticator, cfg config.Application, clock utils.Clock) *Store {
	return &Store{
		auth:       auth,
		calendarId: cfg.Google.CalendarId,
		timezone:   cfg.Sync.Timezone,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
		clock:      clock,
	}
}

func (s *Store) Get(ctx context.Context, id string) (*sync.RemoteEvent, error) {
	service, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}
	googleEvent, err := service.Events.Get(s.calendarId, id).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr(err)
	}
	// A deleted event lingers as a cancelled remnant that keeps its id
	// reserved, so inserting under that id would fail. It is still reported
	// as found here; the full-overwrite update restores it in place.
	remote := toRemoteEvent(googleEvent)
	return &remote, nil
}

func (s *Store) Insert(ctx context.Context, event sync.RemoteEvent) error {
	service, err := s.prepare(ctx)
	if err != nil {
		return err
	}
	// The deterministic id travels in the request body; the API accepts
	// client-assigned ids on insert.
	if _, err := service.Events.Insert(s.calendarId, s.toGoogleEvent(event)).Context(ctx).Do(); err != nil {
		return wrapErr(err)
	}
	log.Debugf("Inserted event %s (%s)", event.ID, event.Summary)
	return nil
}

func (s *Store) Update(ctx context.Context, event sync.RemoteEvent) error {
	service, err := s.prepare(ctx)
	if err != nil {
		return err
	}
	if _, err := service.Events.Update(s.calendarId, event.ID, s.toGoogleEvent(event)).Context(ctx).Do(); err != nil {
		return wrapErr(err)
	}
	log.Debugf("Updated event %s (%s)", event.ID, event.Summary)
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	service, err := s.prepare(ctx)
	if err != nil {
		return err
	}
	if err := service.Events.Delete(s.calendarId, id).Context(ctx).Do(); err != nil {
		return wrapErr(err)
	}
	log.Debugf("Deleted event %s", id)
	return nil
}

func (s *Store) ListFuture(ctx context.Context) ([]sync.RemoteEvent, error) {
	service, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	var events []sync.RemoteEvent
	call := service.Events.List(s.calendarId).
		TimeMin(s.clock.Now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime")
	err = call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			events = append(events, toRemoteEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return events, nil
}

// prepare borrows an authorized service and reserves rate-limit budget for
// one call.
func (s *Store) prepare(ctx context.Context) (*gcal.Service, error) {
	service, err := s.auth.Service(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *Store) toGoogleEvent(event sync.RemoteEvent) *gcal.Event {
	return &gcal.Event{
		Id:          event.ID,
		Summary:     event.Summary,
		Location:    event.Location,
		Description: event.Description,
		Status:      event.Status,
		Start: &gcal.EventDateTime{
			DateTime: event.Start.Format(localTimeLayout),
			TimeZone: s.timezone,
		},
		End: &gcal.EventDateTime{
			DateTime: event.End.Format(localTimeLayout),
			TimeZone: s.timezone,
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{
				managedProp: "true",
				keyProp:     event.NaturalKey,
			},
		},
	}
}

func toRemoteEvent(item *gcal.Event) sync.RemoteEvent {
	event := sync.RemoteEvent{
		ID:          item.Id,
		Summary:     item.Summary,
		Location:    item.Location,
		Description: item.Description,
		Status:      item.Status,
	}
	if item.Start != nil {
		event.Start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
	}
	if item.End != nil {
		event.End, _ = time.Parse(time.RFC3339, item.End.DateTime)
	}
	if item.Updated != "" {
		event.Updated, _ = time.Parse(time.RFC3339, item.Updated)
	}
	if item.ExtendedProperties != nil {
		event.Managed = item.ExtendedProperties.Private[managedProp] == "true"
		event.NaturalKey = item.ExtendedProperties.Private[keyProp]
	}
	return event
}
