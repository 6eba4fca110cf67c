package sync

import (
	"context"
	"sort"
)

// StubEventStore is an in-memory EventStore used by reconciler and driver
// tests. Errors can be injected per operation and per id.
type StubEventStore struct {
	Events map[string]RemoteEvent

	GetErrs    map[string]error
	InsertErr  error
	UpdateErr  error
	DeleteErrs map[string]error
	ListErr    error

	Inserted []string
	Updated  []string
	Deleted  []string
}

func NewStubEventStore() *StubEventStore {
	return &StubEventStore{
		Events:     map[string]RemoteEvent{},
		GetErrs:    map[string]error{},
		DeleteErrs: map[string]error{},
	}
}

func (s *StubEventStore) Get(ctx context.Context, id string) (*RemoteEvent, error) {
	if err, ok := s.GetErrs[id]; ok {
		return nil, err
	}
	event, ok := s.Events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (s *StubEventStore) Insert(ctx context.Context, event RemoteEvent) error {
	if s.InsertErr != nil {
		return s.InsertErr
	}
	s.Events[event.ID] = event
	s.Inserted = append(s.Inserted, event.ID)
	return nil
}

func (s *StubEventStore) Update(ctx context.Context, event RemoteEvent) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.Events[event.ID]; !ok {
		return ErrNotFound
	}
	s.Events[event.ID] = event
	s.Updated = append(s.Updated, event.ID)
	return nil
}

func (s *StubEventStore) Delete(ctx context.Context, id string) error {
	if err, ok := s.DeleteErrs[id]; ok {
		return err
	}
	if _, ok := s.Events[id]; !ok {
		return ErrNotFound
	}
	delete(s.Events, id)
	s.Deleted = append(s.Deleted, id)
	return nil
}

func (s *StubEventStore) ListFuture(ctx context.Context) ([]RemoteEvent, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	events := make([]RemoteEvent, 0, len(s.Events))
	for _, event := range s.Events {
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].ID < events[j].ID
	})
	return events, nil
}
