package testutil

import (
	"context"
	"sync"
	"time"

	"cafe-ordering/internal/domain"
)

// EventLog is an in-memory webhook event log.
type EventLog struct {
	mu     sync.Mutex
	Events []domain.DeliveryWebhookEvent
}

func (l *EventLog) Append(_ context.Context, e *domain.DeliveryWebhookEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ex := range l.Events {
		if e.ExternalEventID != "" && ex.Company == e.Company && ex.ExternalEventID == e.ExternalEventID {
			return domain.ErrConflict
		}
	}
	l.Events = append(l.Events, *e)
	return nil
}

func (l *EventLog) Get(_ context.Context, id string) (*domain.DeliveryWebhookEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.Events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, domain.NotFound("Event", id)
}

func (l *EventLog) FindByExternal(_ context.Context, company, externalEventID string) (*domain.DeliveryWebhookEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.Events {
		if e.Company == company && e.ExternalEventID == externalEventID {
			return &e, nil
		}
	}
	return nil, domain.NotFound("Event", externalEventID)
}

func (l *EventLog) MarkProcessed(_ context.Context, id string, at time.Time) error {
	l.update(id, func(e *domain.DeliveryWebhookEvent) {
		e.Processed = true
		e.ProcessedAt = &at
		e.Error = ""
	})
	return nil
}

func (l *EventLog) MarkFailed(_ context.Context, id, reason string) error {
	l.update(id, func(e *domain.DeliveryWebhookEvent) {
		e.Processed = false
		e.ProcessedAt = nil
		e.Error = reason
	})
	return nil
}

func (l *EventLog) update(id string, fn func(*domain.DeliveryWebhookEvent)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.Events {
		if l.Events[i].ID == id {
			fn(&l.Events[i])
		}
	}
}

func (l *EventLog) All() []domain.DeliveryWebhookEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.DeliveryWebhookEvent(nil), l.Events...)
}
