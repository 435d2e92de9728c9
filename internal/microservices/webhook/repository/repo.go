package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

// EventRepositoryInterface is the append-only webhook event log.
type EventRepositoryInterface interface {
	Append(ctx context.Context, e *domain.DeliveryWebhookEvent) error
	Get(ctx context.Context, id string) (*domain.DeliveryWebhookEvent, error)
	FindByExternal(ctx context.Context, company, externalEventID string) (*domain.DeliveryWebhookEvent, error)
	MarkProcessed(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type EventRepository struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) EventRepositoryInterface {
	return &EventRepository{db: db}
}

const eventColumns = `id, company, type, COALESCE(external_event_id, ''), payload, processed, processed_at, error, received_at`

func scanEvent(row pgx.Row) (*domain.DeliveryWebhookEvent, error) {
	var e domain.DeliveryWebhookEvent
	var payload []byte
	if err := row.Scan(&e.ID, &e.Company, &e.Type, &e.ExternalEventID, &payload,
		&e.Processed, &e.ProcessedAt, &e.Error, &e.ReceivedAt); err != nil {
		return nil, err
	}
	e.Payload = payload
	return &e, nil
}

func (r *EventRepository) Append(ctx context.Context, e *domain.DeliveryWebhookEvent) error {
	var ext *string
	if e.ExternalEventID != "" {
		ext = &e.ExternalEventID
	}
	payload := []byte(e.Payload)
	if len(payload) == 0 {
		payload = []byte("null")
	}
	_, err := r.db.Exec(ctx, `
INSERT INTO delivery_webhook_events (id, company, type, external_event_id, payload, processed, error, received_at)
VALUES ($1,$2,$3,$4,$5,false,'',$6)
`, e.ID, e.Company, e.Type, ext, payload, e.ReceivedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("webhook event %s/%s: %w", e.Company, e.ExternalEventID, domain.ErrConflict)
	}
	return err
}

func (r *EventRepository) Get(ctx context.Context, id string) (*domain.DeliveryWebhookEvent, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `SELECT `+eventColumns+` FROM delivery_webhook_events WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Event", id)
	}
	return e, err
}

func (r *EventRepository) FindByExternal(ctx context.Context, company, externalEventID string) (*domain.DeliveryWebhookEvent, error) {
	e, err := scanEvent(r.db.QueryRow(ctx, `
SELECT `+eventColumns+` FROM delivery_webhook_events
WHERE company=$1 AND external_event_id=$2
`, company, externalEventID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Event", externalEventID)
	}
	return e, err
}

func (r *EventRepository) MarkProcessed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE delivery_webhook_events SET processed=true, processed_at=$2, error='' WHERE id=$1`, id, at)
	return err
}

func (r *EventRepository) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := r.db.Exec(ctx, `UPDATE delivery_webhook_events SET processed=false, processed_at=NULL, error=$2 WHERE id=$1`, id, reason)
	return err
}
