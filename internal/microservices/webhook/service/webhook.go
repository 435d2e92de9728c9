package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/delivery/companies"
	notify "cafe-ordering/internal/microservices/notificator/service"
	orders "cafe-ordering/internal/microservices/order/repository"
	lifecycle "cafe-ordering/internal/microservices/order/service"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
	"cafe-ordering/internal/microservices/webhook/repository"
)

const lockTTL = 30 * time.Second

func LockKey(company, externalEventID string) string {
	return "lock:webhook:" + company + ":" + externalEventID
}

type IngestResult struct {
	EventID   string `json:"eventId"`
	Duplicate bool   `json:"duplicate"`
}

// ProcessingError is a handler failure for an event that was already logged.
type ProcessingError struct {
	EventID string
	Err     error
}

func (e *ProcessingError) Error() string { return e.Err.Error() }
func (e *ProcessingError) Unwrap() error { return e.Err }

type WebhookServiceInterface interface {
	Ingest(ctx context.Context, company, externalEventID, eventType string, data json.RawMessage) (*IngestResult, error)
}

type WebhookService struct {
	events    repository.EventRepositoryInterface
	orders    orders.OrderRepositoryInterface
	lifecycle lifecycle.OrderServiceInterface
	tenants   tenants.TenantRepositoryInterface
	companies companies.RegistryInterface
	notifier  notify.DispatcherInterface
	locker    lifecycle.Locker
	lg        *logger.Logger
	now       func() time.Time
}

func NewWebhookService(
	events repository.EventRepositoryInterface,
	orderRepo orders.OrderRepositoryInterface,
	orderService lifecycle.OrderServiceInterface,
	tenantRepo tenants.TenantRepositoryInterface,
	registry companies.RegistryInterface,
	notifier notify.DispatcherInterface,
	locker lifecycle.Locker,
	lg *logger.Logger,
) *WebhookService {
	return &WebhookService{
		events:    events,
		orders:    orderRepo,
		lifecycle: orderService,
		tenants:   tenantRepo,
		companies: registry,
		notifier:  notifier,
		locker:    locker,
		lg:        lg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ingest logs the event, runs its handler and records the outcome.
// Events carrying an external id are processed at most once.
func (s *WebhookService) Ingest(ctx context.Context, company, externalEventID, eventType string, data json.RawMessage) (*IngestResult, error) {
	var missing []string
	if company == "" {
		missing = append(missing, "company")
	}
	if eventType == "" {
		missing = append(missing, "type")
	}
	if len(data) == 0 || string(data) == "null" {
		missing = append(missing, "data")
	}
	if len(missing) > 0 {
		return nil, domain.Missing(missing...)
	}

	var ev *domain.DeliveryWebhookEvent
	if externalEventID != "" {
		release, err := s.locker.Acquire(ctx, LockKey(company, externalEventID), lockTTL)
		if err != nil {
			return nil, err
		}
		defer release()

		existing, err := s.events.FindByExternal(ctx, company, externalEventID)
		switch {
		case err == nil && existing.Processed:
			s.lg.Info("webhook_duplicate", map[string]any{"company": company, "event_id": existing.ID, "external_event_id": externalEventID})
			return &IngestResult{EventID: existing.ID, Duplicate: true}, nil
		case err == nil:
			ev = existing
		case !domain.IsNotFound(err):
			return nil, err
		}
	}

	if ev == nil {
		ev = &domain.DeliveryWebhookEvent{
			ID:              uuid.NewString(),
			Company:         company,
			Type:            eventType,
			ExternalEventID: externalEventID,
			Payload:         data,
			ReceivedAt:      s.now(),
		}
		if err := s.events.Append(ctx, ev); err != nil {
			return nil, fmt.Errorf("append webhook event: %w", err)
		}
	}
	res := &IngestResult{EventID: ev.ID}
	fields := map[string]any{"company": company, "type": eventType, "event_id": ev.ID}

	if err := s.handle(ctx, company, eventType, data); err != nil {
		if merr := s.events.MarkFailed(ctx, ev.ID, err.Error()); merr != nil {
			s.lg.Error("webhook_mark_failed_failed", merr, fields)
		}
		s.lg.Error("webhook_processing_failed", err, fields)
		return res, &ProcessingError{EventID: ev.ID, Err: err}
	}
	if err := s.events.MarkProcessed(ctx, ev.ID, s.now()); err != nil {
		s.lg.Error("webhook_mark_processed_failed", err, fields)
		return nil, err
	}
	s.lg.Info("webhook_processed", fields)
	return res, nil
}

func (s *WebhookService) handle(ctx context.Context, company, eventType string, data json.RawMessage) error {
	switch eventType {
	case EventOrderPlaced:
		return s.orderPlaced(ctx, company, data)
	case EventOrderCancelled:
		return s.orderCancelled(ctx, company, data)
	case EventPaymentConfirmed:
		return s.paymentConfirmed(ctx, company, data)
	case EventDeliveryAssigned:
		return s.deliveryAssigned(ctx, company, data)
	default:
		return fmt.Errorf("Unsupported event type: %s", eventType)
	}
}

func decode(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return &domain.ValidationError{Message: "Invalid event data: " + err.Error()}
	}
	return nil
}

func changedBy(company string) string { return "webhook:" + company }

func (s *WebhookService) orderPlaced(ctx context.Context, company string, data json.RawMessage) error {
	var p orderPlaced
	if err := decode(data, &p); err != nil {
		return err
	}
	if field := p.missing(); field != "" {
		return domain.Missing(field)
	}
	if _, err := s.companies.Get(company); err != nil {
		return err
	}
	tenant, err := s.tenants.Get(ctx, p.RestaurantID)
	if err != nil {
		return err
	}

	if existing, err := s.orders.FindByDelivery(ctx, company, p.OrderID); err == nil {
		s.lg.Info("delivery_order_exists", map[string]any{"order_id": existing.ID, "company": company, "external_order_id": p.OrderID})
		return nil
	} else if !domain.IsNotFound(err) {
		return err
	}

	items, itemsTotal, err := domain.BuildItems(p.Items)
	if err != nil {
		return err
	}
	subtotal := domain.RoundMoney(*p.Subtotal)
	if subtotal == 0 {
		subtotal = itemsTotal
	}
	total := domain.RoundMoney(p.Total)
	if total == 0 {
		total = subtotal
	}

	now := s.now()
	o := &domain.Order{
		ID:            uuid.NewString(),
		TenantID:      tenant.ID,
		Source:        domain.SourceDelivery,
		CustomerName:  p.Customer.Name,
		CustomerPhone: p.Customer.Phone,
		Items:         items,
		Subtotal:      subtotal,
		Total:         total,
		Status:        domain.StatusPending,
		PaymentStatus: domain.PaymentUnpaid,
		Notes:         p.Notes,
		DeliveryInfo: &domain.DeliveryInfo{
			Company: company,
			OrderID: p.OrderID,
			Address: p.Customer.Address,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.StampStatus(domain.StatusPending, now)
	if err := s.orders.Create(ctx, o, changedBy(company)); err != nil {
		return err
	}
	s.lg.Info("delivery_order_created", map[string]any{"order_id": o.ID, "tenant_id": o.TenantID, "company": company, "external_order_id": p.OrderID})

	accepted := false
	if integration, ok := tenant.DeliveryIntegrations[company]; ok && integration.AutoAcceptOrders {
		prep := tenant.PrepTimeFor(company)
		res, err := s.lifecycle.UpdateStatus(ctx, o.ID, "accepted", prep, company)
		if err != nil {
			// заказ остаётся pending, кассир примет вручную
			s.lg.Error("delivery_auto_accept_failed", err, map[string]any{"order_id": o.ID, "company": company})
		} else {
			accepted = true
			o.Status = res.Status
			o.EstimatedPrepTime = res.EstimatedTime
		}
	}

	// принятый автоматически заказ приходит кассиру без кнопок
	s.notifier.Notify(ctx, tenant.ID, domain.RoleCashier, notify.KindNewOrder, notify.Payload{
		TenantName:    tenant.BusinessName,
		Currency:      tenant.Currency,
		Order:         o,
		Informational: accepted,
	})
	return nil
}

func (s *WebhookService) orderCancelled(ctx context.Context, company string, data json.RawMessage) error {
	var p orderRef
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.OrderID == "" {
		return domain.Missing("orderId")
	}
	o, err := s.orders.FindByDelivery(ctx, company, p.OrderID)
	if err != nil {
		return err
	}
	o, err = s.lifecycle.SetStatus(ctx, o.ID, domain.StatusCancelled, changedBy(company), p.Reason)
	if err != nil {
		return err
	}
	s.notifier.Notify(ctx, o.TenantID, domain.RoleCashier, notify.KindCancellation, notify.Payload{Order: o, Reason: p.Reason})
	return nil
}

func (s *WebhookService) paymentConfirmed(ctx context.Context, company string, data json.RawMessage) error {
	var p orderRef
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.OrderID == "" {
		return domain.Missing("orderId")
	}
	o, err := s.orders.FindByDelivery(ctx, company, p.OrderID)
	if domain.IsNotFound(err) {
		s.lg.Info("webhook_order_absent", map[string]any{"company": company, "external_order_id": p.OrderID, "type": EventPaymentConfirmed})
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.lifecycle.MarkPaid(ctx, o.ID)
	return err
}

func (s *WebhookService) deliveryAssigned(ctx context.Context, company string, data json.RawMessage) error {
	var p driverAssigned
	if err := decode(data, &p); err != nil {
		return err
	}
	if p.OrderID == "" {
		return domain.Missing("orderId")
	}
	o, err := s.orders.FindByDelivery(ctx, company, p.OrderID)
	if domain.IsNotFound(err) {
		s.lg.Info("webhook_order_absent", map[string]any{"company": company, "external_order_id": p.OrderID, "type": EventDeliveryAssigned})
		return nil
	}
	if err != nil {
		return err
	}
	if p.Driver.Name == "" {
		return domain.Missing("driver.name")
	}
	o, err = s.lifecycle.AssignDriver(ctx, o.ID, domain.DriverInfo{
		Name:    p.Driver.Name,
		Phone:   p.Driver.Phone,
		Vehicle: p.Driver.Vehicle,
		ETA:     p.Driver.ETA,
	})
	if err != nil {
		return err
	}
	s.notifier.Notify(ctx, o.TenantID, domain.RoleCashier, notify.KindDriverAssigned, notify.Payload{Order: o})
	return nil
}

// IsProcessingError reports whether err came from an event handler rather than the ingester itself.
func IsProcessingError(err error) (*ProcessingError, bool) {
	var perr *ProcessingError
	ok := errors.As(err, &perr)
	return perr, ok
}
