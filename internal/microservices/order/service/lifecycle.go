package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/connections/rabbitmq"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/delivery/companies"
	"cafe-ordering/internal/microservices/order/repository"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

const (
	lockTTL = 30 * time.Second

	ChangedByDeliveryAPI = "delivery-api"
	ChangedByTelegram    = "telegram"
)

func OrderLockKey(orderID string) string { return "lock:order:" + orderID }

type StatusUpdateResult struct {
	OrderID        string             `json:"orderId"`
	Status         domain.OrderStatus `json:"status"`
	ExternalStatus string             `json:"externalStatus"`
	Company        string             `json:"company"`
	EstimatedTime  int                `json:"estimatedTime,omitempty"`
}

type OrderServiceInterface interface {
	UpdateStatus(ctx context.Context, orderID, newStatus string, estimatedTime int, companyID string) (*StatusUpdateResult, error)
	AcceptDelivery(ctx context.Context, orderID, changedBy string) (*StatusUpdateResult, error)
	RejectDelivery(ctx context.Context, orderID, changedBy string) (*StatusUpdateResult, error)
	SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, changedBy, reason string) (*domain.Order, error)
	// MarkReady reports delivery orders to their platform; table orders change locally.
	MarkReady(ctx context.Context, orderID, changedBy string) (*domain.Order, error)
	MarkPaid(ctx context.Context, orderID string) (*domain.Order, error)
	AssignDriver(ctx context.Context, orderID string, driver domain.DriverInfo) (*domain.Order, error)
}

type OrderService struct {
	orders    repository.OrderRepositoryInterface
	tenants   tenants.TenantRepositoryInterface
	companies companies.RegistryInterface
	locker    Locker
	publisher Publisher
	lg        *logger.Logger
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepositoryInterface,
	tenantRepo tenants.TenantRepositoryInterface,
	registry companies.RegistryInterface,
	locker Locker,
	publisher Publisher,
	lg *logger.Logger,
) *OrderService {
	return &OrderService{
		orders:    orders,
		tenants:   tenantRepo,
		companies: registry,
		locker:    locker,
		publisher: publisher,
		lg:        lg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// UpdateStatus pushes the status to the originating platform first and persists it only on success.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, newStatus string, estimatedTime int, companyID string) (*StatusUpdateResult, error) {
	return s.updateStatus(ctx, orderID, newStatus, estimatedTime, companyID, ChangedByDeliveryAPI, "")
}

// AcceptDelivery and RejectDelivery answer a new platform order; both need it still pending.
func (s *OrderService) AcceptDelivery(ctx context.Context, orderID, changedBy string) (*StatusUpdateResult, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.DeliveryInfo == nil {
		return nil, fmt.Errorf("order %s has no delivery info: %w", orderID, domain.ErrInvalidState)
	}
	if o.Status != domain.StatusPending {
		return nil, fmt.Errorf("order %s is already %s: %w", orderID, o.Status, domain.ErrInvalidState)
	}
	prep := domain.DefaultPrepTime
	if t, err := s.tenants.Get(ctx, o.TenantID); err == nil {
		prep = t.PrepTimeFor(o.DeliveryInfo.Company)
	}
	return s.updateStatus(ctx, orderID, "accepted", prep, "", changedBy, domain.StatusPending)
}

func (s *OrderService) RejectDelivery(ctx context.Context, orderID, changedBy string) (*StatusUpdateResult, error) {
	return s.updateStatus(ctx, orderID, "cancelled", 0, "", changedBy, domain.StatusPending)
}

func (s *OrderService) MarkReady(ctx context.Context, orderID, changedBy string) (*domain.Order, error) {
	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.DeliveryInfo == nil {
		return s.SetStatus(ctx, orderID, domain.StatusReady, changedBy, "")
	}
	if _, err := s.updateStatus(ctx, orderID, string(domain.StatusReady), 0, "", changedBy, ""); err != nil {
		return nil, err
	}
	return s.orders.Get(ctx, orderID)
}

// updateStatus: пустой from означает любой открытый статус.
func (s *OrderService) updateStatus(ctx context.Context, orderID, newStatus string, eta int, companyID, changedBy string, from domain.OrderStatus) (*StatusUpdateResult, error) {
	var missing []string
	if orderID == "" {
		missing = append(missing, "orderId")
	}
	if newStatus == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		return nil, domain.Missing(missing...)
	}
	if eta < 0 {
		return nil, &domain.ValidationError{Message: "estimatedTime must not be negative"}
	}

	release, err := s.locker.Acquire(ctx, OrderLockKey(orderID), lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.DeliveryInfo == nil {
		return nil, fmt.Errorf("order %s has no delivery info: %w", orderID, domain.ErrInvalidState)
	}
	mapped := domain.MapStatus(newStatus)
	if (from != "" && o.Status != from) || !o.Status.CanMoveTo(mapped) {
		return nil, fmt.Errorf("order %s cannot move from %s to %s: %w", orderID, o.Status, mapped, domain.ErrInvalidState)
	}
	if companyID == "" {
		companyID = o.DeliveryInfo.Company
	}
	client, err := s.companies.Get(companyID)
	if err != nil {
		return nil, err
	}

	entry := domain.StatusUpdateLog{
		OrderID:         orderID,
		Company:         companyID,
		RequestedStatus: newStatus,
		MappedStatus:    string(mapped),
		EstimatedTime:   eta,
		ChangedBy:       changedBy,
	}

	ext, err := client.UpdateOrderStatus(ctx, o.DeliveryInfo.OrderID, newStatus, eta)
	if err != nil {
		entry.Error = err.Error()
		s.logUpdate(ctx, entry)
		var verr *domain.ValidationError
		var xerr *domain.ExternalCallError
		if !errors.As(err, &verr) && !errors.As(err, &xerr) {
			err = &domain.ExternalCallError{Target: companyID, Err: err}
		}
		s.lg.Error("delivery_status_update_failed", err, map[string]any{"order_id": orderID, "company": companyID, "status": newStatus})
		return nil, err
	}
	entry.ExternalStatus = ext

	old := o.Status
	o.Status = mapped
	o.StampStatus(mapped, s.now())
	if eta > 0 {
		o.EstimatedPrepTime = eta
	}
	if err := s.orders.Save(ctx, o, &domain.StatusChange{Status: mapped, ChangedBy: changedBy}); err != nil {
		// платформа уже обновлена, а у нас нет: фиксируем в журнале
		entry.Error = err.Error()
		s.logUpdate(ctx, entry)
		return nil, err
	}
	entry.Success = true
	s.logUpdate(ctx, entry)
	s.publish(ctx, o, old, changedBy, "")

	s.lg.Info("delivery_status_updated", map[string]any{
		"order_id": orderID, "company": companyID, "status": mapped, "external_status": ext,
	})
	return &StatusUpdateResult{
		OrderID:        orderID,
		Status:         mapped,
		ExternalStatus: ext,
		Company:        companyID,
		EstimatedTime:  o.EstimatedPrepTime,
	}, nil
}

// SetStatus changes the status locally without calling any platform.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus, changedBy, reason string) (*domain.Order, error) {
	var old domain.OrderStatus
	o, err := s.mutate(ctx, orderID, func(o *domain.Order) (*domain.StatusChange, error) {
		if !o.Status.CanMoveTo(status) {
			return nil, fmt.Errorf("order %s cannot move from %s to %s: %w", orderID, o.Status, status, domain.ErrInvalidState)
		}
		old = o.Status
		o.Status = status
		o.StampStatus(status, s.now())
		if status == domain.StatusCancelled && reason != "" {
			o.CancelReason = reason
		}
		return &domain.StatusChange{Status: status, ChangedBy: changedBy, Reason: reason}, nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, o, old, changedBy, reason)
	s.lg.Info("order_status_changed", map[string]any{"order_id": orderID, "old_status": old, "new_status": status, "changed_by": changedBy})
	return o, nil
}

func (s *OrderService) MarkPaid(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.mutate(ctx, orderID, func(o *domain.Order) (*domain.StatusChange, error) {
		o.PaymentStatus = domain.PaymentPaid
		return nil, nil
	})
}

func (s *OrderService) AssignDriver(ctx context.Context, orderID string, driver domain.DriverInfo) (*domain.Order, error) {
	return s.mutate(ctx, orderID, func(o *domain.Order) (*domain.StatusChange, error) {
		if o.DeliveryInfo == nil {
			return nil, fmt.Errorf("order %s has no delivery info: %w", orderID, domain.ErrInvalidState)
		}
		o.DeliveryInfo.Driver = &driver
		return nil, nil
	})
}

// mutate is the locked read-modify-write used by every local change.
func (s *OrderService) mutate(ctx context.Context, orderID string, fn func(*domain.Order) (*domain.StatusChange, error)) (*domain.Order, error) {
	release, err := s.locker.Acquire(ctx, OrderLockKey(orderID), lockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	o, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	change, err := fn(o)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o, change); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) logUpdate(ctx context.Context, entry domain.StatusUpdateLog) {
	if err := s.orders.LogStatusUpdate(ctx, entry); err != nil {
		s.lg.Error("status_update_log_failed", err, map[string]any{"order_id": entry.OrderID})
	}
}

// publish is best effort: the order is already saved.
func (s *OrderService) publish(ctx context.Context, o *domain.Order, old domain.OrderStatus, changedBy, reason string) {
	publishStatus(ctx, s.publisher, s.lg, domain.StatusEvent{
		OrderID:     o.ID,
		TenantID:    o.TenantID,
		Source:      o.Source,
		TableNumber: o.TableNumber,
		OldStatus:   old,
		NewStatus:   o.Status,
		ChangedBy:   changedBy,
		Reason:      reason,
		Timestamp:   s.now(),
	})
}

func publishStatus(ctx context.Context, p Publisher, lg *logger.Logger, ev domain.StatusEvent) {
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.PublishJSON(pctx, rabbitmq.OrdersExchange, ev.RoutingKey(), ev); err != nil {
		lg.Error("status_event_publish_failed", err, map[string]any{"order_id": ev.OrderID, "new_status": ev.NewStatus})
	}
}
