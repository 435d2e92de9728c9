package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	notify "cafe-ordering/internal/microservices/notificator/service"
	"cafe-ordering/internal/microservices/order/repository"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

type TableServiceInterface interface {
	CreatePendingOrder(ctx context.Context, sessionID string, items []domain.ItemInput, notes string) (*domain.PendingOrder, error)
	ApprovePendingOrder(ctx context.Context, pendingID, changedBy string) (*domain.Order, *domain.TableBill, error)
	RejectPendingOrder(ctx context.Context, pendingID, reason string) (*domain.PendingOrder, error)

	GetBill(ctx context.Context, sessionID string) (*domain.TableBill, error)
	SubmitPayment(ctx context.Context, sessionID, method, screenshotURL string) (*domain.PaymentConfirmation, error)
	ApprovePayment(ctx context.Context, paymentID string) (*domain.PaymentConfirmation, *domain.TableBill, error)
	RejectPayment(ctx context.Context, paymentID string) (*domain.PaymentConfirmation, error)
}

type TableService struct {
	pending   repository.PendingOrderRepositoryInterface
	payments  repository.PaymentRepositoryInterface
	tenants   tenants.TenantRepositoryInterface
	sessions  SessionReader
	notifier  notify.DispatcherInterface
	publisher Publisher
	lg        *logger.Logger
	now       func() time.Time
}

func NewTableService(
	pending repository.PendingOrderRepositoryInterface,
	payments repository.PaymentRepositoryInterface,
	tenantRepo tenants.TenantRepositoryInterface,
	sessions SessionReader,
	notifier notify.DispatcherInterface,
	publisher Publisher,
	lg *logger.Logger,
) *TableService {
	return &TableService{
		pending:   pending,
		payments:  payments,
		tenants:   tenantRepo,
		sessions:  sessions,
		notifier:  notifier,
		publisher: publisher,
		lg:        lg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *TableService) session(ctx context.Context, sessionID string) (*domain.CafeTableSession, error) {
	if sessionID == "" {
		return nil, domain.Missing("sessionId")
	}
	return s.sessions.GetSession(ctx, sessionID)
}

// CreatePendingOrder stores the guest's order and asks the cashier to approve it.
func (s *TableService) CreatePendingOrder(ctx context.Context, sessionID string, inputs []domain.ItemInput, notes string) (*domain.PendingOrder, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	items, total, err := domain.BuildItems(inputs)
	if err != nil {
		return nil, err
	}

	po := &domain.PendingOrder{
		ID:          uuid.NewString(),
		TenantID:    sess.TenantID,
		TableNumber: sess.TableNumber,
		SessionID:   sess.SessionID,
		Items:       items,
		Total:       total,
		Notes:       strings.TrimSpace(notes),
		Status:      domain.PendingAwaiting,
		CreatedAt:   s.now(),
	}
	if sess.TelegramUser != nil {
		po.TelegramUserID = sess.TelegramUser.ID
	}
	if err := s.pending.Create(ctx, po); err != nil {
		return nil, err
	}

	s.lg.Info("pending_order_created", map[string]any{
		"pending_id": po.ID, "tenant_id": po.TenantID, "table": po.TableNumber, "total": po.Total,
	})
	s.notifier.Notify(ctx, po.TenantID, domain.RoleCashier, notify.KindNewOrder, s.payload(ctx, po.TenantID, notify.Payload{Pending: po}))
	return po, nil
}

func (s *TableService) ApprovePendingOrder(ctx context.Context, pendingID, changedBy string) (*domain.Order, *domain.TableBill, error) {
	po, err := s.pending.Get(ctx, pendingID)
	if err != nil {
		return nil, nil, err
	}
	if po.Status != domain.PendingAwaiting {
		return nil, nil, fmt.Errorf("pending order %s is %s: %w", pendingID, po.Status, domain.ErrInvalidState)
	}

	now := s.now()
	o := &domain.Order{
		ID:            uuid.NewString(),
		TenantID:      po.TenantID,
		Source:        domain.SourceTable,
		TableNumber:   po.TableNumber,
		Items:         po.Items,
		Subtotal:      po.Total,
		Total:         po.Total,
		Status:        domain.StatusConfirmed,
		PaymentStatus: domain.PaymentUnpaid,
		Notes:         po.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	o.StampStatus(domain.StatusConfirmed, now)
	if t, err := s.tenants.Get(ctx, po.TenantID); err == nil {
		o.EstimatedPrepTime = t.PrepTimeFor("")
	}

	bill, err := s.pending.Approve(ctx, pendingID, o, changedBy)
	if err != nil {
		return nil, nil, err
	}

	s.lg.Info("pending_order_approved", map[string]any{
		"pending_id": pendingID, "order_id": o.ID, "bill_id": bill.ID, "changed_by": changedBy,
	})
	publishStatus(ctx, s.publisher, s.lg, domain.StatusEvent{
		OrderID:     o.ID,
		TenantID:    o.TenantID,
		Source:      o.Source,
		TableNumber: o.TableNumber,
		OldStatus:   domain.StatusPending,
		NewStatus:   domain.StatusConfirmed,
		ChangedBy:   changedBy,
		Timestamp:   now,
	})
	return o, bill, nil
}

func (s *TableService) RejectPendingOrder(ctx context.Context, pendingID, reason string) (*domain.PendingOrder, error) {
	po, err := s.pending.Reject(ctx, pendingID, strings.TrimSpace(reason))
	if err != nil {
		return nil, err
	}
	s.lg.Info("pending_order_rejected", map[string]any{"pending_id": pendingID, "tenant_id": po.TenantID})
	return po, nil
}

func (s *TableService) GetBill(ctx context.Context, sessionID string) (*domain.TableBill, error) {
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.payments.ActiveBill(ctx, sess.TenantID, sess.TableNumber)
}

// SubmitPayment records the guest's claim that the active bill was paid; the cashier confirms it.
func (s *TableService) SubmitPayment(ctx context.Context, sessionID, method, screenshotURL string) (*domain.PaymentConfirmation, error) {
	method = strings.ToLower(strings.TrimSpace(method))
	if method == "" {
		return nil, domain.Missing("method")
	}
	if !domain.PaymentMethods[method] {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("Unsupported payment method %q", method)}
	}
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	bill, err := s.payments.ActiveBill(ctx, sess.TenantID, sess.TableNumber)
	if err != nil {
		return nil, err
	}

	pc := &domain.PaymentConfirmation{
		ID:            uuid.NewString(),
		TenantID:      sess.TenantID,
		TableNumber:   sess.TableNumber,
		BillID:        bill.ID,
		Amount:        bill.Total,
		Method:        method,
		ScreenshotURL: strings.TrimSpace(screenshotURL),
		Status:        domain.ReviewPending,
		CreatedAt:     s.now(),
	}
	if err := s.payments.Create(ctx, pc); err != nil {
		return nil, err
	}

	s.lg.Info("payment_submitted", map[string]any{
		"payment_id": pc.ID, "bill_id": bill.ID, "tenant_id": pc.TenantID, "method": method,
	})
	s.notifier.Notify(ctx, pc.TenantID, domain.RoleCashier, notify.KindPaymentConfirmation, s.payload(ctx, pc.TenantID, notify.Payload{Payment: pc}))
	return pc, nil
}

func (s *TableService) ApprovePayment(ctx context.Context, paymentID string) (*domain.PaymentConfirmation, *domain.TableBill, error) {
	pc, bill, err := s.payments.Approve(ctx, paymentID, s.now())
	if err != nil {
		return nil, nil, err
	}
	s.lg.Info("payment_approved", map[string]any{"payment_id": paymentID, "bill_id": bill.ID, "orders": len(bill.OrderIDs)})
	return pc, bill, nil
}

func (s *TableService) RejectPayment(ctx context.Context, paymentID string) (*domain.PaymentConfirmation, error) {
	pc, err := s.payments.Reject(ctx, paymentID, s.now())
	if err != nil {
		return nil, err
	}
	s.lg.Info("payment_rejected", map[string]any{"payment_id": paymentID})
	return pc, nil
}

func (s *TableService) payload(ctx context.Context, tenantID string, p notify.Payload) notify.Payload {
	p.TenantID = tenantID
	if t, err := s.tenants.Get(ctx, tenantID); err == nil {
		p.TenantName = t.BusinessName
		p.Currency = t.Currency
	}
	return p
}
