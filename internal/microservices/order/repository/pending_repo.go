package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

type PendingOrderRepositoryInterface interface {
	Create(ctx context.Context, p *domain.PendingOrder) error
	Get(ctx context.Context, id string) (*domain.PendingOrder, error)
	// Approve turns the pending order into o and adds o to the table's active bill, atomically.
	Approve(ctx context.Context, pendingID string, o *domain.Order, changedBy string) (*domain.TableBill, error)
	Reject(ctx context.Context, pendingID, reason string) (*domain.PendingOrder, error)
}

type PendingOrderRepository struct {
	db *pgxpool.Pool
}

func NewPendingOrderRepository(db *pgxpool.Pool) PendingOrderRepositoryInterface {
	return &PendingOrderRepository{db: db}
}

const pendingColumns = `id, tenant_id, table_number, session_id, telegram_user_id, items, total, notes, status,
	order_id, reject_reason, created_at`

func scanPending(row pgx.Row) (*domain.PendingOrder, error) {
	var (
		p      domain.PendingOrder
		status string
		items  []byte
	)
	if err := row.Scan(&p.ID, &p.TenantID, &p.TableNumber, &p.SessionID, &p.TelegramUserID, &items, &p.Total,
		&p.Notes, &status, &p.OrderID, &p.RejectReason, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Status = domain.PendingOrderStatus(status)
	if err := json.Unmarshal(items, &p.Items); err != nil {
		return nil, fmt.Errorf("decode pending items: %w", err)
	}
	return &p, nil
}

func (r *PendingOrderRepository) Create(ctx context.Context, p *domain.PendingOrder) error {
	items, err := json.Marshal(p.Items)
	if err != nil {
		return fmt.Errorf("encode pending items: %w", err)
	}
	err = r.db.QueryRow(ctx, `
		INSERT INTO pending_orders (id, tenant_id, table_number, session_id, telegram_user_id, items, total, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, p.ID, p.TenantID, p.TableNumber, p.SessionID, p.TelegramUserID, items, p.Total, p.Notes, string(p.Status)).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pending order: %w", err)
	}
	return nil
}

func (r *PendingOrderRepository) Get(ctx context.Context, id string) (*domain.PendingOrder, error) {
	p, err := scanPending(r.db.QueryRow(ctx, `SELECT `+pendingColumns+` FROM pending_orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Pending order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending order: %w", err)
	}
	return p, nil
}

func (r *PendingOrderRepository) Approve(ctx context.Context, pendingID string, o *domain.Order, changedBy string) (*domain.TableBill, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 1. Lock the pending order
	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM pending_orders WHERE id = $1 FOR UPDATE`, pendingID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Pending order", pendingID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock pending order: %w", err)
	}
	if domain.PendingOrderStatus(status) != domain.PendingAwaiting {
		return nil, fmt.Errorf("pending order is %s: %w", status, domain.ErrInvalidState)
	}

	// 2. Insert order + status log
	enc, err := encodeOrder(o)
	if err != nil {
		return nil, fmt.Errorf("encode order: %w", err)
	}
	if o.Version == 0 {
		o.Version = 1
	}
	if err = tx.QueryRow(ctx, `
		INSERT INTO orders
		    (id, tenant_id, source, table_number, items, subtotal, total, status, payment_status, notes,
		     status_timestamps, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, o.ID, o.TenantID, o.Source, o.TableNumber, enc.items, o.Subtotal, o.Total, string(o.Status),
		string(o.PaymentStatus), o.Notes, enc.timestamps, o.Version,
	).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}
	if _, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at) VALUES ($1, $2, $3, $4)
	`, o.ID, string(o.Status), changedBy, o.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to insert order status log: %w", err)
	}

	// 3. Append to the active bill, creating it when the table has none
	bill, err := scanBill(tx.QueryRow(ctx, `
		SELECT `+billColumns+` FROM table_bills
		WHERE tenant_id = $1 AND table_number = $2 AND status = 'active'
		FOR UPDATE
	`, o.TenantID, o.TableNumber))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		bill = &domain.TableBill{
			ID:          uuid.NewString(),
			TenantID:    o.TenantID,
			TableNumber: o.TableNumber,
			Status:      domain.BillActive,
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load active bill: %w", err)
	}
	bill.OrderIDs = append(bill.OrderIDs, o.ID)
	bill.Items = append(bill.Items, o.Items...)
	bill.Total = domain.RoundMoney(bill.Total + o.Total)
	billItems, err := json.Marshal(bill.Items)
	if err != nil {
		return nil, fmt.Errorf("encode bill items: %w", err)
	}
	if err = tx.QueryRow(ctx, `
		INSERT INTO table_bills (id, tenant_id, table_number, order_ids, items, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
		    order_ids = EXCLUDED.order_ids, items = EXCLUDED.items, total = EXCLUDED.total, updated_at = NOW()
		RETURNING created_at, updated_at
	`, bill.ID, bill.TenantID, bill.TableNumber, bill.OrderIDs, billItems, bill.Total, string(bill.Status),
	).Scan(&bill.CreatedAt, &bill.UpdatedAt); err != nil {
		return nil, billUpsertError(err, bill.TableNumber)
	}

	// 4. Close the pending order
	if _, err = tx.Exec(ctx, `
		UPDATE pending_orders SET status = 'approved', order_id = $2 WHERE id = $1
	`, pendingID, o.ID); err != nil {
		return nil, fmt.Errorf("failed to approve pending order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return bill, nil
}

func (r *PendingOrderRepository) Reject(ctx context.Context, pendingID, reason string) (*domain.PendingOrder, error) {
	p, err := scanPending(r.db.QueryRow(ctx, `
		UPDATE pending_orders SET status = 'rejected', reject_reason = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+pendingColumns, pendingID, reason))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, gerr := r.Get(ctx, pendingID); gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("pending order already reviewed: %w", domain.ErrInvalidState)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject pending order: %w", err)
	}
	return p, nil
}

const billColumns = `id, tenant_id, table_number, order_ids, items, total, status, created_at, updated_at`

func scanBill(row pgx.Row) (*domain.TableBill, error) {
	var (
		b      domain.TableBill
		status string
		items  []byte
	)
	if err := row.Scan(&b.ID, &b.TenantID, &b.TableNumber, &b.OrderIDs, &items, &b.Total, &status,
		&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Status = domain.BillStatus(status)
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, fmt.Errorf("decode bill items: %w", err)
	}
	return &b, nil
}

// параллельное одобрение уже открыло счёт для стола (table_bills_active_uq)
func billUpsertError(err error, table int) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("table %d already has an active bill: %w", table, domain.ErrConflict)
	}
	return fmt.Errorf("failed to upsert bill: %w", err)
}
