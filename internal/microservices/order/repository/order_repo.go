package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

type OrderRepositoryInterface interface {
	Create(ctx context.Context, o *domain.Order, changedBy string) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	FindByDelivery(ctx context.Context, company, externalOrderID string) (*domain.Order, error)
	// Save writes o if its version is unchanged and bumps o.Version.
	// A non-nil change is appended to the order timeline in the same transaction.
	Save(ctx context.Context, o *domain.Order, change *domain.StatusChange) error
	LogStatusUpdate(ctx context.Context, l domain.StatusUpdateLog) error
}

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

// OrderColumns and ScanOrder are shared with the read side.
const OrderColumns = `id, tenant_id, source, table_number, customer_name, customer_phone, items, subtotal, total,
	status, payment_status, estimated_prep_time, notes, cancel_reason, delivery_info, status_timestamps,
	version, created_at, updated_at`

func ScanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                          domain.Order
		status, payment            string
		items, delivery, timestamp []byte
	)
	if err := row.Scan(&o.ID, &o.TenantID, &o.Source, &o.TableNumber, &o.CustomerName, &o.CustomerPhone,
		&items, &o.Subtotal, &o.Total, &status, &payment, &o.EstimatedPrepTime, &o.Notes, &o.CancelReason,
		&delivery, &timestamp, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(payment)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if len(delivery) > 0 {
		o.DeliveryInfo = &domain.DeliveryInfo{}
		if err := json.Unmarshal(delivery, o.DeliveryInfo); err != nil {
			return nil, fmt.Errorf("decode delivery info: %w", err)
		}
	}
	if len(timestamp) > 0 {
		if err := json.Unmarshal(timestamp, &o.StatusTimestamps); err != nil {
			return nil, fmt.Errorf("decode status timestamps: %w", err)
		}
	}
	return &o, nil
}

type orderJSON struct {
	items, delivery, timestamps []byte
	company, externalID         *string
}

func encodeOrder(o *domain.Order) (orderJSON, error) {
	var (
		out orderJSON
		err error
	)
	if out.items, err = json.Marshal(o.Items); err != nil {
		return out, err
	}
	if o.StatusTimestamps == nil {
		out.timestamps = []byte("{}")
	} else if out.timestamps, err = json.Marshal(o.StatusTimestamps); err != nil {
		return out, err
	}
	if o.DeliveryInfo != nil {
		if out.delivery, err = json.Marshal(o.DeliveryInfo); err != nil {
			return out, err
		}
		out.company = &o.DeliveryInfo.Company
		out.externalID = &o.DeliveryInfo.OrderID
	}
	return out, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order, changedBy string) error {
	enc, err := encodeOrder(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 1. Insert order
	if o.Version == 0 {
		o.Version = 1
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders
		    (id, tenant_id, source, table_number, customer_name, customer_phone, items, subtotal, total, status,
		     payment_status, estimated_prep_time, notes, delivery_company, delivery_order_id, delivery_info,
		     status_timestamps, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`, o.ID, o.TenantID, o.Source, o.TableNumber, o.CustomerName, o.CustomerPhone, enc.items, o.Subtotal, o.Total,
		string(o.Status), string(o.PaymentStatus), o.EstimatedPrepTime, o.Notes, enc.company, enc.externalID,
		enc.delivery, enc.timestamps, o.Version,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order already exists: %w", domain.ErrConflict)
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	// 2. Insert into order_status_log
	if _, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`, o.ID, string(o.Status), changedBy, o.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert order status log: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := ScanOrder(r.db.QueryRow(ctx, `SELECT `+OrderColumns+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) FindByDelivery(ctx context.Context, company, externalOrderID string) (*domain.Order, error) {
	o, err := ScanOrder(r.db.QueryRow(ctx, `
		SELECT `+OrderColumns+` FROM orders WHERE delivery_company = $1 AND delivery_order_id = $2
	`, company, externalOrderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Order", externalOrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find delivery order: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) Save(ctx context.Context, o *domain.Order, change *domain.StatusChange) error {
	enc, err := encodeOrder(o)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var updatedAt time.Time
	err = tx.QueryRow(ctx, `
		UPDATE orders
		SET status = $3, payment_status = $4, estimated_prep_time = $5, notes = $6, cancel_reason = $7,
		    delivery_info = $8, status_timestamps = $9, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING updated_at
	`, o.ID, o.Version, string(o.Status), string(o.PaymentStatus), o.EstimatedPrepTime, o.Notes, o.CancelReason,
		enc.delivery, enc.timestamps,
	).Scan(&updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	if change != nil {
		if _, err = tx.Exec(ctx, `
			INSERT INTO order_status_log (order_id, status, changed_by, reason, changed_at)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, string(change.Status), change.ChangedBy, change.Reason, updatedAt); err != nil {
			return fmt.Errorf("failed to insert order status log: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	o.Version++
	o.UpdatedAt = updatedAt
	return nil
}

func (r *OrderRepository) LogStatusUpdate(ctx context.Context, l domain.StatusUpdateLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO status_update_logs
		    (order_id, company, requested_status, mapped_status, external_status, estimated_time, changed_by, success, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.OrderID, l.Company, l.RequestedStatus, l.MappedStatus, l.ExternalStatus, l.EstimatedTime, l.ChangedBy, l.Success, l.Error)
	if err != nil {
		return fmt.Errorf("failed to insert status update log: %w", err)
	}
	return nil
}
