package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

type PaymentRepositoryInterface interface {
	ActiveBill(ctx context.Context, tenantID string, table int) (*domain.TableBill, error)
	Create(ctx context.Context, p *domain.PaymentConfirmation) error
	Get(ctx context.Context, id string) (*domain.PaymentConfirmation, error)
	// Approve marks the payment approved, its bill paid and the bill's orders paid.
	Approve(ctx context.Context, id string, at time.Time) (*domain.PaymentConfirmation, *domain.TableBill, error)
	Reject(ctx context.Context, id string, at time.Time) (*domain.PaymentConfirmation, error)
}

type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepositoryInterface {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, tenant_id, table_number, bill_id, amount, method, screenshot_url, status, created_at, reviewed_at`

func scanPayment(row pgx.Row) (*domain.PaymentConfirmation, error) {
	var (
		p      domain.PaymentConfirmation
		status string
	)
	if err := row.Scan(&p.ID, &p.TenantID, &p.TableNumber, &p.BillID, &p.Amount, &p.Method, &p.ScreenshotURL,
		&status, &p.CreatedAt, &p.ReviewedAt); err != nil {
		return nil, err
	}
	p.Status = domain.ReviewStatus(status)
	return &p, nil
}

func (r *PaymentRepository) ActiveBill(ctx context.Context, tenantID string, table int) (*domain.TableBill, error) {
	b, err := scanBill(r.db.QueryRow(ctx, `
		SELECT `+billColumns+` FROM table_bills WHERE tenant_id = $1 AND table_number = $2 AND status = 'active'
	`, tenantID, table))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Bill", fmt.Sprintf("%s/%d", tenantID, table))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active bill: %w", err)
	}
	return b, nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.PaymentConfirmation) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO payment_confirmations (id, tenant_id, table_number, bill_id, amount, method, screenshot_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, p.ID, p.TenantID, p.TableNumber, p.BillID, p.Amount, p.Method, p.ScreenshotURL, string(p.Status)).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert payment confirmation: %w", err)
	}
	return nil
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*domain.PaymentConfirmation, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_confirmations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Payment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment confirmation: %w", err)
	}
	return p, nil
}

func (r *PaymentRepository) Approve(ctx context.Context, id string, at time.Time) (*domain.PaymentConfirmation, *domain.TableBill, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	p, err := scanPayment(tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_confirmations WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, domain.NotFound("Payment", id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock payment confirmation: %w", err)
	}
	if p.Status != domain.ReviewPending {
		return nil, nil, fmt.Errorf("payment already %s: %w", p.Status, domain.ErrInvalidState)
	}

	if _, err = tx.Exec(ctx, `
		UPDATE payment_confirmations SET status = 'approved', reviewed_at = $2 WHERE id = $1
	`, id, at); err != nil {
		return nil, nil, fmt.Errorf("failed to approve payment: %w", err)
	}
	p.Status = domain.ReviewApproved
	p.ReviewedAt = &at

	bill, err := scanBill(tx.QueryRow(ctx, `
		UPDATE table_bills SET status = 'paid', updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING `+billColumns, p.BillID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("bill %s is not active: %w", p.BillID, domain.ErrInvalidState)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to close bill: %w", err)
	}

	if _, err = tx.Exec(ctx, `
		UPDATE orders SET payment_status = 'paid', version = version + 1, updated_at = NOW()
		WHERE id = ANY($1)
	`, bill.OrderIDs); err != nil {
		return nil, nil, fmt.Errorf("failed to mark orders paid: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return p, bill, nil
}

func (r *PaymentRepository) Reject(ctx context.Context, id string, at time.Time) (*domain.PaymentConfirmation, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `
		UPDATE payment_confirmations SET status = 'rejected', reviewed_at = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+paymentColumns, id, at))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, gerr := r.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, fmt.Errorf("payment already reviewed: %w", domain.ErrInvalidState)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reject payment: %w", err)
	}
	return p, nil
}
