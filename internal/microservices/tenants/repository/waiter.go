package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

type WaiterRepositoryInterface interface {
	// ListByTenant returns assignments ordered by created_at.
	ListByTenant(ctx context.Context, tenantID string, activeOnly bool) ([]domain.WaiterAssignment, error)
	Get(ctx context.Context, tenantID, id string) (*domain.WaiterAssignment, error)
	Create(ctx context.Context, w *domain.WaiterAssignment) error
	Update(ctx context.Context, w *domain.WaiterAssignment) error
	Delete(ctx context.Context, tenantID, id string) error
}

type WaiterRepository struct {
	db *pgxpool.Pool
}

func NewWaiterRepository(db *pgxpool.Pool) WaiterRepositoryInterface {
	return &WaiterRepository{db: db}
}

const waiterColumns = `id, tenant_id, waiter_name, start_table, end_table, chat_id, shift_start, shift_end,
	working_days, is_active, created_at`

func scanWaiter(row pgx.Row) (domain.WaiterAssignment, error) {
	var w domain.WaiterAssignment
	err := row.Scan(&w.ID, &w.TenantID, &w.WaiterName, &w.StartTable, &w.EndTable, &w.ChatID,
		&w.ShiftStart, &w.ShiftEnd, &w.WorkingDays, &w.IsActive, &w.CreatedAt)
	return w, err
}

func (r *WaiterRepository) ListByTenant(ctx context.Context, tenantID string, activeOnly bool) ([]domain.WaiterAssignment, error) {
	q := `SELECT ` + waiterColumns + ` FROM waiter_assignments WHERE tenant_id = $1`
	if activeOnly {
		q += ` AND is_active`
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiter assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.WaiterAssignment
	for rows.Next() {
		w, err := scanWaiter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WaiterRepository) Get(ctx context.Context, tenantID, id string) (*domain.WaiterAssignment, error) {
	w, err := scanWaiter(r.db.QueryRow(ctx,
		`SELECT `+waiterColumns+` FROM waiter_assignments WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Waiter assignment", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get waiter assignment: %w", err)
	}
	return &w, nil
}

func (r *WaiterRepository) Create(ctx context.Context, w *domain.WaiterAssignment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO waiter_assignments
		    (id, tenant_id, waiter_name, start_table, end_table, chat_id, shift_start, shift_end, working_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, w.ID, w.TenantID, w.WaiterName, w.StartTable, w.EndTable, w.ChatID, w.ShiftStart, w.ShiftEnd,
		workingDays(w.WorkingDays), w.IsActive).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert waiter assignment: %w", err)
	}
	return nil
}

func (r *WaiterRepository) Update(ctx context.Context, w *domain.WaiterAssignment) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE waiter_assignments
		SET waiter_name = $3, start_table = $4, end_table = $5, chat_id = $6,
		    shift_start = $7, shift_end = $8, working_days = $9, is_active = $10
		WHERE tenant_id = $1 AND id = $2
	`, w.TenantID, w.ID, w.WaiterName, w.StartTable, w.EndTable, w.ChatID, w.ShiftStart, w.ShiftEnd,
		workingDays(w.WorkingDays), w.IsActive)
	if err != nil {
		return fmt.Errorf("failed to update waiter assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Waiter assignment", w.ID)
	}
	return nil
}

func (r *WaiterRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM waiter_assignments WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete waiter assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Waiter assignment", id)
	}
	return nil
}

// NOT NULL column; a nil slice would be sent as NULL.
func workingDays(d []int) []int {
	if d == nil {
		return []int{}
	}
	return d
}
