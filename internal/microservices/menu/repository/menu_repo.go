package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

type MenuRepositoryInterface interface {
	ListItems(ctx context.Context, tenantID string) ([]domain.MenuItem, error)
	ListSchedules(ctx context.Context, tenantID string) ([]domain.MenuSchedule, error)
}

type MenuRepository struct {
	db *pgxpool.Pool
}

func NewMenuRepository(db *pgxpool.Pool) MenuRepositoryInterface {
	return &MenuRepository{db: db}
}

func (r *MenuRepository) ListItems(ctx context.Context, tenantID string) ([]domain.MenuItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, name, description, category, price::float8, is_available, schedule_ids, image_url
		FROM menu_items WHERE tenant_id = $1 ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu items: %w", err)
	}
	defer rows.Close()

	var out []domain.MenuItem
	for rows.Next() {
		var it domain.MenuItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.Name, &it.Description, &it.Category,
			&it.Price, &it.IsAvailable, &it.ScheduleIDs, &it.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *MenuRepository) ListSchedules(ctx context.Context, tenantID string) ([]domain.MenuSchedule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, name, start_time, end_time, days_of_week, is_active
		FROM menu_schedules WHERE tenant_id = $1 ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list menu schedules: %w", err)
	}
	defer rows.Close()

	var out []domain.MenuSchedule
	for rows.Next() {
		var s domain.MenuSchedule
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Name, &s.StartTime, &s.EndTime, &s.DaysOfWeek, &s.IsActive); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
