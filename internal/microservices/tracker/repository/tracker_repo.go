package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/order/repository"
	"cafe-ordering/internal/microservices/tracker/models"
)

type TrackerRepoInterface interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderTimeline(ctx context.Context, id string, limit, offset int) ([]domain.StatusChange, error)
	// DayRows aggregates orders created in [from, to).
	DayRows(ctx context.Context, tenantID string, from, to time.Time) ([]models.DayRow, error)
}

type TrackerRepo struct {
	db *pgxpool.Pool
}

func NewTrackerRepo(db *pgxpool.Pool) *TrackerRepo { return &TrackerRepo{db: db} }

func (r *TrackerRepo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := repository.ScanOrder(r.db.QueryRow(ctx, `SELECT `+repository.OrderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Order", id)
	}
	return o, err
}

func (r *TrackerRepo) GetOrderTimeline(ctx context.Context, id string, limit, offset int) ([]domain.StatusChange, error) {
	rows, err := r.db.Query(ctx, `
SELECT status, changed_by, reason, changed_at
FROM order_status_log WHERE order_id=$1
ORDER BY changed_at ASC, id ASC
LIMIT $2 OFFSET $3
`, id, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.StatusChange{}
	for rows.Next() {
		c := domain.StatusChange{OrderID: id}
		var status string
		if err := rows.Scan(&status, &c.ChangedBy, &c.Reason, &c.ChangedAt); err != nil {
			return nil, err
		}
		c.Status = domain.OrderStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *TrackerRepo) DayRows(ctx context.Context, tenantID string, from, to time.Time) ([]models.DayRow, error) {
	rows, err := r.db.Query(ctx, `
SELECT status, source, COUNT(*), COALESCE(SUM(total), 0)::float8
FROM orders
WHERE tenant_id=$1 AND created_at >= $2 AND created_at < $3
GROUP BY status, source
`, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DayRow
	for rows.Next() {
		var row models.DayRow
		var status string
		if err := rows.Scan(&status, &row.Source, &row.Count, &row.Revenue); err != nil {
			return nil, err
		}
		row.Status = domain.OrderStatus(status)
		out = append(out, row)
	}
	return out, rows.Err()
}
