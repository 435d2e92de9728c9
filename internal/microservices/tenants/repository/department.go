package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

type DepartmentRepositoryInterface interface {
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Department, error)
	Get(ctx context.Context, tenantID, id string) (*domain.Department, error)
	Create(ctx context.Context, d *domain.Department) error
	Update(ctx context.Context, d *domain.Department) error
	Delete(ctx context.Context, tenantID, id string) error
}

type DepartmentRepository struct {
	db *pgxpool.Pool
}

func NewDepartmentRepository(db *pgxpool.Pool) DepartmentRepositoryInterface {
	return &DepartmentRepository{db: db}
}

const departmentColumns = `id, tenant_id, name, role, chat_id, admin_chat_id, created_at`

func scanDepartment(row pgx.Row) (domain.Department, error) {
	var d domain.Department
	var role string
	err := row.Scan(&d.ID, &d.TenantID, &d.Name, &role, &d.ChatID, &d.AdminChatID, &d.CreatedAt)
	d.Role = domain.Role(role)
	return d, err
}

func (r *DepartmentRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Department, error) {
	rows, err := r.db.Query(ctx, `SELECT `+departmentColumns+` FROM departments WHERE tenant_id = $1 ORDER BY created_at`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var out []domain.Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DepartmentRepository) Get(ctx context.Context, tenantID, id string) (*domain.Department, error) {
	d, err := scanDepartment(r.db.QueryRow(ctx,
		`SELECT `+departmentColumns+` FROM departments WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Department", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) Create(ctx context.Context, d *domain.Department) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO departments (id, tenant_id, name, role, chat_id, admin_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, d.ID, d.TenantID, d.Name, string(d.Role), d.ChatID, d.AdminChatID).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert department: %w", uniqueViolation(err))
	}
	return nil
}

func (r *DepartmentRepository) Update(ctx context.Context, d *domain.Department) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE departments SET name = $3, role = $4, chat_id = $5, admin_chat_id = $6
		WHERE tenant_id = $1 AND id = $2
	`, d.TenantID, d.ID, d.Name, string(d.Role), d.ChatID, d.AdminChatID)
	if err != nil {
		return fmt.Errorf("failed to update department: %w", uniqueViolation(err))
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Department", d.ID)
	}
	return nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("Department", id)
	}
	return nil
}
