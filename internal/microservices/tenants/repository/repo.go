package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

type Repository struct {
	TenantRepo     TenantRepositoryInterface
	DepartmentRepo DepartmentRepositoryInterface
	WaiterRepo     WaiterRepositoryInterface
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{
		TenantRepo:     NewTenantRepository(db),
		DepartmentRepo: NewDepartmentRepository(db),
		WaiterRepo:     NewWaiterRepository(db),
	}
}

// 23505 unique_violation
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.ErrConflict
	}
	return err
}
