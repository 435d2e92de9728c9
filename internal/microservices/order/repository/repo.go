package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	OrderRepo   OrderRepositoryInterface
	PendingRepo PendingOrderRepositoryInterface
	PaymentRepo PaymentRepositoryInterface
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{
		OrderRepo:   NewOrderRepository(db),
		PendingRepo: NewPendingOrderRepository(db),
		PaymentRepo: NewPaymentRepository(db),
	}
}

// 23505 unique_violation
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
