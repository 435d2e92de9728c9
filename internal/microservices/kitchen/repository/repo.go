package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
	orders "cafe-ordering/internal/microservices/order/repository"
)

type Repository struct {
	KitchenRepo KitchenRepositoryInterface
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{
		KitchenRepo: NewKitchenRepository(db),
	}
}

// KitchenRepositoryInterface loads what a ticket needs.
type KitchenRepositoryInterface interface {
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
}

type KitchenRepository struct {
	db *pgxpool.Pool
}

func NewKitchenRepository(db *pgxpool.Pool) KitchenRepositoryInterface {
	return &KitchenRepository{db: db}
}

func (r *KitchenRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := orders.ScanOrder(r.db.QueryRow(ctx, `SELECT `+orders.OrderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Order", id)
	}
	return o, err
}
