package order

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/microservices/order/handlers"
	"cafe-ordering/internal/microservices/order/repository"
	"cafe-ordering/internal/microservices/order/service"
)

// Build wires the order write side over db unless d.Repo is already set.
func Build(db *pgxpool.Pool, d service.Deps) (*service.Service, *handlers.Handler) {
	if d.Repo == nil {
		d.Repo = repository.New(db)
	}
	svc := service.New(d)
	return svc, handlers.New(svc, d.Logger)
}
