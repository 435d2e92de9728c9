package service

import (
	"context"
	"time"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/delivery/companies"
	notify "cafe-ordering/internal/microservices/notificator/service"
	"cafe-ordering/internal/microservices/order/repository"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

// Locker is a single-writer lock; release is safe to call once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, exchange, key string, v any) error
}

type SessionReader interface {
	GetSession(ctx context.Context, id string) (*domain.CafeTableSession, error)
}

type Service struct {
	OrderService OrderServiceInterface
	TableService TableServiceInterface
}

type Deps struct {
	Repo      *repository.Repository
	Tenants   tenants.TenantRepositoryInterface
	Companies companies.RegistryInterface
	Notifier  notify.DispatcherInterface
	Locker    Locker
	Publisher Publisher
	Sessions  SessionReader
	Logger    *logger.Logger
}

func New(d Deps) *Service {
	orders := NewOrderService(d.Repo.OrderRepo, d.Tenants, d.Companies, d.Locker, d.Publisher, d.Logger)
	return &Service{
		OrderService: orders,
		TableService: NewTableService(d.Repo.PendingRepo, d.Repo.PaymentRepo, d.Tenants, d.Sessions, d.Notifier, d.Publisher, d.Logger),
	}
}
