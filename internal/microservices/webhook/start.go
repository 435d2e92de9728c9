package webhook

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/delivery/companies"
	notify "cafe-ordering/internal/microservices/notificator/service"
	orders "cafe-ordering/internal/microservices/order/repository"
	lifecycle "cafe-ordering/internal/microservices/order/service"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
	"cafe-ordering/internal/microservices/webhook/handlers"
	"cafe-ordering/internal/microservices/webhook/repository"
	"cafe-ordering/internal/microservices/webhook/service"
)

type Deps struct {
	Orders    orders.OrderRepositoryInterface
	Lifecycle lifecycle.OrderServiceInterface
	Tenants   tenants.TenantRepositoryInterface
	Companies companies.RegistryInterface
	Notifier  notify.DispatcherInterface
	Locker    lifecycle.Locker
}

func Build(db *pgxpool.Pool, d Deps, lg *logger.Logger) *handlers.Handler {
	svc := service.NewWebhookService(repository.New(db), d.Orders, d.Lifecycle, d.Tenants, d.Companies, d.Notifier, d.Locker, lg)
	return handlers.New(svc, lg)
}
