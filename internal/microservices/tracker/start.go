package tracker

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/common/logger"
	notify "cafe-ordering/internal/microservices/notificator/service"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
	"cafe-ordering/internal/microservices/tracker/handler"
	"cafe-ordering/internal/microservices/tracker/repository"
	"cafe-ordering/internal/microservices/tracker/service"
)

// Build wires the read side: order lookups, timelines and day reports.
func Build(db *pgxpool.Pool, tenantRepo tenants.TenantRepositoryInterface, notifier notify.DispatcherInterface, lg *logger.Logger) *handler.Handler {
	repo := repository.NewTrackerRepo(db)
	svc := service.NewTrackerService(repo, tenantRepo, notifier, lg)
	return handler.New(svc, lg)
}
