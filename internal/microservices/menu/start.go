package menu

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/menu/handlers"
	"cafe-ordering/internal/microservices/menu/repository"
	"cafe-ordering/internal/microservices/menu/service"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

func Build(db *pgxpool.Pool, tenantRepo tenants.TenantRepositoryInterface, lg *logger.Logger) *handlers.Handler {
	svc := service.NewMenuService(repository.NewMenuRepository(db), tenantRepo, lg)
	return handlers.New(svc, lg)
}
