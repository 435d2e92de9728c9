package delivery

import (
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/delivery/companies"
	"cafe-ordering/internal/microservices/delivery/handlers"
	"cafe-ordering/internal/microservices/delivery/service"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

func Build(registry companies.RegistryInterface, tenantRepo tenants.TenantRepositoryInterface, lg *logger.Logger) *handlers.Handler {
	return handlers.New(service.New(registry, tenantRepo, lg), lg)
}
