package session

import (
	"cafe-ordering/internal/common/logger"
	notify "cafe-ordering/internal/microservices/notificator/service"
	"cafe-ordering/internal/microservices/session/handlers"
	"cafe-ordering/internal/microservices/session/service"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

func Build(store service.Store, tenantRepo tenants.TenantRepositoryInterface, notifier notify.DispatcherInterface, cfg service.Config, lg *logger.Logger) (*service.Service, *handlers.Handler) {
	svc := service.New(service.NewSessionService(store, tenantRepo, notifier, cfg, lg))
	return svc, handlers.New(svc, lg)
}
