package tenants

import (
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/tenants/handlers"
	"cafe-ordering/internal/microservices/tenants/repository"
	"cafe-ordering/internal/microservices/tenants/service"
)

func Build(repo *repository.Repository, lg *logger.Logger) *handlers.Handler {
	return handlers.New(service.New(repo, lg), lg)
}
