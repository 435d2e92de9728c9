package service

import (
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/tenants/repository"
)

type Service struct {
	TenantService TenantServiceInterface
}

func New(repo *repository.Repository, lg *logger.Logger) *Service {
	return &Service{
		TenantService: NewTenantService(repo.TenantRepo, repo.DepartmentRepo, repo.WaiterRepo, lg),
	}
}
