package service

import (
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/tenants/repository"
)

type Service struct {
	Dispatcher DispatcherInterface
}

func New(repo *repository.Repository, sender Sender, defaultChatID int64, lg *logger.Logger) *Service {
	return &Service{
		Dispatcher: NewDispatcher(repo.TenantRepo, repo.DepartmentRepo, repo.WaiterRepo, sender, defaultChatID, lg),
	}
}
