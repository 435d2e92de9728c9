package service

import (
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/kitchen/repository"
	notify "cafe-ordering/internal/microservices/notificator/service"
)

type Service struct {
	KitchenService KitchenServiceInterface
}

func New(repo *repository.Repository, consumer Consumer, notifier notify.DispatcherInterface, cfg Config, lg *logger.Logger) *Service {
	return &Service{
		KitchenService: NewKitchenService(repo.KitchenRepo, consumer, notifier, cfg, lg),
	}
}
