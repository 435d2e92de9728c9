package kitchen

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/kitchen/repository"
	"cafe-ordering/internal/microservices/kitchen/service"
	notify "cafe-ordering/internal/microservices/notificator/service"
)

// Build wires the status-event subscriber over kitchen.q.
func Build(db *pgxpool.Pool, consumer service.Consumer, notifier notify.DispatcherInterface, cfg service.Config, lg *logger.Logger) service.KitchenServiceInterface {
	repo := repository.New(db)
	return service.New(repo, consumer, notifier, cfg, lg).KitchenService
}
