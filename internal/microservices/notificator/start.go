package notificator

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/microservices/notificator/service"
	"cafe-ordering/internal/microservices/tenants/repository"
)

// Build wires the dispatcher over the Postgres tenant tables and a Telegram sender.
func Build(db *pgxpool.Pool, sender service.Sender, defaultChatID int64, lg *logger.Logger) service.DispatcherInterface {
	return service.New(repository.New(db), sender, defaultChatID, lg).Dispatcher
}
