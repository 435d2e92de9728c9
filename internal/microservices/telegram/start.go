package telegram

import (
	"cafe-ordering/internal/common/logger"
	orders "cafe-ordering/internal/microservices/order/service"
	"cafe-ordering/internal/microservices/telegram/handlers"
	"cafe-ordering/internal/microservices/telegram/service"
)

func Build(bot service.Bot, o *orders.Service, cfg service.Config, lg *logger.Logger) *handlers.Handler {
	return handlers.New(service.NewTelegramService(bot, o.OrderService, o.TableService, cfg, lg), cfg.WebhookSecret, lg)
}
