package notify

import (
	"context"

	"cafe-ordering/internal/app/bootstrap"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/config"
	"cafe-ordering/internal/connections/rabbitmq"
	"cafe-ordering/internal/microservices/kitchen"
	kitchenservice "cafe-ordering/internal/microservices/kitchen/service"
	"cafe-ordering/internal/microservices/notificator"
)

// Run consumes order status events and turns them into staff notifications.
func Run(ctx context.Context, cfg *config.Config) error {
	lg := logger.New("notification-subscriber")

	inf, err := bootstrap.Open(ctx, cfg, lg, false)
	if err != nil {
		return err
	}
	defer inf.Close()

	notifier := notificator.Build(inf.DB, inf.Bot, cfg.Telegram.DefaultChatID, logger.New("notificator"))
	sub := kitchen.Build(inf.DB, inf.MQ, notifier, kitchenservice.Config{
		Queue:        rabbitmq.KitchenQueue,
		ConsumerName: "notification-subscriber",
		Prefetch:     cfg.RabbitMQ.Prefetch,
	}, lg)

	lg.Info("service_started", map[string]any{"queue": rabbitmq.KitchenQueue, "prefetch": cfg.RabbitMQ.Prefetch})
	return sub.Run(ctx)
}
