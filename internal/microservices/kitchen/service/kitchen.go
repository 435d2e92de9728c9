package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp091 "github.com/rabbitmq/amqp091-go"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/connections/rabbitmq"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/kitchen/repository"
	notify "cafe-ordering/internal/microservices/notificator/service"
)

var (
	ErrRequeue = errors.New("requeue")     // nack(requeue=true)
	ErrDLQ     = errors.New("dead_letter") // nack(requeue=false)
)

// Consumer opens a dedicated consuming channel; *rabbitmq.Client satisfies it.
type Consumer interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp091.Delivery, *amqp091.Channel, error)
}

type Config struct {
	Queue        string
	ConsumerName string
	Prefetch     int
}

type KitchenServiceInterface interface {
	Run(ctx context.Context) error
}

// KitchenService turns order status events into staff notifications:
// confirmed orders become kitchen tickets, cancellations reach the kitchen,
// ready orders reach the cashier.
type KitchenService struct {
	repo     repository.KitchenRepositoryInterface
	consumer Consumer
	notifier notify.DispatcherInterface
	cfg      Config
	lg       *logger.Logger
}

func NewKitchenService(repo repository.KitchenRepositoryInterface, consumer Consumer, notifier notify.DispatcherInterface, cfg Config, lg *logger.Logger) *KitchenService {
	if cfg.Queue == "" {
		cfg.Queue = rabbitmq.KitchenQueue
	}
	if cfg.ConsumerName == "" {
		cfg.ConsumerName = "notification-subscriber"
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	return &KitchenService{repo: repo, consumer: consumer, notifier: notifier, cfg: cfg, lg: lg}
}

func (ks *KitchenService) Run(ctx context.Context) error {
	msgs, ch, err := ks.consumer.Consume(ks.cfg.Queue, ks.cfg.ConsumerName, ks.cfg.Prefetch)
	if err != nil {
		return fmt.Errorf("consume %s: %w", ks.cfg.Queue, err)
	}
	defer ch.Close()

	// Диагностика закрытий канала/консюмера
	closeCh := ch.NotifyClose(make(chan *amqp091.Error, 1))
	cancelCh := ch.NotifyCancel(make(chan string, 1))
	go func() {
		for {
			select {
			case e := <-closeCh:
				if e != nil {
					ks.lg.Error("amqp_channel_closed", e, map[string]any{"code": e.Code})
				}
				return
			case tag := <-cancelCh:
				if tag != "" {
					ks.lg.Error("consumer_canceled", fmt.Errorf("consumer %s canceled", tag), nil)
				}
			}
		}
	}()

	ks.lg.Info("subscriber_started", map[string]any{"queue": ks.cfg.Queue, "prefetch": ks.cfg.Prefetch})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			err := ks.processOne(ctx, d.Body, d.Redelivered)
			switch {
			case err == nil:
				_ = d.Ack(false)
			case errors.Is(err, ErrDLQ):
				_ = d.Nack(false, false)
			default:
				_ = d.Nack(false, true)
			}
		}
	}()

	select {
	case <-ctx.Done():
		ks.lg.Info("graceful_shutdown", map[string]any{"queue": ks.cfg.Queue})
		_ = ch.Cancel(ks.cfg.ConsumerName, false) // перестаём принимать новые
		<-done
		return nil
	case <-done:
		return errors.New("delivery channel closed")
	}
}

func (ks *KitchenService) processOne(ctx context.Context, body []byte, redelivered bool) error {
	var ev domain.StatusEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		ks.lg.Error("status_event_malformed", err, nil)
		return ErrDLQ
	}
	if ev.OrderID == "" || ev.TenantID == "" || ev.NewStatus == "" {
		ks.lg.Error("status_event_malformed", errors.New("order_id, tenant_id and new_status are required"), map[string]any{"order_id": ev.OrderID})
		return ErrDLQ
	}

	var (
		kind notify.Kind
		role domain.Role
	)
	switch ev.NewStatus {
	case domain.StatusConfirmed:
		kind, role = notify.KindKitchenTicket, domain.RoleKitchen
	case domain.StatusCancelled:
		kind, role = notify.KindCancellation, domain.RoleKitchen
	case domain.StatusReady:
		kind, role = notify.KindOrderReady, domain.RoleCashier
	default:
		return nil
	}

	o, err := ks.repo.GetOrder(ctx, ev.OrderID)
	if domain.IsNotFound(err) {
		return ErrDLQ
	}
	if err != nil {
		return ks.retry(redelivered, err, ev)
	}

	// уведомления best effort: неудача логируется диспетчером, сообщение подтверждаем
	sent := ks.notifier.Notify(ctx, ev.TenantID, role, kind, notify.Payload{Order: o, Reason: ev.Reason})
	ks.lg.Debug("status_event_handled", map[string]any{"order_id": ev.OrderID, "tenant_id": ev.TenantID, "kind": kind, "sent": sent})
	return nil
}

// retry requeues once; a second failure goes to the dead-letter queue.
func (ks *KitchenService) retry(redelivered bool, err error, ev domain.StatusEvent) error {
	ks.lg.Error("status_event_failed", err, map[string]any{"order_id": ev.OrderID, "redelivered": redelivered})
	if redelivered {
		return ErrDLQ
	}
	return ErrRequeue
}
