package api

import (
	"context"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cafe-ordering/internal/app/bootstrap"
	"cafe-ordering/internal/common/httpx"
	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/config"
	"cafe-ordering/internal/microservices/delivery"
	"cafe-ordering/internal/microservices/delivery/companies"
	"cafe-ordering/internal/microservices/menu"
	"cafe-ordering/internal/microservices/notificator"
	"cafe-ordering/internal/microservices/order"
	orderrepo "cafe-ordering/internal/microservices/order/repository"
	orderservice "cafe-ordering/internal/microservices/order/service"
	"cafe-ordering/internal/microservices/session"
	sessionservice "cafe-ordering/internal/microservices/session/service"
	"cafe-ordering/internal/microservices/telegram"
	telegramservice "cafe-ordering/internal/microservices/telegram/service"
	"cafe-ordering/internal/microservices/tenants"
	tenantrepo "cafe-ordering/internal/microservices/tenants/repository"
	"cafe-ordering/internal/microservices/tracker"
	"cafe-ordering/internal/microservices/webhook"
)

// Run serves the HTTP API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, port int) error {
	lg := logger.New("api-service")

	inf, err := bootstrap.Open(ctx, cfg, lg, true)
	if err != nil {
		return err
	}
	defer inf.Close()

	registry, err := companies.NewRegistry(cfg.Delivery, logger.New("delivery"))
	if err != nil {
		return err
	}

	tenantRepos := tenantrepo.New(inf.DB)
	orderRepos := orderrepo.New(inf.DB)
	notifier := notificator.Build(inf.DB, inf.Bot, cfg.Telegram.DefaultChatID, logger.New("notificator"))

	orderSvc, orderH := order.Build(inf.DB, orderservice.Deps{
		Repo:      orderRepos,
		Tenants:   tenantRepos.TenantRepo,
		Companies: registry,
		Notifier:  notifier,
		Locker:    inf.Redis,
		Publisher: inf.MQ,
		Sessions:  inf.Redis,
		Logger:    logger.New("order-service"),
	})
	_, sessionH := session.Build(inf.Redis, tenantRepos.TenantRepo, notifier, sessionservice.Config{
		BotToken:   cfg.Telegram.BotToken,
		MaxAge:     cfg.Session.MaxAge,
		AuthMaxAge: cfg.Session.AuthMaxAge,
	}, logger.New("session"))
	webhookH := webhook.Build(inf.DB, webhook.Deps{
		Orders:    orderRepos.OrderRepo,
		Lifecycle: orderSvc.OrderService,
		Tenants:   tenantRepos.TenantRepo,
		Companies: registry,
		Notifier:  notifier,
		Locker:    inf.Redis,
	}, logger.New("webhook"))
	telegramH := telegram.Build(inf.Bot, orderSvc, telegramservice.Config{
		WebhookURL:    cfg.Telegram.WebhookURL,
		WebhookSecret: cfg.Telegram.WebhookSecret,
		DefaultChatID: cfg.Telegram.DefaultChatID,
	}, logger.New("telegram"))
	trackerH := tracker.Build(inf.DB, tenantRepos.TenantRepo, notifier, logger.New("tracker"))
	menuH := menu.Build(inf.DB, tenantRepos.TenantRepo, logger.New("menu"))
	deliveryH := delivery.Build(registry, tenantRepos.TenantRepo, logger.New("delivery"))
	tenantsH := tenants.Build(tenantRepos, logger.New("tenants"))

	router := NewRouter(lg, cfg.HTTP.RequestTimeout, Routes{
		Root: []Mount{webhookH.Routes, telegramH.Routes},
		API: []Mount{
			orderH.Routes,
			sessionH.Routes,
			trackerH.Routes,
			menuH.Routes,
			func(r chi.Router) { r.Route("/delivery", deliveryH.Routes) },
		},
		Tenants: []Mount{tenantsH.Routes},
		Health: func(ctx context.Context) error {
			if err := inf.DB.Ping(ctx); err != nil {
				return err
			}
			if err := inf.MQ.Ping(); err != nil {
				return err
			}
			return inf.Redis.Ping(ctx).Err()
		},
	})

	lg.Info("service_started", map[string]any{"port": port, "companies": registry.IDs()})
	return httpx.New(":"+strconv.Itoa(port), router).Run(ctx)
}
