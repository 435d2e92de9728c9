// Package bootstrap opens the shared connections used by every run mode.
package bootstrap

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/config"
	"cafe-ordering/internal/connections/database"
	"cafe-ordering/internal/connections/rabbitmq"
	redisconn "cafe-ordering/internal/connections/redis"
)

type Infra struct {
	DB    *pgxpool.Pool
	MQ    *rabbitmq.Client
	Redis *redisconn.Client
	Bot   *tgbotapi.BotAPI
}

// Open connects Postgres (and applies the schema), RabbitMQ and the Telegram bot.
// Redis is only dialled when withRedis is set.
func Open(ctx context.Context, cfg *config.Config, lg *logger.Logger, withRedis bool) (*Infra, error) {
	inf := &Infra{}
	ok := false
	defer func() {
		if !ok {
			inf.Close()
		}
	}()

	var err error
	if inf.DB, err = database.ConnectDB(ctx, cfg.Database); err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, inf.DB); err != nil {
		return nil, err
	}
	lg.Info("db_connected", map[string]any{"host": cfg.Database.Host, "database": cfg.Database.Database})

	if inf.MQ, err = rabbitmq.Dial(cfg.RabbitMQ); err != nil {
		return nil, fmt.Errorf("rabbitmq connect: %w", err)
	}
	if err := inf.MQ.DeclareAll(); err != nil {
		return nil, err
	}
	lg.Info("rabbitmq_connected", map[string]any{"host": cfg.RabbitMQ.Host, "vhost": cfg.RabbitMQ.VHost})

	if withRedis {
		if inf.Redis, err = redisconn.NewClient(ctx, cfg.Redis); err != nil {
			return nil, err
		}
		lg.Info("redis_connected", nil)
	}

	if inf.Bot, err = NewBot(cfg.Telegram); err != nil {
		return nil, err
	}
	lg.Info("telegram_connected", map[string]any{"bot": inf.Bot.Self.UserName})

	ok = true
	return inf, nil
}

func NewBot(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return bot, nil
}

func (i *Infra) Close() {
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.MQ != nil {
		i.MQ.Close()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
