package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cafe-ordering/internal/domain"
)

type TenantRepositoryInterface interface {
	Get(ctx context.Context, id string) (*domain.Tenant, error)
}

type TenantRepository struct {
	db *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) TenantRepositoryInterface {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	var (
		t   domain.Tenant
		raw []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, business_name, telegram_chat_id, table_count, currency, locale, timezone,
		       default_prep_time, delivery_integrations
		FROM tenants WHERE id = $1
	`, id).Scan(&t.ID, &t.BusinessName, &t.TelegramChatID, &t.TableCount, &t.Currency, &t.Locale,
		&t.Timezone, &t.DefaultPrepTime, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Restaurant", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &t.DeliveryIntegrations); err != nil {
			return nil, fmt.Errorf("failed to decode delivery integrations: %w", err)
		}
	}
	return &t, nil
}
