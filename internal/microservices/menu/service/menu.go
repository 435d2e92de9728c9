package service

import (
	"context"
	"time"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/menu/repository"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

type Menu struct {
	TenantID    string     `json:"tenantId"`
	Currency    string     `json:"currency"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Items       []ItemView `json:"items"`
}

type MenuServiceInterface interface {
	GetMenu(ctx context.Context, tenantID string) (*Menu, error)
}

type MenuService struct {
	repo    repository.MenuRepositoryInterface
	tenants tenants.TenantRepositoryInterface
	lg      *logger.Logger
	now     func() time.Time
}

func NewMenuService(repo repository.MenuRepositoryInterface, tenantRepo tenants.TenantRepositoryInterface, lg *logger.Logger) *MenuService {
	return &MenuService{repo: repo, tenants: tenantRepo, lg: lg, now: time.Now}
}

// GetMenu evaluates schedules on the tenant's local clock.
func (s *MenuService) GetMenu(ctx context.Context, tenantID string) (*Menu, error) {
	if tenantID == "" {
		return nil, domain.Missing("tenantId")
	}
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.repo.ListSchedules(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	now := s.now().In(tenant.Location())
	views := Resolve(items, schedules, now, tenant.Locale)
	s.lg.Debug("menu_resolved", map[string]any{"tenant_id": tenantID, "items": len(views), "schedules": len(schedules)})
	return &Menu{TenantID: tenantID, Currency: tenant.Currency, GeneratedAt: now, Items: views}, nil
}
