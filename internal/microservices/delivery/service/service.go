package service

import (
	"context"
	"fmt"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/delivery/companies"
	tenants "cafe-ordering/internal/microservices/tenants/repository"
)

type Service struct {
	DeliveryService DeliveryServiceInterface
}

func New(registry companies.RegistryInterface, tenantRepo tenants.TenantRepositoryInterface, lg *logger.Logger) *Service {
	return &Service{DeliveryService: NewDeliveryService(registry, tenantRepo, lg)}
}

// Target identifies a store on a platform; StoreID may be resolved from the tenant's integration.
type Target struct {
	CompanyID string `json:"companyId"`
	TenantID  string `json:"tenantId"`
	StoreID   string `json:"storeId"`
}

type DeliveryServiceInterface interface {
	UpdatePrices(ctx context.Context, t Target, prices []companies.PriceUpdate) error
	UpdateAvailability(ctx context.Context, t Target, itemID string, available bool) error
	Companies() []string
}

type DeliveryService struct {
	registry companies.RegistryInterface
	tenants  tenants.TenantRepositoryInterface
	lg       *logger.Logger
}

func NewDeliveryService(registry companies.RegistryInterface, tenantRepo tenants.TenantRepositoryInterface, lg *logger.Logger) *DeliveryService {
	return &DeliveryService{registry: registry, tenants: tenantRepo, lg: lg}
}

func (s *DeliveryService) Companies() []string { return s.registry.IDs() }

func (s *DeliveryService) resolve(ctx context.Context, t Target) (companies.Client, string, error) {
	if t.CompanyID == "" {
		return nil, "", domain.Missing("companyId")
	}
	client, err := s.registry.Get(t.CompanyID)
	if err != nil {
		return nil, "", err
	}
	store := t.StoreID
	if store == "" && t.TenantID != "" {
		tenant, err := s.tenants.Get(ctx, t.TenantID)
		if err != nil {
			return nil, "", err
		}
		store = tenant.DeliveryIntegrations[t.CompanyID].StoreID
	}
	if store == "" {
		return nil, "", domain.Missing("storeId")
	}
	return client, store, nil
}

func (s *DeliveryService) UpdatePrices(ctx context.Context, t Target, prices []companies.PriceUpdate) error {
	if len(prices) == 0 {
		return domain.Missing("prices")
	}
	for i, p := range prices {
		if p.ItemID == "" {
			return &domain.ValidationError{Required: []string{"itemId"}, Message: fmt.Sprintf("prices[%d]: itemId is required", i)}
		}
		if p.Price < 0 {
			return &domain.ValidationError{Message: fmt.Sprintf("prices[%d]: price must not be negative", i)}
		}
	}
	client, store, err := s.resolve(ctx, t)
	if err != nil {
		return err
	}
	if err := client.UpdatePrices(ctx, store, prices); err != nil {
		s.lg.Error("delivery_prices_update_failed", err, map[string]any{"company": t.CompanyID, "store_id": store})
		return err
	}
	s.lg.Info("delivery_prices_updated", map[string]any{"company": t.CompanyID, "store_id": store, "count": len(prices)})
	return nil
}

func (s *DeliveryService) UpdateAvailability(ctx context.Context, t Target, itemID string, available bool) error {
	if itemID == "" {
		return domain.Missing("itemId")
	}
	client, store, err := s.resolve(ctx, t)
	if err != nil {
		return err
	}
	if err := client.UpdateAvailability(ctx, store, itemID, available); err != nil {
		s.lg.Error("delivery_availability_update_failed", err, map[string]any{"company": t.CompanyID, "item_id": itemID})
		return err
	}
	s.lg.Info("delivery_availability_updated", map[string]any{"company": t.CompanyID, "store_id": store, "item_id": itemID, "available": available})
	return nil
}
