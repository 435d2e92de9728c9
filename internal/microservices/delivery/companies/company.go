package companies

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/config"
	"cafe-ordering/internal/domain"
)

type PriceUpdate struct {
	ItemID string  `json:"itemId"`
	Price  float64 `json:"price"`
}

// Client talks to one delivery platform.
type Client interface {
	ID() string
	// UpdateOrderStatus sends status in the platform's own wording and returns that wording.
	UpdateOrderStatus(ctx context.Context, externalOrderID, status string, eta int) (string, error)
	UpdatePrices(ctx context.Context, storeID string, prices []PriceUpdate) error
	UpdateAvailability(ctx context.Context, storeID, itemID string, available bool) error
}

type RegistryInterface interface {
	Get(id string) (Client, error)
	IDs() []string
}

// company is the shared implementation; each platform only supplies a definition.
type company struct {
	def       definition
	transport *transport
}

type definition struct {
	id         string
	name       string
	vocabulary map[string]string // requested status -> platform wording

	// path builders get already escaped segments
	statusPath       func(orderID string) string
	statusBody       func(status string, eta int) any
	pricesPath       func(storeID string) string
	pricesBody       func(prices []PriceUpdate) any
	availabilityPath func(storeID, itemID string) string
	availabilityBody func(available bool) any
}

func (c *company) ID() string { return c.def.id }

// ExternalStatus translates a requested status into the platform vocabulary.
func (c *company) ExternalStatus(status string) (string, error) {
	ext, ok := c.def.vocabulary[status]
	if !ok {
		return "", &domain.ValidationError{Message: fmt.Sprintf("Unsupported status %q for %s", status, c.def.name)}
	}
	return ext, nil
}

func (c *company) UpdateOrderStatus(ctx context.Context, externalOrderID, status string, eta int) (string, error) {
	if externalOrderID == "" {
		return "", domain.Missing("orderId")
	}
	ext, err := c.ExternalStatus(status)
	if err != nil {
		return "", err
	}
	if err := c.transport.call(ctx, "PATCH", c.def.statusPath(url.PathEscape(externalOrderID)), c.def.statusBody(ext, eta)); err != nil {
		return "", err
	}
	return ext, nil
}

func (c *company) UpdatePrices(ctx context.Context, storeID string, prices []PriceUpdate) error {
	return c.transport.call(ctx, "PUT", c.def.pricesPath(url.PathEscape(storeID)), c.def.pricesBody(prices))
}

func (c *company) UpdateAvailability(ctx context.Context, storeID, itemID string, available bool) error {
	return c.transport.call(ctx, "PATCH", c.def.availabilityPath(url.PathEscape(storeID), url.PathEscape(itemID)), c.def.availabilityBody(available))
}

var definitions = map[string]definition{
	UberEats: uberEats,
	DoorDash: doorDash,
	Grubhub:  grubhub,
}

type Registry struct {
	clients map[string]Client
}

// NewRegistry builds one client per known platform. Platforms without a base_url are simulated.
func NewRegistry(cfg config.DeliveryConfig, lg *logger.Logger) (*Registry, error) {
	byID := map[string]config.CompanyConfig{}
	for _, cc := range cfg.Companies {
		if _, ok := definitions[cc.ID]; !ok {
			return nil, &domain.UnsupportedCompanyError{CompanyID: cc.ID}
		}
		byID[cc.ID] = cc
	}

	r := &Registry{clients: map[string]Client{}}
	for id, def := range definitions {
		cc := byID[id]
		cc.ID = id
		r.clients[id] = &company{def: def, transport: newTransport(cc, cfg.SimulatedLatency, cfg.RequestTimeout, lg)}
	}
	return r, nil
}

func (r *Registry) Get(id string) (Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, &domain.UnsupportedCompanyError{CompanyID: id}
	}
	return c, nil
}

func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
