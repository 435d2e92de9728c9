package testutil

import (
	"context"
	"sort"
	"sync"

	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/delivery/companies"
)

type StatusCall struct {
	OrderID string
	Status  string
	ETA     int
}

// Company records calls; Err fails every call.
type Company struct {
	mu           sync.Mutex
	Name         string
	Err          error
	StatusCalls  []StatusCall
	PriceCalls   [][]companies.PriceUpdate
	Availability map[string]bool
}

func (c *Company) ID() string { return c.Name }

func (c *Company) UpdateOrderStatus(_ context.Context, externalOrderID, status string, eta int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return "", c.Err
	}
	c.StatusCalls = append(c.StatusCalls, StatusCall{OrderID: externalOrderID, Status: status, ETA: eta})
	return "ext_" + status, nil
}

func (c *Company) UpdatePrices(_ context.Context, _ string, prices []companies.PriceUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.PriceCalls = append(c.PriceCalls, prices)
	return nil
}

func (c *Company) UpdateAvailability(_ context.Context, _ string, itemID string, available bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	if c.Availability == nil {
		c.Availability = map[string]bool{}
	}
	c.Availability[itemID] = available
	return nil
}

func (c *Company) Calls() []StatusCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]StatusCall(nil), c.StatusCalls...)
}

type Registry map[string]*Company

func NewRegistry(cs ...*Company) Registry {
	r := Registry{}
	for _, c := range cs {
		r[c.Name] = c
	}
	return r
}

func (r Registry) Get(id string) (companies.Client, error) {
	c, ok := r[id]
	if !ok {
		return nil, &domain.UnsupportedCompanyError{CompanyID: id}
	}
	return c, nil
}

func (r Registry) IDs() []string {
	ids := make([]string, 0, len(r))
	for id := range r {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
