// Package testutil holds in-memory doubles shared by package tests.
package testutil

import (
	"context"
	"sync"
	"time"

	"cafe-ordering/internal/domain"
)

type TenantStore struct {
	mu          sync.Mutex
	Tenants     map[string]domain.Tenant
	Departments []domain.Department
	Waiters     []domain.WaiterAssignment
}

func NewTenantStore(tenants ...domain.Tenant) *TenantStore {
	s := &TenantStore{Tenants: map[string]domain.Tenant{}}
	for _, t := range tenants {
		s.Tenants[t.ID] = t
	}
	return s
}

func (s *TenantStore) Get(_ context.Context, id string) (*domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.Tenants[id]
	if !ok {
		return nil, domain.NotFound("Restaurant", id)
	}
	return &t, nil
}

// DepartmentRepo and WaiterRepo share the store so tests can seed one struct.
func (s *TenantStore) DepartmentRepo() *DepartmentRepo { return &DepartmentRepo{s} }

func (s *TenantStore) WaiterRepo() *WaiterRepo { return &WaiterRepo{s} }

type DepartmentRepo struct{ s *TenantStore }

func (r *DepartmentRepo) ListByTenant(_ context.Context, tenantID string) ([]domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Department
	for _, d := range r.s.Departments {
		if d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *DepartmentRepo) Get(_ context.Context, tenantID, id string) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.Departments {
		if d.TenantID == tenantID && d.ID == id {
			return &d, nil
		}
	}
	return nil, domain.NotFound("Department", id)
}

func (r *DepartmentRepo) Create(_ context.Context, d *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.CreatedAt = time.Now()
	r.s.Departments = append(r.s.Departments, *d)
	return nil
}

func (r *DepartmentRepo) Update(_ context.Context, d *domain.Department) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.Departments {
		if r.s.Departments[i].ID == d.ID && r.s.Departments[i].TenantID == d.TenantID {
			r.s.Departments[i] = *d
			return nil
		}
	}
	return domain.NotFound("Department", d.ID)
}

func (r *DepartmentRepo) Delete(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, d := range r.s.Departments {
		if d.TenantID == tenantID && d.ID == id {
			r.s.Departments = append(r.s.Departments[:i], r.s.Departments[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("Department", id)
}

type WaiterRepo struct{ s *TenantStore }

func (r *WaiterRepo) ListByTenant(_ context.Context, tenantID string, activeOnly bool) ([]domain.WaiterAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.WaiterAssignment
	for _, w := range r.s.Waiters {
		if w.TenantID == tenantID && (!activeOnly || w.IsActive) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *WaiterRepo) Get(_ context.Context, tenantID, id string) (*domain.WaiterAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.Waiters {
		if w.TenantID == tenantID && w.ID == id {
			return &w, nil
		}
	}
	return nil, domain.NotFound("Waiter assignment", id)
}

func (r *WaiterRepo) Create(_ context.Context, w *domain.WaiterAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w.CreatedAt = time.Now()
	r.s.Waiters = append(r.s.Waiters, *w)
	return nil
}

func (r *WaiterRepo) Update(_ context.Context, w *domain.WaiterAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.Waiters {
		if r.s.Waiters[i].ID == w.ID && r.s.Waiters[i].TenantID == w.TenantID {
			r.s.Waiters[i] = *w
			return nil
		}
	}
	return domain.NotFound("Waiter assignment", w.ID)
}

func (r *WaiterRepo) Delete(_ context.Context, tenantID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, w := range r.s.Waiters {
		if w.TenantID == tenantID && w.ID == id {
			r.s.Waiters = append(r.s.Waiters[:i], r.s.Waiters[i+1:]...)
			return nil
		}
	}
	return domain.NotFound("Waiter assignment", id)
}
