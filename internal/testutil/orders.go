package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cafe-ordering/internal/domain"
)

// OrderStore mimics the Postgres order repository, including optimistic versioning.
type OrderStore struct {
	mu       sync.Mutex
	Orders   map[string]domain.Order
	Timeline []domain.StatusChange
	Updates  []domain.StatusUpdateLog
	SaveErr  error
}

func NewOrderStore(orders ...domain.Order) *OrderStore {
	s := &OrderStore{Orders: map[string]domain.Order{}}
	for _, o := range orders {
		s.Orders[o.ID] = o
	}
	return s
}

func (s *OrderStore) Create(_ context.Context, o *domain.Order, changedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(o, changedBy)
}

func (s *OrderStore) insert(o *domain.Order, changedBy string) error {
	if _, ok := s.Orders[o.ID]; ok {
		return domain.ErrConflict
	}
	if o.DeliveryInfo != nil {
		for _, ex := range s.Orders {
			if ex.DeliveryInfo != nil && ex.DeliveryInfo.Company == o.DeliveryInfo.Company &&
				ex.DeliveryInfo.OrderID == o.DeliveryInfo.OrderID {
				return domain.ErrConflict
			}
		}
	}
	o.Version = 1
	s.Orders[o.ID] = clone(*o)
	s.Timeline = append(s.Timeline, domain.StatusChange{OrderID: o.ID, Status: o.Status, ChangedBy: changedBy, ChangedAt: o.CreatedAt})
	return nil
}

func (s *OrderStore) Get(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return nil, domain.NotFound("Order", id)
	}
	c := clone(o)
	return &c, nil
}

func (s *OrderStore) FindByDelivery(_ context.Context, company, externalOrderID string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.DeliveryInfo != nil && o.DeliveryInfo.Company == company && o.DeliveryInfo.OrderID == externalOrderID {
			c := clone(o)
			return &c, nil
		}
	}
	return nil, domain.NotFound("Order", externalOrderID)
}

func (s *OrderStore) Save(_ context.Context, o *domain.Order, change *domain.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	cur, ok := s.Orders[o.ID]
	if !ok {
		return domain.NotFound("Order", o.ID)
	}
	if cur.Version != o.Version {
		return domain.ErrVersionConflict
	}
	o.Version++
	s.Orders[o.ID] = clone(*o)
	if change != nil {
		c := *change
		c.OrderID = o.ID
		s.Timeline = append(s.Timeline, c)
	}
	return nil
}

func (s *OrderStore) LogStatusUpdate(_ context.Context, l domain.StatusUpdateLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updates = append(s.Updates, l)
	return nil
}

func (s *OrderStore) Snapshot(id string) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.Orders[id])
}

func clone(o domain.Order) domain.Order {
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	if o.DeliveryInfo != nil {
		di := *o.DeliveryInfo
		o.DeliveryInfo = &di
	}
	if o.StatusTimestamps != nil {
		ts := make(map[string]time.Time, len(o.StatusTimestamps))
		for k, v := range o.StatusTimestamps {
			ts[k] = v
		}
		o.StatusTimestamps = ts
	}
	return o
}

// TableStore backs both the pending-order and payment repositories.
type TableStore struct {
	mu       sync.Mutex
	Orders   *OrderStore
	Pending  map[string]domain.PendingOrder
	Bills    map[string]domain.TableBill
	Payments map[string]domain.PaymentConfirmation
}

func NewTableStore(orders *OrderStore) *TableStore {
	return &TableStore{
		Orders:   orders,
		Pending:  map[string]domain.PendingOrder{},
		Bills:    map[string]domain.TableBill{},
		Payments: map[string]domain.PaymentConfirmation{},
	}
}

func (s *TableStore) PendingRepo() *PendingRepo { return &PendingRepo{s} }

func (s *TableStore) PaymentRepo() *PaymentRepo { return &PaymentRepo{s} }

type PendingRepo struct{ s *TableStore }

func (r *PendingRepo) Create(_ context.Context, p *domain.PendingOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Pending[p.ID] = *p
	return nil
}

func (r *PendingRepo) Get(_ context.Context, id string) (*domain.PendingOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Pending[id]
	if !ok {
		return nil, domain.NotFound("Pending order", id)
	}
	return &p, nil
}

func (r *PendingRepo) Approve(_ context.Context, pendingID string, o *domain.Order, changedBy string) (*domain.TableBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Pending[pendingID]
	if !ok {
		return nil, domain.NotFound("Pending order", pendingID)
	}
	if p.Status != domain.PendingAwaiting {
		return nil, domain.ErrInvalidState
	}
	r.s.Orders.mu.Lock()
	err := r.s.Orders.insert(o, changedBy)
	r.s.Orders.mu.Unlock()
	if err != nil {
		return nil, err
	}

	bill, found := r.s.activeBill(p.TenantID, p.TableNumber)
	if !found {
		bill = domain.TableBill{
			ID:          uuid.NewString(),
			TenantID:    p.TenantID,
			TableNumber: p.TableNumber,
			Status:      domain.BillActive,
			CreatedAt:   o.CreatedAt,
		}
	}
	bill.OrderIDs = append(bill.OrderIDs, o.ID)
	bill.Items = append(bill.Items, o.Items...)
	bill.Total = domain.RoundMoney(bill.Total + o.Total)
	bill.UpdatedAt = o.CreatedAt
	r.s.Bills[bill.ID] = bill

	p.Status = domain.PendingApproved
	p.OrderID = o.ID
	r.s.Pending[pendingID] = p
	return &bill, nil
}

func (r *PendingRepo) Reject(_ context.Context, pendingID, reason string) (*domain.PendingOrder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Pending[pendingID]
	if !ok {
		return nil, domain.NotFound("Pending order", pendingID)
	}
	if p.Status != domain.PendingAwaiting {
		return nil, domain.ErrInvalidState
	}
	p.Status = domain.PendingRejected
	p.RejectReason = reason
	r.s.Pending[pendingID] = p
	return &p, nil
}

func (s *TableStore) activeBill(tenantID string, table int) (domain.TableBill, bool) {
	for _, b := range s.Bills {
		if b.TenantID == tenantID && b.TableNumber == table && b.Status == domain.BillActive {
			return b, true
		}
	}
	return domain.TableBill{}, false
}

type PaymentRepo struct{ s *TableStore }

func (r *PaymentRepo) ActiveBill(_ context.Context, tenantID string, table int) (*domain.TableBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.activeBill(tenantID, table)
	if !ok {
		return nil, domain.NotFound("Bill", fmt.Sprintf("%s:%d", tenantID, table))
	}
	return &b, nil
}

func (r *PaymentRepo) Create(_ context.Context, p *domain.PaymentConfirmation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Payments[p.ID] = *p
	return nil
}

func (r *PaymentRepo) Get(_ context.Context, id string) (*domain.PaymentConfirmation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Payments[id]
	if !ok {
		return nil, domain.NotFound("Payment", id)
	}
	return &p, nil
}

func (r *PaymentRepo) Approve(_ context.Context, id string, at time.Time) (*domain.PaymentConfirmation, *domain.TableBill, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Payments[id]
	if !ok {
		return nil, nil, domain.NotFound("Payment", id)
	}
	if p.Status != domain.ReviewPending {
		return nil, nil, domain.ErrInvalidState
	}
	p.Status = domain.ReviewApproved
	p.ReviewedAt = &at
	r.s.Payments[id] = p

	b := r.s.Bills[p.BillID]
	b.Status = domain.BillPaid
	b.UpdatedAt = at
	r.s.Bills[b.ID] = b

	r.s.Orders.mu.Lock()
	for _, oid := range b.OrderIDs {
		o := r.s.Orders.Orders[oid]
		o.PaymentStatus = domain.PaymentPaid
		r.s.Orders.Orders[oid] = o
	}
	r.s.Orders.mu.Unlock()
	return &p, &b, nil
}

func (r *PaymentRepo) Reject(_ context.Context, id string, at time.Time) (*domain.PaymentConfirmation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.Payments[id]
	if !ok {
		return nil, domain.NotFound("Payment", id)
	}
	if p.Status != domain.ReviewPending {
		return nil, domain.ErrInvalidState
	}
	p.Status = domain.ReviewRejected
	p.ReviewedAt = &at
	r.s.Payments[id] = p
	return &p, nil
}
