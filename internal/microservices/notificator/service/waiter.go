package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cafe-ordering/internal/domain"
)

type WaiterCallResult struct {
	Target     int64  `json:"target"`
	WaiterName string `json:"waiterName,omitempty"`
	Assigned   bool   `json:"assigned"`
	Delivered  bool   `json:"delivered"`
}

// WaiterCallID is the callback entity id of a waiter call: "<tenantId>:<table>".
func WaiterCallID(tenantID string, table int) string {
	return tenantID + ":" + strconv.Itoa(table)
}

func ParseWaiterCallID(id string) (string, int, error) {
	i := strings.LastIndex(id, ":")
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid waiter call id %q", id)
	}
	table, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid waiter call id %q: %w", id, err)
	}
	return id[:i], table, nil
}

// MatchWaiter returns the first active assignment covering table, in the given order.
// Overlapping ranges resolve to whichever comes first (repository order is created_at).
func MatchWaiter(assignments []domain.WaiterAssignment, table int) *domain.WaiterAssignment {
	for i := range assignments {
		if assignments[i].Covers(table) {
			return &assignments[i]
		}
	}
	return nil
}

// NotifyWaiterCall: assigned waiter first (with a copy to the cashier), cashier otherwise.
func (d *Dispatcher) NotifyWaiterCall(ctx context.Context, tenantID string, table int, note string) (WaiterCallResult, error) {
	if table < 1 {
		return WaiterCallResult{}, &domain.ValidationError{Message: "table number must be positive"}
	}
	dest, err := d.ResolveDestinations(ctx, tenantID)
	if err != nil {
		return WaiterCallResult{}, err
	}
	assignments, err := d.waiters.ListByTenant(ctx, tenantID, true)
	if err != nil {
		return WaiterCallResult{}, fmt.Errorf("load waiter assignments: %w", err)
	}

	p := Payload{TenantID: tenantID, Table: table, Note: note}
	w := MatchWaiter(assignments, table)
	if w != nil {
		p.WaiterName = w.WaiterName
	}

	if w != nil && w.ChatID != 0 {
		delivered := d.Dispatch(ctx, KindWaiterCall, p, w.ChatID)

		info := p
		info.Informational = true
		d.Dispatch(ctx, KindWaiterCall, info, dest.Cashier)

		d.lg.Info("waiter_call_routed", map[string]any{
			"tenant_id": tenantID, "table": table, "waiter": w.WaiterName, "delivered": delivered,
		})
		return WaiterCallResult{Target: w.ChatID, WaiterName: w.WaiterName, Assigned: true, Delivered: delivered}, nil
	}

	p.Unassigned = true
	delivered := d.Dispatch(ctx, KindWaiterCall, p, dest.Cashier)
	d.lg.Info("waiter_call_routed", map[string]any{
		"tenant_id": tenantID, "table": table, "waiter": "", "delivered": delivered,
	})
	return WaiterCallResult{Target: dest.Cashier, WaiterName: p.WaiterName, Delivered: delivered}, nil
}
