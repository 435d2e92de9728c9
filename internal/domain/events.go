package domain

import "time"

// StatusEvent is published on orders_topic with routing key "order.<new_status>".
type StatusEvent struct {
	OrderID     string      `json:"order_id"`
	TenantID    string      `json:"tenant_id"`
	Source      string      `json:"source"`
	TableNumber int         `json:"table_number,omitempty"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	ChangedBy   string      `json:"changed_by"`
	Reason      string      `json:"reason,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

func (e StatusEvent) RoutingKey() string { return "order." + string(e.NewStatus) }
