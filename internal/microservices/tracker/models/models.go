package models

import (
	"time"

	"cafe-ordering/internal/domain"
)

// OrderView is an order plus fields derived for display.
type OrderView struct {
	*domain.Order
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
}

// DayRow is one (status, source) bucket of a day's orders.
type DayRow struct {
	Status  domain.OrderStatus
	Source  string
	Count   int
	Revenue float64
}
