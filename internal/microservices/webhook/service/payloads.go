package service

import (
	"time"

	"cafe-ordering/internal/domain"
)

const (
	EventOrderPlaced      = "order_placed"
	EventOrderCancelled   = "order_cancelled"
	EventPaymentConfirmed = "payment_confirmed"
	EventDeliveryAssigned = "delivery_assigned"
)

type customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type orderPlaced struct {
	OrderID      string             `json:"orderId"`
	RestaurantID string             `json:"restaurantId"`
	Customer     *customer          `json:"customer"`
	Items        []domain.ItemInput `json:"items"`
	Subtotal     *float64           `json:"subtotal"`
	Total        float64            `json:"total"`
	Notes        string             `json:"notes"`
}

// missing returns the first absent required field.
func (p orderPlaced) missing() string {
	switch {
	case p.RestaurantID == "":
		return "restaurantId"
	case p.Customer == nil:
		return "customer"
	case len(p.Items) == 0:
		return "items"
	case p.Subtotal == nil:
		return "subtotal"
	case p.OrderID == "":
		return "orderId"
	}
	return ""
}

type orderRef struct {
	OrderID string `json:"orderId"`
	Reason  string `json:"reason"`
}

type driverAssigned struct {
	OrderID string `json:"orderId"`
	Driver  struct {
		Name    string     `json:"name"`
		Phone   string     `json:"phone"`
		Vehicle string     `json:"vehicle"`
		ETA     *time.Time `json:"eta"`
	} `json:"driver"`
}
