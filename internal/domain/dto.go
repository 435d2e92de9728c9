package domain

import (
	"fmt"
	"math"
	"strings"
)

type ItemInput struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// BuildItems validates cart lines and computes per-line and overall totals.
func BuildItems(inputs []ItemInput) ([]OrderItem, float64, error) {
	if len(inputs) == 0 {
		return nil, 0, Missing("items")
	}
	items := make([]OrderItem, 0, len(inputs))
	total := 0.0
	for i, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return nil, 0, &ValidationError{Message: fmt.Sprintf("item %d: name is required", i)}
		}
		if in.Quantity <= 0 {
			return nil, 0, &ValidationError{Message: fmt.Sprintf("invalid quantity for item %s", in.Name)}
		}
		if in.Price < 0 {
			return nil, 0, &ValidationError{Message: fmt.Sprintf("invalid price for item %s", in.Name)}
		}
		line := RoundMoney(float64(in.Quantity) * in.Price)
		items = append(items, OrderItem{
			MenuItemID: in.MenuItemID,
			Name:       in.Name,
			Quantity:   in.Quantity,
			Price:      in.Price,
			Total:      line,
		})
		total += line
	}
	return items, RoundMoney(total), nil
}

func RoundMoney(v float64) float64 { return math.Round(v*100) / 100 }
