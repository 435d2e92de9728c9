package companies

const UberEats = "uber_eats"

var uberEats = definition{
	id:   UberEats,
	name: "Uber Eats",
	vocabulary: map[string]string{
		"accepted":  "ACCEPTED",
		"confirmed": "ACCEPTED",
		"preparing": "IN_PROGRESS",
		"ready":     "READY",
		"cancelled": "DENIED",
		"delivered": "DELIVERED",
	},
	statusPath: func(orderID string) string { return "/v1/eats/orders/" + orderID + "/status" },
	statusBody: func(status string, eta int) any {
		body := map[string]any{"status": status}
		if eta > 0 {
			body["estimated_ready_time_minutes"] = eta
		}
		return body
	},
	pricesPath: func(storeID string) string { return "/v2/eats/stores/" + storeID + "/menus/prices" },
	pricesBody: func(prices []PriceUpdate) any {
		items := make([]map[string]any, 0, len(prices))
		for _, p := range prices {
			// цены в центах
			items = append(items, map[string]any{"id": p.ItemID, "price_info": map[string]any{"price": cents(p.Price)}})
		}
		return map[string]any{"items": items}
	},
	availabilityPath: func(storeID, itemID string) string {
		return "/v2/eats/stores/" + storeID + "/menus/items/" + itemID
	},
	availabilityBody: func(available bool) any {
		return map[string]any{"suspension_info": map[string]any{"suspended": !available}}
	},
}
