package companies

const Grubhub = "grubhub"

var grubhub = definition{
	id:   Grubhub,
	name: "Grubhub",
	vocabulary: map[string]string{
		"accepted":  "CONFIRMED",
		"confirmed": "CONFIRMED",
		"preparing": "IN_PROGRESS",
		"ready":     "READY_FOR_PICKUP",
		"cancelled": "CANCELLED",
		"delivered": "COMPLETE",
	},
	statusPath: func(orderID string) string { return "/pos/v1/orders/" + orderID + "/status" },
	statusBody: func(status string, eta int) any {
		body := map[string]any{"status": status}
		if eta > 0 {
			body["wait_time_in_minutes"] = eta
		}
		return body
	},
	pricesPath: func(storeID string) string { return "/pos/v1/merchant/" + storeID + "/menu/items" },
	pricesBody: func(prices []PriceUpdate) any {
		items := make([]map[string]any, 0, len(prices))
		for _, p := range prices {
			items = append(items, map[string]any{"external_id": p.ItemID, "price": p.Price})
		}
		return map[string]any{"menu_items": items}
	},
	availabilityPath: func(storeID, itemID string) string {
		return "/pos/v1/merchant/" + storeID + "/menu/items/" + itemID + "/availability"
	},
	availabilityBody: func(available bool) any {
		return map[string]any{"available": available}
	},
}
