package companies

const DoorDash = "doordash"

var doorDash = definition{
	id:   DoorDash,
	name: "DoorDash",
	vocabulary: map[string]string{
		"accepted":  "confirmed",
		"confirmed": "confirmed",
		"preparing": "being_prepared",
		"ready":     "ready_for_pickup",
		"cancelled": "cancelled",
		"delivered": "delivered",
	},
	statusPath: func(orderID string) string { return "/marketplace/api/v1/orders/" + orderID },
	statusBody: func(status string, eta int) any {
		body := map[string]any{"order_status": status}
		if eta > 0 {
			body["prep_time"] = eta * 60
		}
		return body
	},
	pricesPath: func(storeID string) string { return "/marketplace/api/v1/stores/" + storeID + "/items" },
	pricesBody: func(prices []PriceUpdate) any {
		items := make([]map[string]any, 0, len(prices))
		for _, p := range prices {
			items = append(items, map[string]any{"merchant_supplied_id": p.ItemID, "price": cents(p.Price)})
		}
		return items
	},
	availabilityPath: func(storeID, itemID string) string {
		return "/marketplace/api/v1/stores/" + storeID + "/items/" + itemID + "/status"
	},
	availabilityBody: func(available bool) any {
		return map[string]any{"is_active": available}
	},
}
