package service

import (
	"fmt"
	"sort"
	"strings"

	"cafe-ordering/internal/domain"
)

func money(v float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

func writeItems(b *strings.Builder, items []domain.OrderItem, currency string) {
	for _, it := range items {
		fmt.Fprintf(b, "• %s × %d = %s\n", it.Name, it.Quantity, money(it.Total, currency))
	}
}

func orderLabel(o *domain.Order) string {
	if o.Source == domain.SourceDelivery && o.DeliveryInfo != nil {
		return fmt.Sprintf("%s #%s", o.DeliveryInfo.Company, o.DeliveryInfo.OrderID)
	}
	if o.TableNumber > 0 {
		return fmt.Sprintf("table %d", o.TableNumber)
	}
	return o.ID
}

func render(kind Kind, p Payload) (string, error) {
	var b strings.Builder
	switch kind {
	case KindNewOrder:
		switch {
		case p.Order != nil:
			o := p.Order
			fmt.Fprintf(&b, "🛵 New delivery order (%s)\n", orderLabel(o))
			if o.CustomerName != "" {
				fmt.Fprintf(&b, "Customer: %s", o.CustomerName)
				if o.CustomerPhone != "" {
					fmt.Fprintf(&b, ", %s", o.CustomerPhone)
				}
				b.WriteString("\n")
			}
			if o.DeliveryInfo != nil && o.DeliveryInfo.Address != "" {
				fmt.Fprintf(&b, "Address: %s\n", o.DeliveryInfo.Address)
			}
			writeItems(&b, o.Items, p.Currency)
			fmt.Fprintf(&b, "Total: %s", money(o.Total, p.Currency))
			if o.Notes != "" {
				fmt.Fprintf(&b, "\nNotes: %s", o.Notes)
			}
		case p.Pending != nil:
			po := p.Pending
			fmt.Fprintf(&b, "🧾 New order from table %d\n", po.TableNumber)
			writeItems(&b, po.Items, p.Currency)
			fmt.Fprintf(&b, "Total: %s", money(po.Total, p.Currency))
			if po.Notes != "" {
				fmt.Fprintf(&b, "\nNotes: %s", po.Notes)
			}
		default:
			return "", fmt.Errorf("%s: order is required", kind)
		}

	case KindPaymentConfirmation:
		if p.Payment == nil {
			return "", fmt.Errorf("%s: payment is required", kind)
		}
		pc := p.Payment
		fmt.Fprintf(&b, "💳 Payment from table %d\nAmount: %s\nMethod: %s",
			pc.TableNumber, money(pc.Amount, p.Currency), pc.Method)
		if pc.Status != domain.ReviewPending {
			fmt.Fprintf(&b, "\nStatus: %s", pc.Status)
		}

	case KindWaiterCall:
		fmt.Fprintf(&b, "🔔 Table %d is calling a waiter", p.Table)
		if p.WaiterName != "" {
			fmt.Fprintf(&b, "\nAssigned: %s", p.WaiterName)
		} else if p.Unassigned {
			b.WriteString("\nNo waiter assigned to this table")
		}
		if p.Note != "" {
			fmt.Fprintf(&b, "\nNote: %s", p.Note)
		}

	case KindCancellation:
		if p.Order == nil {
			return "", fmt.Errorf("%s: order is required", kind)
		}
		fmt.Fprintf(&b, "🚫 Order cancelled (%s)", orderLabel(p.Order))
		if p.Reason != "" {
			fmt.Fprintf(&b, "\nReason: %s", p.Reason)
		}

	case KindDriverAssigned:
		if p.Order == nil || p.Order.DeliveryInfo == nil || p.Order.DeliveryInfo.Driver == nil {
			return "", fmt.Errorf("%s: driver is required", kind)
		}
		dr := p.Order.DeliveryInfo.Driver
		fmt.Fprintf(&b, "🚗 Driver assigned (%s)\nDriver: %s", orderLabel(p.Order), dr.Name)
		if dr.Phone != "" {
			fmt.Fprintf(&b, ", %s", dr.Phone)
		}
		if dr.Vehicle != "" {
			fmt.Fprintf(&b, "\nVehicle: %s", dr.Vehicle)
		}
		if dr.ETA != nil {
			fmt.Fprintf(&b, "\nETA: %s", dr.ETA.Format("15:04"))
		}

	case KindDayReport:
		if p.Report == nil {
			return "", fmt.Errorf("%s: report is required", kind)
		}
		r := p.Report
		fmt.Fprintf(&b, "📊 Day report %s\nOrders: %d\nRevenue: %s\nCancelled: %d",
			r.Date, r.Orders, money(r.Revenue, r.Currency), r.Cancelled)
		keys := make([]string, 0, len(r.BySource))
		for k := range r.BySource {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n%s: %d", k, r.BySource[k])
		}

	case KindFeedback:
		if p.Feedback == nil {
			return "", fmt.Errorf("%s: feedback is required", kind)
		}
		f := p.Feedback
		fmt.Fprintf(&b, "⭐ Feedback from table %d: %s (%d/5)",
			f.TableNumber, strings.Repeat("★", f.Rating), f.Rating)
		if f.Comment != "" {
			fmt.Fprintf(&b, "\n%s", f.Comment)
		}

	case KindKitchenTicket:
		if p.Order == nil {
			return "", fmt.Errorf("%s: order is required", kind)
		}
		o := p.Order
		fmt.Fprintf(&b, "👨‍🍳 To prepare (%s)\n", orderLabel(o))
		for _, it := range o.Items {
			fmt.Fprintf(&b, "• %s × %d\n", it.Name, it.Quantity)
		}
		if o.EstimatedPrepTime > 0 {
			fmt.Fprintf(&b, "Prep time: %d min", o.EstimatedPrepTime)
		}
		if o.Notes != "" {
			fmt.Fprintf(&b, "\nNotes: %s", o.Notes)
		}

	case KindOrderReady:
		if p.Order == nil {
			return "", fmt.Errorf("%s: order is required", kind)
		}
		fmt.Fprintf(&b, "✅ Order ready (%s)", orderLabel(p.Order))

	default:
		return "", fmt.Errorf("unknown notification kind %q", kind)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
