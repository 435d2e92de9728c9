package domain

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// MapStatus translates the status requested from a delivery platform into the
// internal vocabulary. Unknown values pass through unchanged.
func MapStatus(s string) OrderStatus {
	switch s {
	case "accepted":
		return StatusConfirmed
	case "preparing":
		return StatusPreparing
	case "ready":
		return StatusReady
	case "cancelled":
		return StatusCancelled
	default:
		return OrderStatus(s)
	}
}

// IsFinal reports whether no further transitions are allowed.
func (s OrderStatus) IsFinal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

var statusRank = map[OrderStatus]int{
	StatusPending:   0,
	StatusConfirmed: 1,
	StatusPreparing: 2,
	StatusReady:     3,
	StatusDelivered: 4,
}

// CanMoveTo reports whether next is a forward step from s. Cancellation is
// allowed from any open status; values outside the lifecycle are not ordered.
func (s OrderStatus) CanMoveTo(next OrderStatus) bool {
	if s.IsFinal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	from, ok := statusRank[s]
	to, known := statusRank[next]
	if !ok || !known {
		return true
	}
	return to > from
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type PendingOrderStatus string

const (
	PendingAwaiting PendingOrderStatus = "pending"
	PendingApproved PendingOrderStatus = "approved"
	PendingRejected PendingOrderStatus = "rejected"
)

type BillStatus string

const (
	BillActive    BillStatus = "active"
	BillPaid      BillStatus = "paid"
	BillCancelled BillStatus = "cancelled"
)

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Role of a department. One closed enum for every call site.
type Role string

const (
	RoleKitchen Role = "kitchen"
	RoleCashier Role = "cashier"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleKitchen, RoleCashier, RoleAdmin:
		return true
	}
	return false
}

var PaymentMethods = map[string]bool{"cash": true, "card": true, "transfer": true}
