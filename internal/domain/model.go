package domain

import (
	"encoding/json"
	"time"
)

const DefaultPrepTime = 20 // minutes

type Tenant struct {
	ID                   string                         `json:"id"`
	BusinessName         string                         `json:"businessName"`
	TelegramChatID       int64                          `json:"telegramChatId,omitempty"` // legacy single chat
	TableCount           int                            `json:"tableCount"`
	Currency             string                         `json:"currency"`
	Locale               string                         `json:"locale"`
	Timezone             string                         `json:"timezone"`
	DefaultPrepTime      int                            `json:"defaultPrepTime"`
	DeliveryIntegrations map[string]DeliveryIntegration `json:"deliveryIntegrations,omitempty"`
}

type DeliveryIntegration struct {
	Enabled          bool   `json:"enabled"`
	AutoAcceptOrders bool   `json:"autoAcceptOrders"`
	DefaultPrepTime  int    `json:"defaultPrepTime"`
	StoreID          string `json:"storeId,omitempty"`
}

// PrepTimeFor returns the integration prep time, then the tenant's, then DefaultPrepTime.
func (t Tenant) PrepTimeFor(company string) int {
	if in, ok := t.DeliveryIntegrations[company]; ok && in.DefaultPrepTime > 0 {
		return in.DefaultPrepTime
	}
	if t.DefaultPrepTime > 0 {
		return t.DefaultPrepTime
	}
	return DefaultPrepTime
}

func (t Tenant) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type Department struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	ChatID      int64     `json:"chatId"`
	AdminChatID int64     `json:"adminChatId,omitempty"` // cashier only
	CreatedAt   time.Time `json:"createdAt"`
}

type WaiterAssignment struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	WaiterName  string    `json:"waiterName"`
	StartTable  int       `json:"startTable"`
	EndTable    int       `json:"endTable"`
	ChatID      int64     `json:"chatId,omitempty"`
	ShiftStart  string    `json:"shiftStart,omitempty"`
	ShiftEnd    string    `json:"shiftEnd,omitempty"`
	WorkingDays []int     `json:"workingDays,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (w WaiterAssignment) Covers(table int) bool {
	return w.IsActive && table >= w.StartTable && table <= w.EndTable
}

type MenuItem struct {
	ID          string   `json:"id"`
	TenantID    string   `json:"tenantId"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	IsAvailable bool     `json:"isAvailable"`
	ScheduleIDs []string `json:"scheduleIds,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

type MenuSchedule struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	Name       string `json:"name"`
	StartTime  string `json:"startTime"` // HH:MM
	EndTime    string `json:"endTime"`   // HH:MM, exclusive
	DaysOfWeek []int  `json:"daysOfWeek"`
	IsActive   bool   `json:"isActive"`
}

type OrderItem struct {
	MenuItemID string  `json:"menuItemId,omitempty"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Total      float64 `json:"total"`
}

type DriverInfo struct {
	Name    string     `json:"name"`
	Phone   string     `json:"phone,omitempty"`
	Vehicle string     `json:"vehicle,omitempty"`
	ETA     *time.Time `json:"eta,omitempty"`
}

type DeliveryInfo struct {
	Company string      `json:"company"`
	OrderID string      `json:"orderId"`
	Address string      `json:"address,omitempty"`
	Driver  *DriverInfo `json:"driver,omitempty"`
}

const (
	SourceTable    = "table"
	SourceDelivery = "delivery"
)

type Order struct {
	ID                string               `json:"id"`
	TenantID          string               `json:"tenantId"`
	Source            string               `json:"source"`
	TableNumber       int                  `json:"tableNumber,omitempty"`
	CustomerName      string               `json:"customerName,omitempty"`
	CustomerPhone     string               `json:"customerPhone,omitempty"`
	Items             []OrderItem          `json:"items"`
	Subtotal          float64              `json:"subtotal"`
	Total             float64              `json:"total"`
	Status            OrderStatus          `json:"status"`
	PaymentStatus     PaymentStatus        `json:"paymentStatus"`
	EstimatedPrepTime int                  `json:"estimatedPrepTime,omitempty"`
	Notes             string               `json:"notes,omitempty"`
	CancelReason      string               `json:"cancelReason,omitempty"`
	DeliveryInfo      *DeliveryInfo        `json:"deliveryInfo,omitempty"`
	StatusTimestamps  map[string]time.Time `json:"statusTimestamps,omitempty"`
	Version           int                  `json:"version"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

// StampStatus records the "{status}At" timestamp.
func (o *Order) StampStatus(s OrderStatus, at time.Time) {
	if o.StatusTimestamps == nil {
		o.StatusTimestamps = map[string]time.Time{}
	}
	o.StatusTimestamps[string(s)+"At"] = at
}

type PendingOrder struct {
	ID             string             `json:"id"`
	TenantID       string             `json:"tenantId"`
	TableNumber    int                `json:"tableNumber"`
	SessionID      string             `json:"sessionId,omitempty"`
	TelegramUserID int64              `json:"telegramUserId,omitempty"`
	Items          []OrderItem        `json:"items"`
	Total          float64            `json:"total"`
	Notes          string             `json:"notes,omitempty"`
	Status         PendingOrderStatus `json:"status"`
	OrderID        string             `json:"orderId,omitempty"`
	RejectReason   string             `json:"rejectReason,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

type TableBill struct {
	ID          string      `json:"id"`
	TenantID    string      `json:"tenantId"`
	TableNumber int         `json:"tableNumber"`
	OrderIDs    []string    `json:"orderIds"`
	Items       []OrderItem `json:"items"`
	Total       float64     `json:"total"`
	Status      BillStatus  `json:"status"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type PaymentConfirmation struct {
	ID            string       `json:"id"`
	TenantID      string       `json:"tenantId"`
	TableNumber   int          `json:"tableNumber"`
	BillID        string       `json:"billId"`
	Amount        float64      `json:"amount"`
	Method        string       `json:"method"` // cash | card | transfer
	ScreenshotURL string       `json:"screenshotUrl,omitempty"`
	Status        ReviewStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	ReviewedAt    *time.Time   `json:"reviewedAt,omitempty"`
}

type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Username  string `json:"username,omitempty"`
	PhotoURL  string `json:"photoUrl,omitempty"`
	AuthDate  int64  `json:"authDate"`
}

type CafeTableSession struct {
	SessionID    string        `json:"sessionId"`
	TenantID     string        `json:"tenantId"`
	TableNumber  int           `json:"tableNumber"`
	TelegramUser *TelegramUser `json:"telegramUser,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	ExpiresAt    time.Time     `json:"expiresAt"`
}

type Feedback struct {
	SessionID   string    `json:"sessionId"`
	TenantID    string    `json:"tenantId"`
	TableNumber int       `json:"tableNumber"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type DeliveryWebhookEvent struct {
	ID              string          `json:"id"`
	Company         string          `json:"company"`
	Type            string          `json:"type"`
	ExternalEventID string          `json:"externalEventId,omitempty"`
	Payload         json.RawMessage `json:"payload"`
	Processed       bool            `json:"processed"`
	ProcessedAt     *time.Time      `json:"processedAt,omitempty"`
	Error           string          `json:"error,omitempty"`
	ReceivedAt      time.Time       `json:"receivedAt"`
}

type StatusUpdateLog struct {
	ID              int64     `json:"id"`
	OrderID         string    `json:"orderId"`
	Company         string    `json:"company,omitempty"`
	RequestedStatus string    `json:"requestedStatus"`
	MappedStatus    string    `json:"mappedStatus"`
	ExternalStatus  string    `json:"externalStatus,omitempty"`
	EstimatedTime   int       `json:"estimatedTime,omitempty"`
	ChangedBy       string    `json:"changedBy"`
	Success         bool      `json:"success"`
	Error           string    `json:"error,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// StatusChange is one row of an order's timeline.
type StatusChange struct {
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status"`
	ChangedBy string      `json:"changedBy"`
	Reason    string      `json:"reason,omitempty"`
	ChangedAt time.Time   `json:"changedAt"`
}

type DayReport struct {
	TenantID  string         `json:"tenantId"`
	Date      string         `json:"date"`
	Orders    int            `json:"orders"`
	Revenue   float64        `json:"revenue"`
	Cancelled int            `json:"cancelled"`
	ByStatus  map[string]int `json:"byStatus"`
	BySource  map[string]int `json:"bySource"`
	Currency  string         `json:"currency"`
}
