package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	notify "cafe-ordering/internal/microservices/notificator/service"
	lifecycle "cafe-ordering/internal/microservices/order/service"
	"cafe-ordering/internal/testutil"
)

const cashierChat int64 = 500

type fixture struct {
	svc     *WebhookService
	events  *testutil.EventLog
	orders  *testutil.OrderStore
	company *testutil.Company
	sender  *testutil.Sender
	locker  *testutil.Locker
}

func newFixture(autoAccept bool, orders ...domain.Order) *fixture {
	lg := logger.New("test")
	store := testutil.NewTenantStore(domain.Tenant{
		ID:              "cafe",
		BusinessName:    "Cafe",
		Currency:        "USD",
		DefaultPrepTime: 30,
		DeliveryIntegrations: map[string]domain.DeliveryIntegration{
			"uber_eats": {Enabled: true, AutoAcceptOrders: autoAccept, DefaultPrepTime: 18},
		},
	})
	store.Departments = []domain.Department{{TenantID: "cafe", Role: domain.RoleCashier, ChatID: cashierChat}}

	f := &fixture{
		events:  &testutil.EventLog{},
		orders:  testutil.NewOrderStore(orders...),
		company: &testutil.Company{Name: "uber_eats"},
		sender:  &testutil.Sender{},
		locker:  testutil.NewLocker(),
	}
	registry := testutil.NewRegistry(f.company)
	dispatcher := notify.NewDispatcher(store, store.DepartmentRepo(), store.WaiterRepo(), f.sender, 0, lg)
	orderSvc := lifecycle.NewOrderService(f.orders, store, registry, f.locker, &testutil.Publisher{}, lg)
	f.svc = NewWebhookService(f.events, f.orders, orderSvc, store, registry, dispatcher, f.locker, lg)
	return f
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func placed(t *testing.T) json.RawMessage {
	return raw(t, map[string]any{
		"orderId":      "ext-1",
		"restaurantId": "cafe",
		"customer":     map[string]any{"name": "Bob", "phone": "+100", "address": "1 Main St"},
		"items":        []map[string]any{{"name": "Pizza", "quantity": 2, "price": 10}},
		"subtotal":     20,
		"total":        23.5,
	})
}

func existing(status domain.OrderStatus) domain.Order {
	return domain.Order{
		ID: "o1", TenantID: "cafe", Source: domain.SourceDelivery, Status: status, Version: 1,
		DeliveryInfo: &domain.DeliveryInfo{Company: "uber_eats", OrderID: "ext-1"},
	}
}

func (f *fixture) only(t *testing.T) domain.Order {
	t.Helper()
	require.Len(t, f.orders.Orders, 1)
	for _, o := range f.orders.Orders {
		return o
	}
	return domain.Order{}
}

func TestOrderPlaced(t *testing.T) {
	f := newFixture(false)
	res, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventOrderPlaced, placed(t))
	require.NoError(t, err)
	assert.False(t, res.Duplicate)

	o := f.only(t)
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, "Bob", o.CustomerName)
	assert.Equal(t, 20.0, o.Subtotal)
	assert.Equal(t, 23.5, o.Total)
	assert.Equal(t, &domain.DeliveryInfo{Company: "uber_eats", OrderID: "ext-1", Address: "1 Main St"}, o.DeliveryInfo)
	assert.Empty(t, f.company.Calls())

	require.Equal(t, []int64{cashierChat}, f.sender.ChatIDs())
	msg := f.sender.Messages()[0].(tgbotapi.MessageConfig)
	kb := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	assert.Equal(t, "approve_delivery_"+o.ID, *kb.InlineKeyboard[0][0].CallbackData)

	events := f.events.All()
	require.Len(t, events, 1)
	assert.True(t, events[0].Processed)
	assert.NotNil(t, events[0].ProcessedAt)
	assert.Equal(t, res.EventID, events[0].ID)
}

func TestOrderPlaced_AutoAccept(t *testing.T) {
	f := newFixture(true)
	_, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventOrderPlaced, placed(t))
	require.NoError(t, err)

	o := f.only(t)
	assert.Equal(t, domain.StatusConfirmed, o.Status)
	assert.Equal(t, 18, o.EstimatedPrepTime)
	assert.Equal(t, []testutil.StatusCall{{OrderID: "ext-1", Status: "accepted", ETA: 18}}, f.company.Calls())

	require.Equal(t, []int64{cashierChat}, f.sender.ChatIDs())
	msg := f.sender.Messages()[0].(tgbotapi.MessageConfig)
	assert.Nil(t, msg.ReplyMarkup, "auto-accepted order must not carry accept/reject buttons")
}

func TestOrderPlaced_AutoAcceptFailureKeepsPending(t *testing.T) {
	f := newFixture(true)
	f.company.Err = testutil.ErrBoom
	_, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventOrderPlaced, placed(t))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, f.only(t).Status)
	assert.True(t, f.events.All()[0].Processed)

	msg := f.sender.Messages()[0].(tgbotapi.MessageConfig)
	assert.NotNil(t, msg.ReplyMarkup)
}

func TestOrderPlaced_Validation(t *testing.T) {
	f := newFixture(false)
	data := raw(t, map[string]any{"restaurantId": "cafe", "items": []any{}})

	res, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventOrderPlaced, data)
	perr, ok := IsProcessingError(err)
	require.True(t, ok)
	assert.Equal(t, res.EventID, perr.EventID)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"customer"}, verr.Required)

	ev := f.events.All()[0]
	assert.False(t, ev.Processed)
	assert.Equal(t, "Missing required fields: customer", ev.Error)
	assert.Empty(t, f.orders.Orders)
}

func TestOrderPlaced_UnknownRestaurantAndCompany(t *testing.T) {
	f := newFixture(false)
	data := raw(t, map[string]any{
		"orderId": "x", "restaurantId": "ghost", "customer": map[string]any{"name": "A"},
		"items": []map[string]any{{"name": "Tea", "quantity": 1, "price": 1}}, "subtotal": 1,
	})
	_, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventOrderPlaced, data)
	assert.EqualError(t, err, "Restaurant not found")

	_, err = f.svc.Ingest(context.Background(), "fake_corp", "", EventOrderPlaced, placed(t))
	assert.EqualError(t, err, "Unsupported delivery company")
}

func TestOrderCancelled(t *testing.T) {
	f := newFixture(false, existing(domain.StatusConfirmed))
	_, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventOrderCancelled,
		raw(t, map[string]any{"orderId": "ext-1", "reason": "out of stock"}))
	require.NoError(t, err)

	o := f.orders.Snapshot("o1")
	assert.Equal(t, domain.StatusCancelled, o.Status)
	assert.Equal(t, "out of stock", o.CancelReason)
	assert.Empty(t, f.company.Calls(), "platform already knows")

	require.Equal(t, []int64{cashierChat}, f.sender.ChatIDs())
	assert.Contains(t, f.sender.Messages()[0].(tgbotapi.MessageConfig).Text, "out of stock")
}

func TestOrderCancelled_UnknownOrder(t *testing.T) {
	f := newFixture(false)
	res, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventOrderCancelled,
		raw(t, map[string]any{"orderId": "ext-1", "reason": "out of stock"}))
	require.Error(t, err)
	assert.Equal(t, "Order not found", err.Error())

	ev := f.events.All()[0]
	assert.Equal(t, res.EventID, ev.ID)
	assert.False(t, ev.Processed)
	assert.Equal(t, "Order not found", ev.Error)
}

func TestPaymentConfirmed(t *testing.T) {
	f := newFixture(false, existing(domain.StatusConfirmed))
	_, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventPaymentConfirmed, raw(t, map[string]any{"orderId": "ext-1"}))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, f.orders.Snapshot("o1").PaymentStatus)

	// absent order is a silent success
	_, err = f.svc.Ingest(context.Background(), "uber_eats", "", EventPaymentConfirmed, raw(t, map[string]any{"orderId": "nope"}))
	require.NoError(t, err)
	assert.True(t, f.events.All()[1].Processed)
}

func TestDeliveryAssigned(t *testing.T) {
	f := newFixture(false, existing(domain.StatusReady))
	eta := time.Date(2024, 6, 1, 18, 45, 0, 0, time.UTC)
	_, err := f.svc.Ingest(context.Background(), "uber_eats", "", EventDeliveryAssigned, raw(t, map[string]any{
		"orderId": "ext-1",
		"driver":  map[string]any{"name": "Dee", "phone": "+7", "vehicle": "bike", "eta": eta},
	}))
	require.NoError(t, err)

	d := f.orders.Snapshot("o1").DeliveryInfo.Driver
	require.NotNil(t, d)
	assert.Equal(t, "Dee", d.Name)
	assert.True(t, d.ETA.Equal(eta))
	assert.Contains(t, f.sender.Messages()[0].(tgbotapi.MessageConfig).Text, "Driver: Dee")

	_, err = f.svc.Ingest(context.Background(), "uber_eats", "", EventDeliveryAssigned, raw(t, map[string]any{"orderId": "nope"}))
	assert.NoError(t, err)
}

func TestUnknownType(t *testing.T) {
	f := newFixture(false)
	_, err := f.svc.Ingest(context.Background(), "uber_eats", "", "menu_synced", raw(t, map[string]any{"x": 1}))
	assert.EqualError(t, err, "Unsupported event type: menu_synced")
	assert.Equal(t, "menu_synced", f.events.All()[0].Type)
}

func TestIngest_MissingTopLevel(t *testing.T) {
	f := newFixture(false)
	_, err := f.svc.Ingest(context.Background(), "", "", "", nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"company", "type", "data"}, verr.Required)
	_, isProc := IsProcessingError(err)
	assert.False(t, isProc)
	assert.Empty(t, f.events.All())
}

func TestIngest_Dedup(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	first, err := f.svc.Ingest(ctx, "uber_eats", "evt-1", EventOrderPlaced, placed(t))
	require.NoError(t, err)
	second, err := f.svc.Ingest(ctx, "uber_eats", "evt-1", EventOrderPlaced, placed(t))
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.EventID, second.EventID)
	assert.Len(t, f.events.All(), 1)
	assert.Len(t, f.orders.Orders, 1)
	assert.Len(t, f.sender.Messages(), 1)
}

func TestIngest_RetryOfFailedEventReusesID(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()
	data := raw(t, map[string]any{"orderId": "ext-1"})

	first, err := f.svc.Ingest(ctx, "uber_eats", "evt-2", EventOrderCancelled, data)
	require.Error(t, err)

	require.NoError(t, f.orders.Create(ctx, &domain.Order{
		ID: "o1", TenantID: "cafe", Status: domain.StatusConfirmed,
		DeliveryInfo: &domain.DeliveryInfo{Company: "uber_eats", OrderID: "ext-1"},
	}, "test"))

	second, err := f.svc.Ingest(ctx, "uber_eats", "evt-2", EventOrderCancelled, data)
	require.NoError(t, err)
	assert.Equal(t, first.EventID, second.EventID)
	assert.False(t, second.Duplicate)

	events := f.events.All()
	require.Len(t, events, 1)
	assert.True(t, events[0].Processed)
	assert.Empty(t, events[0].Error)
}

func TestIngest_LockHeld(t *testing.T) {
	f := newFixture(false)
	f.locker.Hold(LockKey("uber_eats", "evt-3"))
	_, err := f.svc.Ingest(context.Background(), "uber_eats", "evt-3", EventOrderPlaced, placed(t))
	assert.ErrorIs(t, err, domain.ErrLocked)
	assert.Empty(t, f.events.All())
}
