package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	notify "cafe-ordering/internal/microservices/notificator/service"
	orders "cafe-ordering/internal/microservices/order/service"
	"cafe-ordering/internal/testutil"
)

type rawCall struct {
	endpoint string
	params   tgbotapi.Params
}

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	raw      []rawCall
	reqErr   error
	resp     *tgbotapi.APIResponse
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	if b.reqErr != nil {
		return nil, b.reqErr
	}
	if b.resp != nil {
		return b.resp, nil
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.raw = append(b.raw, rawCall{endpoint: endpoint, params: params})
	if b.reqErr != nil {
		return nil, b.reqErr
	}
	if b.resp != nil {
		return b.resp, nil
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// answers returns the texts of every answered callback query.
func (b *fakeBot) answers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb.Text)
		}
	}
	return out
}

type fixture struct {
	svc     *TelegramService
	bot     *fakeBot
	orders  *testutil.OrderStore
	tables  *orders.TableService
	company *testutil.Company
}

func newFixture(t *testing.T, seed ...domain.Order) *fixture {
	t.Helper()
	lg := logger.New("test")
	tenants := testutil.NewTenantStore(domain.Tenant{ID: "cafe", TableCount: 10, DefaultPrepTime: 18})
	tenants.Departments = []domain.Department{{ID: "d1", TenantID: "cafe", Role: domain.RoleCashier, ChatID: 100}}
	dispatcher := notify.NewDispatcher(tenants, tenants.DepartmentRepo(), tenants.WaiterRepo(), &testutil.Sender{}, 0, lg)

	sessions := testutil.NewSessions()
	require.NoError(t, sessions.SaveSession(context.Background(),
		&domain.CafeTableSession{SessionID: "s1", TenantID: "cafe", TableNumber: 3}, time.Hour))

	f := &fixture{bot: &fakeBot{}, orders: testutil.NewOrderStore(seed...), company: &testutil.Company{Name: "glovo"}}
	tables := testutil.NewTableStore(f.orders)
	pub := &testutil.Publisher{}
	orderSvc := orders.NewOrderService(f.orders, tenants, testutil.NewRegistry(f.company), testutil.NewLocker(), pub, lg)
	f.tables = orders.NewTableService(tables.PendingRepo(), tables.PaymentRepo(), tenants, sessions, dispatcher, pub, lg)
	f.svc = NewTelegramService(f.bot, orderSvc, f.tables, Config{WebhookURL: "https://example.test/telegram/webhook", DefaultChatID: 7}, lg)
	return f
}

func callback(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cq1",
		Data:    data,
		From:    &tgbotapi.User{FirstName: "Bob"},
		Message: &tgbotapi.Message{MessageID: 55, Chat: &tgbotapi.Chat{ID: 100}},
	}}
}

func TestCallback_PendingOrderAndPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	po, err := f.tables.CreatePendingOrder(ctx, "s1", []domain.ItemInput{{Name: "Tea", Quantity: 2, Price: 3}}, "")
	require.NoError(t, err)

	f.svc.HandleUpdate(ctx, callback("approve_order_"+po.ID))
	require.Len(t, f.orders.Orders, 1)
	for _, o := range f.orders.Orders {
		assert.Equal(t, domain.StatusConfirmed, o.Status)
		assert.Equal(t, 18, o.EstimatedPrepTime)
	}

	pay, err := f.tables.SubmitPayment(ctx, "s1", "card", "")
	require.NoError(t, err)
	f.svc.HandleUpdate(ctx, callback("approve_payment_"+pay.ID))

	answers := f.bot.answers()
	require.Len(t, answers, 2)
	assert.Contains(t, answers[0], "approved")
	assert.Equal(t, "Payment confirmed", answers[1])

	// the keyboard is cleared after each successful action
	var edits int
	for _, c := range f.bot.requests {
		if _, ok := c.(tgbotapi.EditMessageReplyMarkupConfig); ok {
			edits++
		}
	}
	assert.Equal(t, 2, edits)
}

func TestCallback_RejectPendingOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	po, err := f.tables.CreatePendingOrder(ctx, "s1", []domain.ItemInput{{Name: "Tea", Quantity: 1, Price: 3}}, "")
	require.NoError(t, err)

	f.svc.HandleUpdate(ctx, callback("reject_order_"+po.ID))
	assert.Equal(t, []string{"Order rejected"}, f.bot.answers())

	// second press on a decided order
	f.svc.HandleUpdate(ctx, callback("reject_order_"+po.ID))
	assert.Contains(t, f.bot.answers()[1], "⚠️")
}

func TestCallback_Delivery(t *testing.T) {
	f := newFixture(t,
		domain.Order{ID: "d1", TenantID: "cafe", Source: domain.SourceDelivery, Status: domain.StatusPending, Version: 1,
			DeliveryInfo: &domain.DeliveryInfo{Company: "glovo", OrderID: "g1"}},
		domain.Order{ID: "d2", TenantID: "cafe", Source: domain.SourceDelivery, Status: domain.StatusPending, Version: 1,
			DeliveryInfo: &domain.DeliveryInfo{Company: "glovo", OrderID: "g2"}},
	)
	ctx := context.Background()

	f.svc.HandleUpdate(ctx, callback("approve_delivery_d1"))
	f.svc.HandleUpdate(ctx, callback("reject_delivery_d2"))
	f.svc.HandleUpdate(ctx, callback("ready_order_d1"))

	assert.Equal(t, domain.StatusReady, f.orders.Snapshot("d1").Status)
	assert.Equal(t, domain.StatusCancelled, f.orders.Snapshot("d2").Status)

	calls := f.company.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "accepted", calls[0].Status)
	assert.Equal(t, 18, calls[0].ETA)
	assert.Equal(t, "cancelled", calls[1].Status)
	assert.Equal(t, "ready", calls[2].Status)
	assert.Equal(t, []string{"Accepted, ready in 18 min", "Delivery order rejected", "Marked ready"}, f.bot.answers())
}

func TestCallback_StaleDeliveryApprove(t *testing.T) {
	f := newFixture(t,
		domain.Order{ID: "d1", TenantID: "cafe", Source: domain.SourceDelivery, Status: domain.StatusReady, Version: 1,
			DeliveryInfo: &domain.DeliveryInfo{Company: "glovo", OrderID: "g1"}},
	)
	f.svc.HandleUpdate(context.Background(), callback("approve_delivery_d1"))

	assert.Equal(t, domain.StatusReady, f.orders.Snapshot("d1").Status)
	assert.Empty(t, f.company.Calls())
	require.Len(t, f.bot.answers(), 1)
	assert.Contains(t, f.bot.answers()[0], "⚠️")
}

func TestShortError_KeepsRunesWhole(t *testing.T) {
	msg := shortError(errors.New(strings.Repeat("ж", 300)))
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, 180, utf8.RuneCountInString(msg))

	assert.Equal(t, "boom", shortError(errors.New("boom")))
}

func TestCallback_Waiter(t *testing.T) {
	f := newFixture(t)
	f.svc.HandleUpdate(context.Background(), callback("ack_waiter_"+notify.WaiterCallID("cafe", 4)))

	assert.Equal(t, []string{"Noted"}, f.bot.answers())
	require.Len(t, f.bot.sent, 1)
	msg := f.bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(100), msg.ChatID)
	assert.Equal(t, "👌 Bob is on the way to table 4", msg.Text)
}

func TestCallback_Malformed(t *testing.T) {
	f := newFixture(t)
	f.svc.HandleUpdate(context.Background(), callback("garbage"))
	f.svc.HandleUpdate(context.Background(), callback("ready_payment_p1"))

	answers := f.bot.answers()
	require.Len(t, answers, 2)
	for _, a := range answers {
		assert.Contains(t, a, "malformed callback data")
	}
	assert.Empty(t, f.bot.sent)
}

func TestChatIDCommand(t *testing.T) {
	f := newFixture(t)
	f.svc.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     "/chatid",
		Chat:     &tgbotapi.Chat{ID: -1001},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 7}},
	}})
	require.Len(t, f.bot.sent, 1)
	assert.Equal(t, "Chat id: -1001", f.bot.sent[0].(tgbotapi.MessageConfig).Text)
}

func TestRegisterWebhook(t *testing.T) {
	f := newFixture(t)
	f.svc.cfg.WebhookSecret = "s3cret"
	ctx := context.Background()

	url, err := f.svc.RegisterWebhook(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/telegram/webhook", url)
	require.Len(t, f.bot.raw, 1)
	assert.Equal(t, "setWebhook", f.bot.raw[0].endpoint)
	assert.Equal(t, tgbotapi.Params{"url": url, "secret_token": "s3cret"}, f.bot.raw[0].params)

	f.bot.resp = &tgbotapi.APIResponse{Ok: false, ErrorCode: 400, Description: "bad webhook"}
	_, err = f.svc.RegisterWebhook(ctx, "https://other.test/hook")
	var ext *domain.ExternalCallError
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, 400, ext.StatusCode)

	f.bot.resp = nil
	f.bot.reqErr = &tgbotapi.Error{Code: 401, Message: "Unauthorized"}
	_, err = f.svc.RegisterWebhook(ctx, "https://other.test/hook")
	require.ErrorAs(t, err, &ext)
	assert.Equal(t, 401, ext.StatusCode)
	assert.False(t, ext.Retryable)

	f.bot.reqErr = errors.New("network")
	_, err = f.svc.RegisterWebhook(ctx, "https://other.test/hook")
	require.ErrorAs(t, err, &ext)
	assert.True(t, ext.Retryable)
}

func TestRegisterWebhook_NoSecret(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RegisterWebhook(context.Background(), "https://other.test/hook")
	require.NoError(t, err)
	_, ok := f.bot.raw[0].params["secret_token"]
	assert.False(t, ok)
}

func TestSendTestMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendTestMessage(ctx, 0, "")
	require.NoError(t, err)
	msg := f.bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(7), msg.ChatID)
	assert.Equal(t, defaultTestText, msg.Text)

	_, err = f.svc.SendTestMessage(ctx, 9, "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(9), f.bot.sent[1].(tgbotapi.MessageConfig).ChatID)

	f.svc.cfg.DefaultChatID = 0
	_, err = f.svc.SendTestMessage(ctx, 0, "")
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
