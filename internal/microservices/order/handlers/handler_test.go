package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	notify "cafe-ordering/internal/microservices/notificator/service"
	"cafe-ordering/internal/microservices/order/service"
	"cafe-ordering/internal/testutil"
)

type env struct {
	router  http.Handler
	orders  *testutil.OrderStore
	company *testutil.Company
	locker  *testutil.Locker
}

func newEnv(t *testing.T) *env {
	t.Helper()
	lg := logger.New("test")
	tenants := testutil.NewTenantStore(domain.Tenant{ID: "cafe", TableCount: 10})
	sessions := testutil.NewSessions()
	require.NoError(t, sessions.SaveSession(context.Background(),
		&domain.CafeTableSession{SessionID: "s1", TenantID: "cafe", TableNumber: 2}, time.Hour))

	e := &env{
		orders: testutil.NewOrderStore(domain.Order{
			ID: "o1", TenantID: "cafe", Source: domain.SourceDelivery, Status: domain.StatusPending, Version: 1,
			DeliveryInfo: &domain.DeliveryInfo{Company: "grubhub", OrderID: "g-1"},
		}),
		company: &testutil.Company{Name: "grubhub"},
		locker:  testutil.NewLocker(),
	}
	tables := testutil.NewTableStore(e.orders)
	dispatcher := notify.NewDispatcher(tenants, tenants.DepartmentRepo(), tenants.WaiterRepo(), &testutil.Sender{}, 1, lg)
	pub := &testutil.Publisher{}

	svc := &service.Service{
		OrderService: service.NewOrderService(e.orders, tenants, testutil.NewRegistry(e.company), e.locker, pub, lg),
		TableService: service.NewTableService(tables.PendingRepo(), tables.PaymentRepo(), tenants, sessions, dispatcher, pub, lg),
	}
	r := chi.NewRouter()
	r.Route("/api/v1", New(svc, lg).Routes)
	e.router = r
	return e
}

func (e *env) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestUpdateStatusEndpoint(t *testing.T) {
	e := newEnv(t)

	rec, body := e.do(http.MethodPost, "/api/v1/delivery/orders/o1/status", `{"status":"accepted","estimatedTime":20}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, "ext_accepted", body["externalStatus"])
	assert.Equal(t, float64(20), body["estimatedTime"])

	rec, body = e.do(http.MethodPost, "/api/v1/delivery/orders/o1/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"status"}, body["required"])

	rec, body = e.do(http.MethodPost, "/api/v1/delivery/orders/zzz/status", `{"status":"ready"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Order not found", body["error"])

	rec, _ = e.do(http.MethodPost, "/api/v1/delivery/orders/o1/status", `{"status":"ready","companyId":"glovo"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.locker.Hold(service.OrderLockKey("o1"))
	rec, _ = e.do(http.MethodPost, "/api/v1/delivery/orders/o1/status", `{"status":"ready"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUpdateStatusEndpoint_PlatformDown(t *testing.T) {
	e := newEnv(t)
	e.company.Err = &domain.ExternalCallError{Target: "grubhub", StatusCode: 503, Retryable: true}

	rec, body := e.do(http.MethodPost, "/api/v1/delivery/orders/o1/status", `{"status":"ready"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, true, body["retryable"])
	assert.Equal(t, domain.StatusPending, e.orders.Snapshot("o1").Status)
}

func TestTableEndpoints(t *testing.T) {
	e := newEnv(t)

	rec, body := e.do(http.MethodPost, "/api/v1/pending-orders",
		`{"sessionId":"s1","items":[{"name":"Soup","quantity":1,"price":4}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pending := body["pendingOrder"].(map[string]any)
	id := pending["id"].(string)

	rec, _ = e.do(http.MethodPost, "/api/v1/pending-orders", `{"sessionId":"s1","items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = e.do(http.MethodPost, "/api/v1/pending-orders", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = e.do(http.MethodPost, "/api/v1/pending-orders/"+id+"/approve", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = e.do(http.MethodPost, "/api/v1/pending-orders/"+id+"/approve", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = e.do(http.MethodGet, "/api/v1/sessions/s1/bill", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), body["bill"].(map[string]any)["total"])

	rec, body = e.do(http.MethodPost, "/api/v1/payment-confirmations", `{"sessionId":"s1","method":"cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pid := body["payment"].(map[string]any)["id"].(string)

	rec, _ = e.do(http.MethodPost, "/api/v1/payment-confirmations/"+pid+"/reject", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = e.do(http.MethodPost, "/api/v1/payment-confirmations/"+pid+"/approve", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}
