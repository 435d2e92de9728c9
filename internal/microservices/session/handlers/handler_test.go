package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	notify "cafe-ordering/internal/microservices/notificator/service"
	"cafe-ordering/internal/microservices/session/service"
	"cafe-ordering/internal/testutil"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	lg := logger.New("test")
	tenants := testutil.NewTenantStore(domain.Tenant{ID: "cafe", TableCount: 8})
	tenants.Departments = []domain.Department{
		{ID: "d1", TenantID: "cafe", Role: domain.RoleCashier, ChatID: 100},
		{ID: "d2", TenantID: "cafe", Role: domain.RoleAdmin, ChatID: 300},
	}
	dispatcher := notify.NewDispatcher(tenants, tenants.DepartmentRepo(), tenants.WaiterRepo(), &testutil.Sender{}, 0, lg)
	svc := service.New(service.NewSessionService(testutil.NewSessions(), tenants, dispatcher, service.Config{BotToken: "t"}, lg))

	r := chi.NewRouter()
	r.Route("/api/v1", New(svc, lg).Routes)
	return r
}

func do(h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestSessionFlow(t *testing.T) {
	h := newRouter(t)

	rec, body := do(h, http.MethodPost, "/api/v1/sessions", `{"startParam":"cafe_t5"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sess := body["session"].(map[string]any)
	id := sess["sessionId"].(string)
	assert.Equal(t, float64(5), sess["tableNumber"])

	rec, body = do(h, http.MethodGet, "/api/v1/sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cafe", body["session"].(map[string]any)["tenantId"])

	rec, _ = do(h, http.MethodPost, "/api/v1/sessions/"+id+"/feedback", `{"rating":4,"comment":"ok"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = do(h, http.MethodPost, "/api/v1/sessions/"+id+"/feedback", `{"rating":4}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = do(h, http.MethodPost, "/api/v1/waiter-calls", `{"sessionId":"`+id+`","note":"water"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	call := body["waiterCall"].(map[string]any)
	assert.Equal(t, false, call["assigned"])
	assert.Equal(t, float64(100), call["target"])
}

func TestStartFromQuery(t *testing.T) {
	h := newRouter(t)

	rec, body := do(h, http.MethodPost, "/api/v1/sessions?cafe=cafe&table=2", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), body["session"].(map[string]any)["tableNumber"])

	rec, body = do(h, http.MethodPost, "/api/v1/sessions?cafe=cafe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []any{"table"}, body["required"])

	rec, _ = do(h, http.MethodPost, "/api/v1/sessions?cafe=cafe&table=9", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionErrors(t *testing.T) {
	h := newRouter(t)

	rec, _ := do(h, http.MethodGet, "/api/v1/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(h, http.MethodPost, "/api/v1/sessions", `{"cafeId":"cafe","table":1,"telegramAuth":{"id":"1","auth_date":"1","hash":"00"}}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(h, http.MethodPost, "/api/v1/sessions/nope/feedback", `{"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(h, http.MethodPost, "/api/v1/waiter-calls", `{bad`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
