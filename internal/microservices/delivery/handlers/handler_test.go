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
	"cafe-ordering/internal/microservices/delivery/companies"
	"cafe-ordering/internal/microservices/delivery/service"
	"cafe-ordering/internal/testutil"
)

type env struct {
	router  http.Handler
	company *testutil.Company
}

func newEnv() *env {
	lg := logger.New("test")
	e := &env{company: &testutil.Company{Name: "doordash"}}
	tenants := testutil.NewTenantStore(domain.Tenant{
		ID:                   "cafe",
		DeliveryIntegrations: map[string]domain.DeliveryIntegration{"doordash": {Enabled: true, StoreID: "store-9"}},
	})
	r := chi.NewRouter()
	r.Route("/api/v1/delivery", New(service.New(testutil.NewRegistry(e.company, &testutil.Company{Name: "grubhub"}), tenants, lg), lg).Routes)
	e.router = r
	return e
}

func (e *env) do(method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestCompanies(t *testing.T) {
	rec, body := newEnv().do(http.MethodGet, "/api/v1/delivery/companies", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"doordash", "grubhub"}, body["companies"])
}

func TestUpdatePrices_UnsupportedCompany(t *testing.T) {
	e := newEnv()
	rec, _ := e.do(http.MethodPost, "/api/v1/delivery/prices",
		`{"companyId":"fake_corp","storeId":"s1","prices":[{"itemId":"i1","price":5}]}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Unsupported delivery company"}`, rec.Body.String())
	assert.Empty(t, e.company.PriceCalls)
}

func TestUpdatePrices(t *testing.T) {
	e := newEnv()
	rec, body := e.do(http.MethodPost, "/api/v1/delivery/prices",
		`{"companyId":"doordash","tenantId":"cafe","prices":[{"itemId":"i1","price":5},{"itemId":"i2","price":7.5}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["updated"])
	require.Len(t, e.company.PriceCalls, 1)
	assert.Equal(t, []companies.PriceUpdate{{ItemID: "i1", Price: 5}, {ItemID: "i2", Price: 7.5}}, e.company.PriceCalls[0])
}

func TestUpdatePrices_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		required []any
	}{
		{"malformed json", `{"companyId":`, nil},
		{"no prices", `{"companyId":"doordash","storeId":"s1"}`, []any{"prices"}},
		{"no company", `{"storeId":"s1","prices":[{"itemId":"i1","price":1}]}`, []any{"companyId"}},
		{"no store", `{"companyId":"grubhub","prices":[{"itemId":"i1","price":1}]}`, []any{"storeId"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := newEnv().do(http.MethodPost, "/api/v1/delivery/prices", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["success"])
			if tt.required != nil {
				assert.Equal(t, tt.required, body["required"])
			}
		})
	}
}

func TestUpdateAvailability(t *testing.T) {
	e := newEnv()
	rec, body := e.do(http.MethodPost, "/api/v1/delivery/availability",
		`{"companyId":"doordash","tenantId":"cafe","itemId":"i1","available":false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]bool{"i1": false}, e.company.Availability)
}

func TestUpdateAvailability_MissingFields(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		required []any
	}{
		{"both", `{"companyId":"doordash","storeId":"s1"}`, []any{"itemId", "available"}},
		{"itemId", `{"companyId":"doordash","storeId":"s1","available":true}`, []any{"itemId"}},
		{"available", `{"companyId":"doordash","storeId":"s1","itemId":"i1"}`, []any{"available"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			rec, body := e.do(http.MethodPost, "/api/v1/delivery/availability", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.required, body["required"])
			assert.Empty(t, e.company.Availability)
		})
	}
}

func TestUpdateAvailability_PlatformFailure(t *testing.T) {
	e := newEnv()
	e.company.Err = &domain.ExternalCallError{Target: "doordash", StatusCode: 503, Retryable: true}
	rec, body := e.do(http.MethodPost, "/api/v1/delivery/availability",
		`{"companyId":"doordash","storeId":"s1","itemId":"i1","available":true}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, true, body["retryable"])
}
