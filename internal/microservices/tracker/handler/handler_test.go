package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/tracker/models"
)

type fakeTracker struct {
	orders   map[string]*domain.Order
	timeline []domain.StatusChange
	// last paging the handler passed through
	limit, offset int
	reportDate    string
	reportErr     error
}

func (f *fakeTracker) GetOrderView(_ context.Context, id string) (*models.OrderView, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.NotFound("Order", id)
	}
	eta := o.CreatedAt.Add(15 * time.Minute)
	return &models.OrderView{Order: o, EstimatedCompletion: &eta}, nil
}

func (f *fakeTracker) GetOrderTimeline(_ context.Context, id string, limit, offset int) ([]domain.StatusChange, error) {
	if _, ok := f.orders[id]; !ok {
		return nil, domain.NotFound("Order", id)
	}
	f.limit, f.offset = limit, offset
	return f.timeline, nil
}

func (f *fakeTracker) DayReport(_ context.Context, tenantID, date string) (*domain.DayReport, bool, error) {
	f.reportDate = date
	if f.reportErr != nil {
		return nil, false, f.reportErr
	}
	return &domain.DayReport{TenantID: tenantID, Date: date, Orders: 3, Revenue: 42.5, Currency: "USD"}, true, nil
}

func newTrackerEnv() (http.Handler, *fakeTracker) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := &fakeTracker{
		orders: map[string]*domain.Order{
			"o-1": {ID: "o-1", TenantID: "cafe", Source: "table", Status: domain.StatusPreparing, CreatedAt: created},
		},
		timeline: []domain.StatusChange{
			{OrderID: "o-1", Status: domain.StatusPending, ChangedBy: "system", ChangedAt: created},
			{OrderID: "o-1", Status: domain.StatusPreparing, ChangedBy: "kitchen", ChangedAt: created.Add(time.Minute)},
		},
	}
	r := chi.NewRouter()
	r.Route("/api/v1", New(f, logger.New("test")).Routes)
	return r, f
}

func get(h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestGetOrder(t *testing.T) {
	h, _ := newTrackerEnv()

	rec, body := get(h, http.MethodGet, "/api/v1/orders/o-1")
	require.Equal(t, http.StatusOK, rec.Code)
	order := body["order"].(map[string]any)
	assert.Equal(t, "o-1", order["id"])
	assert.Equal(t, "preparing", order["status"])
	assert.Equal(t, "2026-03-01T12:15:00Z", order["estimatedCompletion"])

	rec, body = get(h, http.MethodGet, "/api/v1/orders/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestGetTimeline(t *testing.T) {
	h, f := newTrackerEnv()

	rec, body := get(h, http.MethodGet, "/api/v1/orders/o-1/timeline?limit=10&offset=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "o-1", body["orderId"])
	assert.Len(t, body["events"], 2)
	assert.Equal(t, 10, f.limit)
	assert.Equal(t, 5, f.offset)

	// мусор в query даёт дефолты сервиса
	rec, _ = get(h, http.MethodGet, "/api/v1/orders/o-1/timeline?limit=abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.limit)

	rec, _ = get(h, http.MethodGet, "/api/v1/orders/missing/timeline")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDayReport(t *testing.T) {
	h, f := newTrackerEnv()

	rec, body := get(h, http.MethodPost, "/api/v1/tenants/cafe/reports/day?date=2026-03-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2026-03-01", f.reportDate)
	assert.Equal(t, true, body["notified"])
	report := body["report"].(map[string]any)
	assert.Equal(t, "cafe", report["tenantId"])
	assert.Equal(t, float64(3), report["orders"])

	f.reportErr = &domain.ValidationError{Message: "invalid date"}
	rec, body = get(h, http.MethodPost, "/api/v1/tenants/cafe/reports/day?date=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}
