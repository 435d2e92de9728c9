package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/domain"
	"cafe-ordering/internal/microservices/menu/service"
)

type stubMenu struct{ err error }

func (s stubMenu) GetMenu(_ context.Context, tenantID string) (*service.Menu, error) {
	if s.err != nil {
		return nil, s.err
	}
	if tenantID != "cafe" {
		return nil, domain.NotFound("Restaurant", tenantID)
	}
	return &service.Menu{TenantID: tenantID, Items: []service.ItemView{{
		MenuItem:             domain.MenuItem{ID: "tea", Name: "Tea"},
		IsCurrentlyAvailable: true,
	}}}, nil
}

func get(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGetMenuEndpoint(t *testing.T) {
	rec := get(New(stubMenu{}, logger.New("test")), "/api/v1/tenants/cafe/menu")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, "tea", body.Items[0]["id"])
	assert.Equal(t, true, body.Items[0]["isCurrentlyAvailable"])

	rec = get(New(stubMenu{}, logger.New("test")), "/api/v1/tenants/nope/menu")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(New(stubMenu{err: errors.New("db down")}, logger.New("test")), "/api/v1/tenants/cafe/menu")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
