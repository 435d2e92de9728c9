package companies

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/config"
	"cafe-ordering/internal/domain"
)

func newRegistry(t *testing.T, companies ...config.CompanyConfig) *Registry {
	t.Helper()
	r, err := NewRegistry(config.DeliveryConfig{
		SimulatedLatency: time.Millisecond,
		RequestTimeout:   2 * time.Second,
		Companies:        companies,
	}, logger.New("test"))
	require.NoError(t, err)
	return r
}

func TestRegistry(t *testing.T) {
	r := newRegistry(t)
	assert.Equal(t, []string{DoorDash, Grubhub, UberEats}, r.IDs())

	_, err := r.Get("fake_corp")
	var uerr *domain.UnsupportedCompanyError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "Unsupported delivery company", err.Error())

	_, err = NewRegistry(config.DeliveryConfig{Companies: []config.CompanyConfig{{ID: "fake_corp"}}}, logger.New("test"))
	assert.ErrorAs(t, err, &uerr)
}

func TestVocabularies(t *testing.T) {
	tests := []struct {
		company string
		want    map[string]string
	}{
		{UberEats, map[string]string{"accepted": "ACCEPTED", "preparing": "IN_PROGRESS", "ready": "READY", "cancelled": "DENIED"}},
		{DoorDash, map[string]string{"accepted": "confirmed", "preparing": "being_prepared", "ready": "ready_for_pickup", "cancelled": "cancelled"}},
		{Grubhub, map[string]string{"accepted": "CONFIRMED", "preparing": "IN_PROGRESS", "ready": "READY_FOR_PICKUP", "cancelled": "CANCELLED"}},
	}
	r := newRegistry(t)
	for _, tt := range tests {
		t.Run(tt.company, func(t *testing.T) {
			c, err := r.Get(tt.company)
			require.NoError(t, err)
			for in, want := range tt.want {
				got, err := c.UpdateOrderStatus(context.Background(), "ext-1", in, 15)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			_, err = c.UpdateOrderStatus(context.Background(), "ext-1", "teleported", 0)
			var verr *domain.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestSimulated_ContextCancel(t *testing.T) {
	r, err := NewRegistry(config.DeliveryConfig{SimulatedLatency: time.Minute}, logger.New("test"))
	require.NoError(t, err)
	c, _ := r.Get(Grubhub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.UpdateOrderStatus(ctx, "ext-1", "ready", 0)
	var xerr *domain.ExternalCallError
	require.ErrorAs(t, err, &xerr)
	assert.True(t, xerr.Retryable)
}

func TestHTTP_AuthAndBody(t *testing.T) {
	var (
		gotPath, gotKey, gotAuth string
		gotBody                  map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newRegistry(t,
		config.CompanyConfig{ID: DoorDash, BaseURL: srv.URL, AuthType: "api_key", APIKey: "k-1"},
		config.CompanyConfig{ID: UberEats, BaseURL: srv.URL, AuthType: "oauth", Token: "tok"},
	)

	dd, _ := r.Get(DoorDash)
	_, err := dd.UpdateOrderStatus(context.Background(), "ext-9", "ready", 10)
	require.NoError(t, err)
	assert.Equal(t, "/marketplace/api/v1/orders/ext-9", gotPath)
	assert.Equal(t, "k-1", gotKey)
	assert.Equal(t, "ready_for_pickup", gotBody["order_status"])
	assert.Equal(t, float64(600), gotBody["prep_time"])

	ue, _ := r.Get(UberEats)
	require.NoError(t, ue.UpdateAvailability(context.Background(), "store-1", "item-1", false))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "/v2/eats/stores/store-1/menus/items/item-1", gotPath)
}

func TestHTTP_EscapesPathSegments(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := newRegistry(t,
		config.CompanyConfig{ID: UberEats, BaseURL: srv.URL, AuthType: "oauth", Token: "tok"},
		config.CompanyConfig{ID: Grubhub, BaseURL: srv.URL},
	)
	ue, _ := r.Get(UberEats)
	_, err := ue.UpdateOrderStatus(context.Background(), "../admin?x=1", "ready", 0)
	require.NoError(t, err)
	assert.Equal(t, "/v1/eats/orders/..%2Fadmin%3Fx=1/status", gotPath)
	assert.Empty(t, gotQuery)

	gh, _ := r.Get(Grubhub)
	require.NoError(t, gh.UpdateAvailability(context.Background(), "s/1", "i 1", true))
	assert.Equal(t, "/pos/v1/merchant/s%2F1/menu/items/i%201/availability", gotPath)
}

func TestHTTP_ErrorClassification(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
		{http.StatusRequestTimeout, true},
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusServiceUnavailable, true},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.code)
			}))
			defer srv.Close()

			r := newRegistry(t, config.CompanyConfig{ID: Grubhub, BaseURL: srv.URL, AuthType: "basic", Username: "u", Password: "p"})
			c, _ := r.Get(Grubhub)
			err := c.UpdatePrices(context.Background(), "s1", []PriceUpdate{{ItemID: "i1", Price: 9.99}})

			var xerr *domain.ExternalCallError
			require.ErrorAs(t, err, &xerr)
			assert.Equal(t, tt.code, xerr.StatusCode)
			assert.Equal(t, tt.retryable, xerr.Retryable)
		})
	}
}

func TestHTTP_NetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	r := newRegistry(t, config.CompanyConfig{ID: UberEats, BaseURL: url})
	c, _ := r.Get(UberEats)
	_, err := c.UpdateOrderStatus(context.Background(), "ext-1", "accepted", 0)
	var xerr *domain.ExternalCallError
	require.ErrorAs(t, err, &xerr)
	assert.True(t, xerr.Retryable)
}
