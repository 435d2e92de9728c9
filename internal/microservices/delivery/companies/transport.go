package companies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"cafe-ordering/internal/common/logger"
	"cafe-ordering/internal/config"
	"cafe-ordering/internal/domain"
)

type transport struct {
	cfg     config.CompanyConfig
	client  *http.Client
	latency time.Duration
	lg      *logger.Logger
}

func newTransport(cfg config.CompanyConfig, latency, timeout time.Duration, lg *logger.Logger) *transport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := &http.Client{Timeout: timeout}

	client := base
	if cfg.AuthType == "oauth" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		if cfg.TokenURL != "" {
			cc := clientcredentials.Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenURL:     cfg.TokenURL,
				Scopes:       cfg.Scopes,
			}
			client = cc.Client(ctx)
		} else {
			client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}))
		}
		client.Timeout = timeout
	}
	return &transport{cfg: cfg, client: client, latency: latency, lg: lg}
}

func (t *transport) simulated() bool { return t.cfg.BaseURL == "" }

// call performs one request. No retries here: Retryable only classifies the failure.
func (t *transport) call(ctx context.Context, method, path string, body any) error {
	if t.simulated() {
		select {
		case <-time.After(t.latency):
			t.lg.Debug("delivery_call_simulated", map[string]any{"company": t.cfg.ID, "method": method, "path": path})
			return nil
		case <-ctx.Done():
			return &domain.ExternalCallError{Target: t.cfg.ID, Retryable: true, Err: ctx.Err()}
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", t.cfg.ID, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimSuffix(t.cfg.BaseURL, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", t.cfg.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	switch t.cfg.AuthType {
	case "api_key":
		req.Header.Set("X-API-Key", t.cfg.APIKey)
	case "basic":
		req.SetBasicAuth(t.cfg.Username, t.cfg.Password)
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return &domain.ExternalCallError{Target: t.cfg.ID, Retryable: true, Err: err}
	}
	defer resp.Body.Close()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	fields := map[string]any{
		"company": t.cfg.ID, "method": method, "path": path,
		"status": resp.StatusCode, "duration_ms": time.Since(start).Milliseconds(),
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		t.lg.Debug("delivery_call_ok", fields)
		return nil
	}
	cerr := &domain.ExternalCallError{
		Target:     t.cfg.ID,
		StatusCode: resp.StatusCode,
		Retryable:  retryable(resp.StatusCode),
		Err:        errors.New(strings.TrimSpace(fmt.Sprintf("%s %s", resp.Status, snippet))),
	}
	t.lg.Error("delivery_call_failed", cerr, fields)
	return cerr
}

// 408, 429 and 5xx may succeed later; any other 4xx will not.
func retryable(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500
}

func cents(v float64) int64 { return int64(math.Round(v * 100)) }
