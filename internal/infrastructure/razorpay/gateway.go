package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voyago-api/internal/config"
	"github.com/voyago-api/internal/domain"
)

// RefundResult is the gateway's record of a processed refund.
type RefundResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Gateway talks to the payment provider.
type Gateway interface {
	Refund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]string) (*RefundResult, error)
}

type gateway struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
}

func NewGateway(cfg *config.Config) Gateway {
	return &gateway{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(cfg.RazorpayBaseURL, "/"),
		keyID:      cfg.RazorpayKeyID,
		keySecret:  cfg.RazorpayKeySecret,
	}
}

// Refund issues a refund against a captured payment. amountMinor is in the
// currency's smallest unit. Failures map to domain.ErrUpstream; the caller
// decides whether to retry.
func (g *gateway) Refund(ctx context.Context, paymentID string, amountMinor int64, notes map[string]string) (*RefundResult, error) {
	payload := map[string]interface{}{"amount": amountMinor}
	if len(notes) > 0 {
		payload["notes"] = notes
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/payments/%s/refund", g.baseURL, paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refund request failed: %w", domain.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("refund rejected (%d): %s: %w", resp.StatusCode, raw, domain.ErrUpstream)
	}

	var out RefundResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("refund response malformed: %w", domain.ErrUpstream)
	}
	return &out, nil
}
