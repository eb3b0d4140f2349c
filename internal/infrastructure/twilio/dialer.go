package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voyago-api/internal/config"
	"github.com/voyago-api/internal/domain"
)

// Dialer places outbound voice calls.
type Dialer interface {
	PlaceCall(ctx context.Context, to, twimlURL string) (string, error)
}

type dialer struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromNumber string
}

func NewDialer(cfg *config.Config) Dialer {
	return &dialer{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimRight(cfg.TwilioBaseURL, "/"),
		accountSID: cfg.TwilioAccountSID,
		authToken:  cfg.TwilioAuthToken,
		fromNumber: cfg.TwilioFromNumber,
	}
}

// PlaceCall starts an outbound call to the given number. Twilio fetches
// the call script from twimlURL once the callee picks up. Returns the
// call SID. Failures map to domain.ErrUpstream.
func (d *dialer) PlaceCall(ctx context.Context, to, twimlURL string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", d.fromNumber)
	form.Set("Url", twimlURL)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", d.baseURL, d.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(d.accountSID, d.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio call failed: %w", domain.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("twilio call rejected (%d): %s: %w", resp.StatusCode, body, domain.ErrUpstream)
	}

	var out struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("twilio response malformed: %w", domain.ErrUpstream)
	}
	return out.SID, nil
}
