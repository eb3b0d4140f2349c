package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/voyago-api/internal/config"
	"github.com/voyago-api/internal/domain"
)

// Resolver turns an IP address into a coarse geolocation.
type Resolver interface {
	Lookup(ctx context.Context, ip string) (*domain.GeoLocation, error)
}

type resolver struct {
	httpClient *http.Client
	baseURL    string
}

func NewResolver(cfg *config.Config) Resolver {
	return &resolver{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    strings.TrimRight(cfg.GeoIPBaseURL, "/"),
	}
}

// Lookup resolves the IP via the ip-api.com JSON endpoint. Lookups are
// best-effort enrichment; callers treat any error as "location unknown"
// and carry on.
func (r *resolver) Lookup(ctx context.Context, ip string) (*domain.GeoLocation, error) {
	endpoint := fmt.Sprintf("%s/json/%s?fields=status,message,city,regionName,country,lat,lon", r.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geoip lookup failed: %w", domain.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geoip lookup rejected (%d): %w", resp.StatusCode, domain.ErrUpstream)
	}

	var out struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		City    string  `json:"city"`
		Region  string  `json:"regionName"`
		Country string  `json:"country"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("geoip response malformed: %w", domain.ErrUpstream)
	}
	if out.Status != "success" {
		return nil, fmt.Errorf("geoip lookup failed: %s: %w", out.Message, domain.ErrUpstream)
	}
	return &domain.GeoLocation{
		City:    out.City,
		Region:  out.Region,
		Country: out.Country,
		Lat:     out.Lat,
		Lon:     out.Lon,
	}, nil
}
