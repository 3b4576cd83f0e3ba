package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	geoBatchURL  = "http://ip-api.com/batch?fields=status,country,city,query"
	geoBatchSize = 100 // ip-api.com caps batch requests at 100 entries
)

// GeoLocation is the resolved location of one IP address.
type GeoLocation struct {
	IP      string
	Country string
	City    string
}

// GeoResolver resolves IP addresses through the ip-api.com batch
// endpoint.
type GeoResolver struct {
	client *http.Client
}

func NewGeoResolver() *GeoResolver {
	return &GeoResolver{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type geoBatchResult struct {
	Status  string `json:"status"`
	Country string `json:"country"`
	City    string `json:"city"`
	Query   string `json:"query"`
}

// Resolve locates a set of IPs, batching requests by 100. Failed
// lookups come back with empty country and city rather than an error
// for the whole batch.
func (g *GeoResolver) Resolve(ctx context.Context, ips []string) (map[string]GeoLocation, error) {
	located := make(map[string]GeoLocation, len(ips))

	for start := 0; start < len(ips); start += geoBatchSize {
		end := start + geoBatchSize
		if end > len(ips) {
			end = len(ips)
		}

		results, err := g.resolveBatch(ctx, ips[start:end])
		if err != nil {
			return nil, err
		}
		for _, res := range results {
			loc := GeoLocation{IP: res.Query}
			if res.Status == "success" {
				loc.Country = res.Country
				loc.City = res.City
			}
			located[res.Query] = loc
		}
	}
	return located, nil
}

func (g *GeoResolver) resolveBatch(ctx context.Context, ips []string) ([]geoBatchResult, error) {
	payload, err := json.Marshal(ips)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, geoBatchURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation service returned %d", resp.StatusCode)
	}

	var results []geoBatchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode geolocation response: %w", err)
	}
	return results, nil
}
