// Package gateway holds the typed clients for the external balance-bearing
// services. Every call goes through a resilience.Caller keyed by the
// dependency's name, so each downstream gets its own circuit breaker.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	// Credit payments hit a slower settlement path downstream.
	paymentTimeout = 5 * time.Second

	maxRetries = 2
)

// notFoundHook lets callers translate a 404 into the right domain error
// before the generic status check runs.
type notFoundHook func() error

// doJSON issues an HTTP request and decodes the JSON response into out. A 404
// is routed through onNotFound; any other non-2xx status is returned as a
// transient error so the caller's retry and breaker policies apply.
func doJSON(ctx context.Context, client *http.Client, method, url string, body any, onNotFound notFoundHook, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && onNotFound != nil {
		return onNotFound()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
