package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/bancore/transaction-service/internal/resilience"
)

func TestBreakerStatusEndpoints(t *testing.T) {
	registry := resilience.NewRegistry()
	registry.Breaker("account")
	registry.Breaker("credit")

	router := gin.New()
	NewBreakerHandler(registry).RegisterRoutes(router)

	rec := doRequest(router, http.MethodGet, "/api/circuit-breaker/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listing struct {
		CircuitBreakers []resilience.BreakerStatus `json:"circuitBreakers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if len(listing.CircuitBreakers) != 2 {
		t.Errorf("expected two breakers, got %d", len(listing.CircuitBreakers))
	}

	rec = doRequest(router, http.MethodGet, "/api/circuit-breaker/status/account", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var status resilience.BreakerStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if status.Name != "account" || status.State != "closed" {
		t.Errorf("unexpected status: %+v", status)
	}

	rec = doRequest(router, http.MethodGet, "/api/circuit-breaker/status/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unregistered breaker, got %d", rec.Code)
	}
}
