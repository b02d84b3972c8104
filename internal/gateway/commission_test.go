package gateway

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bancore/transaction-service/internal/logger"
	"github.com/bancore/transaction-service/internal/resilience"
)

func TestCalculateCommission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/accounts/A1/calculate-commission" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"commission": 2.50}`))
	}))
	defer srv.Close()

	g := NewCommissionGateway(srv.URL, srv.Client(), resilience.NewRegistry(), logger.NewWithWriter(io.Discard))

	got, err := g.CalculateCommission(context.Background(), "A1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("2.50")) {
		t.Fatalf("expected 2.50, got %s", got)
	}
}

func TestCalculateCommissionDegradesToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewCommissionGateway(srv.URL, srv.Client(), resilience.NewRegistry(), logger.NewWithWriter(io.Discard))

	got, err := g.CalculateCommission(context.Background(), "A1")
	if err != nil {
		t.Fatalf("commission failures must not surface errors, got %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero commission, got %s", got)
	}
}

func TestNextCommission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/accounts/A1/commission" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"nextTransactionCommission": 1.25}`))
	}))
	defer srv.Close()

	g := NewCommissionGateway(srv.URL, srv.Client(), resilience.NewRegistry(), logger.NewWithWriter(io.Discard))

	got, err := g.NextCommission(context.Background(), "A1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("expected 1.25, got %s", got)
	}
}
