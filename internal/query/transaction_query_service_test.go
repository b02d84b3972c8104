package query

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bancore/transaction-service/internal/apperr"
	"github.com/bancore/transaction-service/internal/logger"
	"github.com/bancore/transaction-service/internal/model"
)

type mockReader struct {
	findAllFn        func(ctx context.Context) ([]model.Transaction, error)
	findByIDFn       func(ctx context.Context, id string) (*model.Transaction, error)
	findByAccountFn  func(ctx context.Context, accountID string) ([]model.Transaction, error)
	findByCreditFn   func(ctx context.Context, creditID string) ([]model.Transaction, error)
	findByCustomerFn func(ctx context.Context, customerID string) ([]model.Transaction, error)
	findByTypeFn     func(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error)
}

func (m *mockReader) FindAll(ctx context.Context) ([]model.Transaction, error) {
	return m.findAllFn(ctx)
}

func (m *mockReader) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockReader) FindByAccountID(ctx context.Context, accountID string) ([]model.Transaction, error) {
	return m.findByAccountFn(ctx, accountID)
}

func (m *mockReader) FindByCreditID(ctx context.Context, creditID string) ([]model.Transaction, error) {
	return m.findByCreditFn(ctx, creditID)
}

func (m *mockReader) FindByCustomerID(ctx context.Context, customerID string) ([]model.Transaction, error) {
	return m.findByCustomerFn(ctx, customerID)
}

func (m *mockReader) FindByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error) {
	return m.findByTypeFn(ctx, transactionType)
}

type mockCache struct {
	entries map[string]*model.Transaction
	gets    int
	sets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]*model.Transaction{}}
}

func (m *mockCache) Get(ctx context.Context, key string) (*model.Transaction, bool) {
	m.gets++
	transaction, ok := m.entries[key]
	return transaction, ok
}

func (m *mockCache) Set(ctx context.Context, key string, transaction *model.Transaction) {
	m.sets++
	m.entries[key] = transaction
}

func newTestService(reader *mockReader, cache *mockCache) *TransactionQueryService {
	return NewTransactionQueryService(reader, cache, logger.NewWithWriter(io.Discard))
}

func sampleTransaction(id string) *model.Transaction {
	return &model.Transaction{
		ID:              id,
		TransactionType: model.TypeDeposit,
		Amount:          decimal.RequireFromString("100.00"),
		AccountID:       "A1",
		CustomerID:      "C1",
		Status:          model.StatusCompleted,
	}
}

func TestFindByIDWarmsCacheOnMiss(t *testing.T) {
	readerCalls := 0
	reader := &mockReader{
		findByIDFn: func(ctx context.Context, id string) (*model.Transaction, error) {
			readerCalls++
			return sampleTransaction(id), nil
		},
	}
	cache := newMockCache()
	svc := newTestService(reader, cache)

	transaction, err := svc.FindByID(context.Background(), "tx-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transaction.ID != "tx-1" {
		t.Errorf("expected tx-1, got %s", transaction.ID)
	}
	if readerCalls != 1 || cache.sets != 1 {
		t.Errorf("expected one read and one cache fill, got reads=%d sets=%d", readerCalls, cache.sets)
	}

	// Second lookup is served from the cache.
	if _, err := svc.FindByID(context.Background(), "tx-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if readerCalls != 1 {
		t.Errorf("expected the second lookup to skip the reader, got %d reads", readerCalls)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	reader := &mockReader{
		findByIDFn: func(ctx context.Context, id string) (*model.Transaction, error) {
			return nil, apperr.NotFound("Transaction", id)
		},
	}
	cache := newMockCache()
	svc := newTestService(reader, cache)

	_, err := svc.FindByID(context.Background(), "missing")
	if !apperr.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if cache.sets != 0 {
		t.Error("misses must not be cached")
	}
}

func TestListQueriesPassThrough(t *testing.T) {
	rows := []model.Transaction{*sampleTransaction("tx-1"), *sampleTransaction("tx-2")}
	reader := &mockReader{
		findAllFn: func(ctx context.Context) ([]model.Transaction, error) { return rows, nil },
		findByAccountFn: func(ctx context.Context, accountID string) ([]model.Transaction, error) {
			if accountID != "A1" {
				t.Errorf("expected A1, got %s", accountID)
			}
			return rows, nil
		},
		findByCreditFn: func(ctx context.Context, creditID string) ([]model.Transaction, error) {
			return nil, nil
		},
		findByCustomerFn: func(ctx context.Context, customerID string) ([]model.Transaction, error) {
			return rows[:1], nil
		},
		findByTypeFn: func(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error) {
			if transactionType != model.TypeDeposit {
				t.Errorf("expected DEPOSIT, got %s", transactionType)
			}
			return rows, nil
		},
	}
	svc := newTestService(reader, newMockCache())
	ctx := context.Background()

	if got, _ := svc.FindAll(ctx); len(got) != 2 {
		t.Errorf("FindAll: expected 2 rows, got %d", len(got))
	}
	if got, _ := svc.FindByAccountID(ctx, "A1"); len(got) != 2 {
		t.Errorf("FindByAccountID: expected 2 rows, got %d", len(got))
	}
	if got, _ := svc.FindByCreditID(ctx, "CR1"); len(got) != 0 {
		t.Errorf("FindByCreditID: expected no rows, got %d", len(got))
	}
	if got, _ := svc.FindByCustomerID(ctx, "C1"); len(got) != 1 {
		t.Errorf("FindByCustomerID: expected 1 row, got %d", len(got))
	}
	if got, _ := svc.FindByType(ctx, model.TypeDeposit); len(got) != 2 {
		t.Errorf("FindByType: expected 2 rows, got %d", len(got))
	}
}
