// Package query serves the read-side lookups against the ledger. Reads are
// pure: no orchestration, no external calls, no failure recording.
package query

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bancore/transaction-service/internal/model"
)

// TransactionReader defines the ledger lookups the query service uses.
type TransactionReader interface {
	FindAll(ctx context.Context) ([]model.Transaction, error)
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindByAccountID(ctx context.Context, accountID string) ([]model.Transaction, error)
	FindByCreditID(ctx context.Context, creditID string) ([]model.Transaction, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]model.Transaction, error)
	FindByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error)
}

// TransactionCache is the read-model cache for single-row lookups. Rows are
// immutable once persisted, which is what makes caching them safe.
type TransactionCache interface {
	Get(ctx context.Context, key string) (*model.Transaction, bool)
	Set(ctx context.Context, key string, transaction *model.Transaction)
}

const transactionViewKeyPrefix = "transaction:view:"

// TransactionQueryService answers ledger queries, cache-first for by-id reads.
type TransactionQueryService struct {
	reader TransactionReader
	cache  TransactionCache
	log    zerolog.Logger
}

func NewTransactionQueryService(reader TransactionReader, cache TransactionCache, log zerolog.Logger) *TransactionQueryService {
	return &TransactionQueryService{
		reader: reader,
		cache:  cache,
		log:    log.With().Str("component", "query").Logger(),
	}
}

func (s *TransactionQueryService) FindAll(ctx context.Context) ([]model.Transaction, error) {
	s.log.Debug().Msg("finding all transactions")
	return s.reader.FindAll(ctx)
}

// FindByID tries the cache first and warms it on a miss. A missing id is a
// not-found error, never an empty result.
func (s *TransactionQueryService) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	key := transactionViewKeyPrefix + id
	if transaction, ok := s.cache.Get(ctx, key); ok {
		return transaction, nil
	}

	transaction, err := s.reader.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, transaction)
	return transaction, nil
}

func (s *TransactionQueryService) FindByAccountID(ctx context.Context, accountID string) ([]model.Transaction, error) {
	s.log.Debug().Str("accountId", accountID).Msg("finding transactions for account")
	return s.reader.FindByAccountID(ctx, accountID)
}

func (s *TransactionQueryService) FindByCreditID(ctx context.Context, creditID string) ([]model.Transaction, error) {
	s.log.Debug().Str("creditId", creditID).Msg("finding transactions for credit")
	return s.reader.FindByCreditID(ctx, creditID)
}

func (s *TransactionQueryService) FindByCustomerID(ctx context.Context, customerID string) ([]model.Transaction, error) {
	s.log.Debug().Str("customerId", customerID).Msg("finding transactions for customer")
	return s.reader.FindByCustomerID(ctx, customerID)
}

func (s *TransactionQueryService) FindByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error) {
	s.log.Debug().Str("type", string(transactionType)).Msg("finding transactions by type")
	return s.reader.FindByType(ctx, transactionType)
}
