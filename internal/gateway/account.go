package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bancore/transaction-service/internal/apperr"
	"github.com/bancore/transaction-service/internal/model"
	"github.com/bancore/transaction-service/internal/resilience"
)

// AccountGateway talks to the account service. Reads and balance writes share
// the "account" breaker but carry their own timeout budgets.
type AccountGateway struct {
	baseURL string
	client  *http.Client
	reads   *resilience.Caller
	writes  *resilience.Caller
	log     zerolog.Logger
}

func NewAccountGateway(baseURL string, client *http.Client, reg *resilience.Registry, log zerolog.Logger) *AccountGateway {
	return &AccountGateway{
		baseURL: baseURL,
		client:  client,
		reads:   resilience.NewCaller(reg, "account", readTimeout, maxRetries, log),
		writes:  resilience.NewCaller(reg, "account", writeTimeout, maxRetries, log),
		log:     log.With().Str("gateway", "account").Logger(),
	}
}

// FetchAccount retrieves the current account snapshot. An absent account
// surfaces as a not-found error, never as unavailability.
func (g *AccountGateway) FetchAccount(ctx context.Context, accountID string) (*model.AccountSnapshot, error) {
	g.log.Debug().Str("accountId", accountID).Msg("fetching account")

	return resilience.Do(ctx, g.reads, func(ctx context.Context) (*model.AccountSnapshot, error) {
		var account model.AccountSnapshot
		url := fmt.Sprintf("%s/api/accounts/%s", g.baseURL, accountID)
		err := doJSON(ctx, g.client, http.MethodGet, url, nil, func() error {
			return apperr.NotFound("Account", accountID)
		}, &account)
		if err != nil {
			return nil, err
		}
		return &account, nil
	})
}

type balanceUpdateRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

// AdjustBalance sets the account's balance to newBalance and returns the
// updated snapshot.
func (g *AccountGateway) AdjustBalance(ctx context.Context, accountID string, newBalance decimal.Decimal) (*model.AccountSnapshot, error) {
	g.log.Debug().Str("accountId", accountID).Str("newBalance", newBalance.String()).Msg("adjusting balance")

	return resilience.Do(ctx, g.writes, func(ctx context.Context) (*model.AccountSnapshot, error) {
		var account model.AccountSnapshot
		url := fmt.Sprintf("%s/api/accounts/balance/%s", g.baseURL, accountID)
		err := doJSON(ctx, g.client, http.MethodPut, url, balanceUpdateRequest{Balance: newBalance}, func() error {
			return apperr.NotFound("Account", accountID)
		}, &account)
		if err != nil {
			return nil, err
		}
		return &account, nil
	})
}
