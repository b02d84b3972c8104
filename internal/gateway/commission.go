package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bancore/transaction-service/internal/resilience"
)

// CommissionGateway quotes transaction commissions from the account service's
// commission endpoints. Commission is a fee optimisation, not a correctness
// value: every failure path degrades to a zero commission instead of
// surfacing an error.
type CommissionGateway struct {
	baseURL string
	client  *http.Client
	caller  *resilience.Caller
	log     zerolog.Logger
}

func NewCommissionGateway(baseURL string, client *http.Client, reg *resilience.Registry, log zerolog.Logger) *CommissionGateway {
	return &CommissionGateway{
		baseURL: baseURL,
		client:  client,
		caller:  resilience.NewCaller(reg, "commission", readTimeout, maxRetries, log),
		log:     log.With().Str("gateway", "commission").Logger(),
	}
}

type commissionResponse struct {
	Commission decimal.Decimal `json:"commission"`
}

// CalculateCommission applies and returns the commission for the account's
// next transaction. Returns zero on any failure.
func (g *CommissionGateway) CalculateCommission(ctx context.Context, accountID string) (decimal.Decimal, error) {
	commission, err := resilience.Do(ctx, g.caller, func(ctx context.Context) (decimal.Decimal, error) {
		var resp commissionResponse
		url := fmt.Sprintf("%s/api/accounts/%s/calculate-commission", g.baseURL, accountID)
		if err := doJSON(ctx, g.client, http.MethodPost, url, nil, nil, &resp); err != nil {
			return decimal.Zero, err
		}
		return resp.Commission, nil
	})
	if err != nil {
		g.log.Warn().Err(err).Str("accountId", accountID).Msg("commission unavailable, degrading to zero")
		return decimal.Zero, nil
	}
	return commission, nil
}

type nextCommissionResponse struct {
	NextTransactionCommission decimal.Decimal `json:"nextTransactionCommission"`
}

// NextCommission quotes the next transaction's commission without applying
// it. Same zero-degradation policy as CalculateCommission.
func (g *CommissionGateway) NextCommission(ctx context.Context, accountID string) (decimal.Decimal, error) {
	commission, err := resilience.Do(ctx, g.caller, func(ctx context.Context) (decimal.Decimal, error) {
		var resp nextCommissionResponse
		url := fmt.Sprintf("%s/api/accounts/%s/commission", g.baseURL, accountID)
		if err := doJSON(ctx, g.client, http.MethodGet, url, nil, nil, &resp); err != nil {
			return decimal.Zero, err
		}
		return resp.NextTransactionCommission, nil
	})
	if err != nil {
		g.log.Warn().Err(err).Str("accountId", accountID).Msg("commission quote unavailable, degrading to zero")
		return decimal.Zero, nil
	}
	return commission, nil
}
