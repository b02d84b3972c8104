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

// CreditGateway talks to the credit service. Payment application gets a wider
// timeout than the rest of the operations.
type CreditGateway struct {
	baseURL  string
	client   *http.Client
	reads    *resilience.Caller
	payments *resilience.Caller
	charges  *resilience.Caller
	log      zerolog.Logger
}

func NewCreditGateway(baseURL string, client *http.Client, reg *resilience.Registry, log zerolog.Logger) *CreditGateway {
	return &CreditGateway{
		baseURL:  baseURL,
		client:   client,
		reads:    resilience.NewCaller(reg, "credit", readTimeout, maxRetries, log),
		payments: resilience.NewCaller(reg, "credit", paymentTimeout, maxRetries, log),
		charges:  resilience.NewCaller(reg, "credit", writeTimeout, maxRetries, log),
		log:      log.With().Str("gateway", "credit").Logger(),
	}
}

// FetchCredit retrieves the current credit snapshot.
func (g *CreditGateway) FetchCredit(ctx context.Context, creditID string) (*model.CreditSnapshot, error) {
	g.log.Debug().Str("creditId", creditID).Msg("fetching credit")

	return resilience.Do(ctx, g.reads, func(ctx context.Context) (*model.CreditSnapshot, error) {
		var credit model.CreditSnapshot
		url := fmt.Sprintf("%s/api/credits/%s", g.baseURL, creditID)
		err := doJSON(ctx, g.client, http.MethodGet, url, nil, func() error {
			return apperr.NotFound("Credit", creditID)
		}, &credit)
		if err != nil {
			return nil, err
		}
		return &credit, nil
	})
}

type creditOperationRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ApplyPayment applies a payment against the credit's outstanding balance and
// returns the updated snapshot.
func (g *CreditGateway) ApplyPayment(ctx context.Context, creditID string, amount decimal.Decimal, description string) (*model.CreditSnapshot, error) {
	g.log.Debug().Str("creditId", creditID).Str("amount", amount.String()).Msg("applying payment")
	return g.apply(ctx, g.payments, creditID, "payment", amount, description)
}

// ApplyCharge charges an amount against the credit line and returns the
// updated snapshot.
func (g *CreditGateway) ApplyCharge(ctx context.Context, creditID string, amount decimal.Decimal, description string) (*model.CreditSnapshot, error) {
	g.log.Debug().Str("creditId", creditID).Str("amount", amount.String()).Msg("applying charge")
	return g.apply(ctx, g.charges, creditID, "charge", amount, description)
}

func (g *CreditGateway) apply(ctx context.Context, caller *resilience.Caller, creditID, operation string, amount decimal.Decimal, description string) (*model.CreditSnapshot, error) {
	return resilience.Do(ctx, caller, func(ctx context.Context) (*model.CreditSnapshot, error) {
		var credit model.CreditSnapshot
		url := fmt.Sprintf("%s/api/credits/%s/%s", g.baseURL, creditID, operation)
		body := creditOperationRequest{Amount: amount, Description: description}
		err := doJSON(ctx, g.client, http.MethodPost, url, body, func() error {
			return apperr.NotFound("Credit", creditID)
		}, &credit)
		if err != nil {
			return nil, err
		}
		return &credit, nil
	})
}
