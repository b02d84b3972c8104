// Package command implements the write-side orchestration workflows. Each
// operation follows the same shape: read external state, compute the
// resulting balance, mutate remotely, persist a ledger row, publish an event.
// Any failure after validation short-circuits to the failure-recording path,
// which persists a FAILED row and returns it instead of surfacing the error.
package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bancore/transaction-service/internal/apperr"
	"github.com/bancore/transaction-service/internal/events"
	"github.com/bancore/transaction-service/internal/model"
)

// AccountGateway defines the account-service operations the orchestrator uses.
type AccountGateway interface {
	FetchAccount(ctx context.Context, accountID string) (*model.AccountSnapshot, error)
	AdjustBalance(ctx context.Context, accountID string, newBalance decimal.Decimal) (*model.AccountSnapshot, error)
}

// CreditGateway defines the credit-service operations the orchestrator uses.
type CreditGateway interface {
	FetchCredit(ctx context.Context, creditID string) (*model.CreditSnapshot, error)
	ApplyPayment(ctx context.Context, creditID string, amount decimal.Decimal, description string) (*model.CreditSnapshot, error)
	ApplyCharge(ctx context.Context, creditID string, amount decimal.Decimal, description string) (*model.CreditSnapshot, error)
}

// CommissionGateway quotes commissions. Implementations degrade to zero on
// failure, so callers treat the returned error as advisory.
type CommissionGateway interface {
	CalculateCommission(ctx context.Context, accountID string) (decimal.Decimal, error)
}

// Ledger persists transaction rows. Save failures are fatal for the request.
type Ledger interface {
	Save(ctx context.Context, transaction *model.Transaction) (*model.Transaction, error)
}

// EventPublisher emits a durable event per persisted success. Best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event events.ActionEvent) error
}

type DepositCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

type WithdrawalCommand struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

type PaymentCommand struct {
	CreditID    string
	Amount      decimal.Decimal
	Description string
}

type ChargeCommand struct {
	CreditID    string
	Amount      decimal.Decimal
	Description string
}

type TransferCommand struct {
	SourceAccountID      string
	DestinationAccountID string
	Amount               decimal.Decimal
	Description          string
}

// TransactionCommandService orchestrates the monetary operations across the
// account and credit services and records every attempt in the ledger.
type TransactionCommandService struct {
	accounts   AccountGateway
	credits    CreditGateway
	commission CommissionGateway
	ledger     Ledger
	publisher  EventPublisher
	log        zerolog.Logger
}

func NewTransactionCommandService(
	accounts AccountGateway,
	credits CreditGateway,
	commission CommissionGateway,
	ledger Ledger,
	publisher EventPublisher,
	log zerolog.Logger,
) *TransactionCommandService {
	return &TransactionCommandService{
		accounts:   accounts,
		credits:    credits,
		commission: commission,
		ledger:     ledger,
		publisher:  publisher,
		log:        log.With().Str("component", "command").Logger(),
	}
}

// Deposit credits an account with the requested amount net of commission.
func (s *TransactionCommandService) Deposit(ctx context.Context, cmd DepositCommand) (*model.Transaction, error) {
	if err := requirePositive(cmd.Amount); err != nil {
		return nil, err
	}
	s.log.Debug().Str("accountId", cmd.AccountID).Str("amount", cmd.Amount.String()).Msg("processing deposit")

	account, err := s.accounts.FetchAccount(ctx, cmd.AccountID)
	if err != nil {
		return s.recordFailure(ctx, failedAttempt{
			Type: model.TypeDeposit, Amount: cmd.Amount, AccountID: cmd.AccountID, Cause: err,
		})
	}

	commission := s.quoteCommission(ctx, cmd.AccountID)
	netAmount := cmd.Amount.Sub(commission)
	newBalance := account.Balance.Add(netAmount)

	if _, err := s.accounts.AdjustBalance(ctx, account.ID, newBalance); err != nil {
		return s.recordFailure(ctx, failedAttempt{
			Type: model.TypeDeposit, Amount: cmd.Amount, AccountID: cmd.AccountID,
			CustomerID: account.CustomerID, Cause: err,
		})
	}

	transaction := &model.Transaction{
		TransactionType: model.TypeDeposit,
		Amount:          cmd.Amount,
		AccountID:       cmd.AccountID,
		CustomerID:      account.CustomerID,
		Status:          model.StatusCompleted,
		Description:     cmd.Description,
		BalanceAfter:    decimal.NewNullDecimal(newBalance),
		Commission:      commission,
		CreatedAt:       time.Now().UTC(),
	}
	saved, err := s.ledger.Save(ctx, transaction)
	if err != nil {
		return nil, err
	}
	s.publishCreated(ctx, saved)
	s.log.Info().Str("transactionId", saved.ID).Str("commission", commission.String()).Msg("deposit completed")
	return saved, nil
}

// Withdrawal debits an account with the requested amount plus commission. The
// customer pays amount+commission out of pocket.
func (s *TransactionCommandService) Withdrawal(ctx context.Context, cmd WithdrawalCommand) (*model.Transaction, error) {
	if err := requirePositive(cmd.Amount); err != nil {
		return nil, err
	}
	s.log.Debug().Str("accountId", cmd.AccountID).Str("amount", cmd.Amount.String()).Msg("processing withdrawal")

	account, err := s.accounts.FetchAccount(ctx, cmd.AccountID)
	if err != nil {
		return s.recordFailure(ctx, failedAttempt{
			Type: model.TypeWithdrawal, Amount: cmd.Amount, AccountID: cmd.AccountID, Cause: err,
		})
	}

	commission := s.quoteCommission(ctx, cmd.AccountID)
	totalAmount := cmd.Amount.Add(commission)

	if account.Balance.LessThan(totalAmount) {
		return s.recordFailure(ctx, failedAttempt{
			Type: model.TypeWithdrawal, Amount: cmd.Amount, AccountID: cmd.AccountID,
			CustomerID: account.CustomerID,
			Cause:      apperr.InsufficientFunds(totalAmount, account.Balance),
		})
	}

	newBalance := account.Balance.Sub(totalAmount)
	if _, err := s.accounts.AdjustBalance(ctx, account.ID, newBalance); err != nil {
		return s.recordFailure(ctx, failedAttempt{
			Type: model.TypeWithdrawal, Amount: cmd.Amount, AccountID: cmd.AccountID,
			CustomerID: account.CustomerID, Cause: err,
		})
	}

	transaction := &model.Transaction{
		TransactionType: model.TypeWithdrawal,
		Amount:          cmd.Amount,
		AccountID:       cmd.AccountID,
		CustomerID:      account.CustomerID,
		Status:          model.StatusCompleted,
		Description:     cmd.Description,
		BalanceAfter:    decimal.NewNullDecimal(newBalance),
		Commission:      commission,
		CreatedAt:       time.Now().UTC(),
	}
	saved, err := s.ledger.Save(ctx, transaction)
	if err != nil {
		return nil, err
	}
	s.publishCreated(ctx, saved)
	s.log.Info().Str("transactionId", saved.ID).Str("commission", commission.String()).Msg("withdrawal completed")
	return saved, nil
}

// Payment applies a payment against a credit line's outstanding balance.
// Commission never applies to credit operations.
func (s *TransactionCommandService) Payment(ctx context.Context, cmd PaymentCommand) (*model.Transaction, error) {
	if err := requirePositive(cmd.Amount); err != nil {
		return nil, err
	}
	s.log.Debug().Str("creditId", cmd.CreditID).Str("amount", cmd.Amount.String()).Msg("processing payment")

	return s.creditOperation(ctx, model.TypePayment, cmd.CreditID, cmd.Amount, cmd.Description, s.credits.ApplyPayment)
}

// Charge charges an amount against a credit line.
func (s *TransactionCommandService) Charge(ctx context.Context, cmd ChargeCommand) (*model.Transaction, error) {
	if err := requirePositive(cmd.Amount); err != nil {
		return nil, err
	}
	s.log.Debug().Str("creditId", cmd.CreditID).Str("amount", cmd.Amount.String()).Msg("processing charge")

	return s.creditOperation(ctx, model.TypeCharge, cmd.CreditID, cmd.Amount, cmd.Description, s.credits.ApplyCharge)
}

func (s *TransactionCommandService) creditOperation(
	ctx context.Context,
	transactionType model.TransactionType,
	creditID string,
	amount decimal.Decimal,
	description string,
	apply func(ctx context.Context, creditID string, amount decimal.Decimal, description string) (*model.CreditSnapshot, error),
) (*model.Transaction, error) {
	credit, err := s.credits.FetchCredit(ctx, creditID)
	if err != nil {
		return s.recordFailure(ctx, failedAttempt{
			Type: transactionType, Amount: amount, CreditID: creditID, Cause: err,
		})
	}

	updated, err := apply(ctx, creditID, amount, description)
	if err != nil {
		return s.recordFailure(ctx, failedAttempt{
			Type: transactionType, Amount: amount, CreditID: creditID,
			CustomerID: credit.CustomerID, Cause: err,
		})
	}

	transaction := &model.Transaction{
		TransactionType: transactionType,
		Amount:          amount,
		CreditID:        creditID,
		CustomerID:      credit.CustomerID,
		Status:          model.StatusCompleted,
		Description:     description,
		BalanceAfter:    decimal.NewNullDecimal(updated.Balance),
		Commission:      decimal.Zero,
		CreatedAt:       time.Now().UTC(),
	}
	saved, err := s.ledger.Save(ctx, transaction)
	if err != nil {
		return nil, err
	}
	s.publishCreated(ctx, saved)
	s.log.Info().Str("transactionId", saved.ID).Msg("credit operation completed")
	return saved, nil
}

// Transfer moves an amount between two accounts, producing one ledger row per
// leg. The two balance adjustments run concurrently; if exactly one leg
// succeeds, the succeeded leg is reversed before the failure is recorded.
func (s *TransactionCommandService) Transfer(ctx context.Context, cmd TransferCommand) ([]model.Transaction, error) {
	if err := requirePositive(cmd.Amount); err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("sourceAccountId", cmd.SourceAccountID).
		Str("destinationAccountId", cmd.DestinationAccountID).
		Str("amount", cmd.Amount.String()).
		Msg("processing transfer")

	var source, dest *model.AccountSnapshot
	var g errgroup.Group
	g.Go(func() error {
		var err error
		source, err = s.accounts.FetchAccount(ctx, cmd.SourceAccountID)
		return err
	})
	g.Go(func() error {
		var err error
		dest, err = s.accounts.FetchAccount(ctx, cmd.DestinationAccountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.recordTransferFailure(ctx, cmd, source, dest, err)
	}

	newSourceBalance := source.Balance.Sub(cmd.Amount)
	if newSourceBalance.IsNegative() {
		return s.recordTransferFailure(ctx, cmd, source, dest,
			apperr.InsufficientFunds(cmd.Amount, source.Balance))
	}
	newDestBalance := dest.Balance.Add(cmd.Amount)

	var updatedSource, updatedDest *model.AccountSnapshot
	var sourceErr, destErr error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		updatedSource, sourceErr = s.accounts.AdjustBalance(ctx, source.ID, newSourceBalance)
	}()
	go func() {
		defer wg.Done()
		updatedDest, destErr = s.accounts.AdjustBalance(ctx, dest.ID, newDestBalance)
	}()
	wg.Wait()

	if sourceErr != nil || destErr != nil {
		cause := sourceErr
		if cause == nil {
			cause = destErr
		}
		cause = s.compensateTransferLeg(ctx, source, dest, sourceErr, destErr, cause)
		return s.recordTransferFailure(ctx, cmd, source, dest, cause)
	}

	now := time.Now().UTC()
	rows := []*model.Transaction{
		{
			TransactionType: model.TypeTransfer,
			Amount:          cmd.Amount,
			AccountID:       updatedSource.ID,
			CustomerID:      updatedSource.CustomerID,
			Status:          model.StatusCompleted,
			Description:     cmd.Description,
			BalanceAfter:    decimal.NewNullDecimal(updatedSource.Balance),
			Commission:      decimal.Zero,
			CreatedAt:       now,
		},
		{
			TransactionType: model.TypeTransfer,
			Amount:          cmd.Amount,
			AccountID:       updatedDest.ID,
			CustomerID:      updatedDest.CustomerID,
			Status:          model.StatusCompleted,
			Description:     cmd.Description,
			BalanceAfter:    decimal.NewNullDecimal(updatedDest.Balance),
			Commission:      decimal.Zero,
			CreatedAt:       now,
		},
	}

	saved := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		persisted, err := s.ledger.Save(ctx, row)
		if err != nil {
			return nil, err
		}
		s.publishCreated(ctx, persisted)
		saved = append(saved, *persisted)
	}
	s.log.Info().
		Str("sourceAccountId", cmd.SourceAccountID).
		Str("destinationAccountId", cmd.DestinationAccountID).
		Msg("transfer completed")
	return saved, nil
}

// compensateTransferLeg reverses the leg that succeeded when the other
// failed. A failed reversal widens the recorded error message.
func (s *TransactionCommandService) compensateTransferLeg(
	ctx context.Context,
	source, dest *model.AccountSnapshot,
	sourceErr, destErr error,
	cause error,
) error {
	reverse := func(account *model.AccountSnapshot) error {
		_, err := s.accounts.AdjustBalance(ctx, account.ID, account.Balance)
		return err
	}

	switch {
	case sourceErr == nil && destErr != nil:
		if err := reverse(source); err != nil {
			s.log.Error().Err(err).Str("accountId", source.ID).Msg("failed to reverse source leg")
			return apperr.Wrap(fmt.Sprintf("%s; reversal of source account %s failed: %s", cause.Error(), source.ID, err.Error()), cause)
		}
		s.log.Warn().Str("accountId", source.ID).Msg("source leg reversed after destination failure")
	case destErr == nil && sourceErr != nil:
		if err := reverse(dest); err != nil {
			s.log.Error().Err(err).Str("accountId", dest.ID).Msg("failed to reverse destination leg")
			return apperr.Wrap(fmt.Sprintf("%s; reversal of destination account %s failed: %s", cause.Error(), dest.ID, err.Error()), cause)
		}
		s.log.Warn().Str("accountId", dest.ID).Msg("destination leg reversed after source failure")
	}
	return cause
}

// failedAttempt carries what is known about an aborted workflow when the
// FAILED row is written.
type failedAttempt struct {
	Type       model.TransactionType
	Amount     decimal.Decimal
	AccountID  string
	CreditID   string
	CustomerID string
	Cause      error
}

func (s *TransactionCommandService) recordFailure(ctx context.Context, attempt failedAttempt) (*model.Transaction, error) {
	s.log.Error().Err(attempt.Cause).
		Str("type", string(attempt.Type)).
		Str("accountId", attempt.AccountID).
		Str("creditId", attempt.CreditID).
		Msg("operation failed, recording FAILED transaction")

	customerID := attempt.CustomerID
	if customerID == "" {
		customerID = "unknown"
	}
	transaction := &model.Transaction{
		TransactionType: attempt.Type,
		Amount:          attempt.Amount,
		AccountID:       attempt.AccountID,
		CreditID:        attempt.CreditID,
		CustomerID:      customerID,
		Status:          model.StatusFailed,
		Commission:      decimal.Zero,
		ErrorMessage:    attempt.Cause.Error(),
		CreatedAt:       time.Now().UTC(),
	}
	saved, err := s.ledger.Save(ctx, transaction)
	if err != nil {
		return nil, apperr.Wrap("failed to record failed transaction", err)
	}
	return saved, nil
}

// recordTransferFailure writes one FAILED row per leg, resolving customer ids
// from whichever snapshots were fetched before the failure.
func (s *TransactionCommandService) recordTransferFailure(
	ctx context.Context,
	cmd TransferCommand,
	source, dest *model.AccountSnapshot,
	cause error,
) ([]model.Transaction, error) {
	legs := []failedAttempt{
		{Type: model.TypeTransfer, Amount: cmd.Amount, AccountID: cmd.SourceAccountID, CustomerID: customerOf(source), Cause: cause},
		{Type: model.TypeTransfer, Amount: cmd.Amount, AccountID: cmd.DestinationAccountID, CustomerID: customerOf(dest), Cause: cause},
	}
	saved := make([]model.Transaction, 0, len(legs))
	for _, leg := range legs {
		row, err := s.recordFailure(ctx, leg)
		if err != nil {
			return nil, err
		}
		saved = append(saved, *row)
	}
	return saved, nil
}

func customerOf(account *model.AccountSnapshot) string {
	if account == nil {
		return ""
	}
	return account.CustomerID
}

// quoteCommission asks the commission gateway for the fee. Any error degrades
// to zero: commission is never allowed to block the host operation.
func (s *TransactionCommandService) quoteCommission(ctx context.Context, accountID string) decimal.Decimal {
	commission, err := s.commission.CalculateCommission(ctx, accountID)
	if err != nil {
		s.log.Warn().Err(err).Str("accountId", accountID).Msg("commission lookup failed, using zero")
		return decimal.Zero
	}
	return commission
}

func (s *TransactionCommandService) publishCreated(ctx context.Context, transaction *model.Transaction) {
	event := events.NewActionEvent(events.TransactionCreated, "Transaction", transaction)
	if err := s.publisher.Publish(ctx, transaction.ID, event); err != nil {
		s.log.Warn().Err(err).Str("transactionId", transaction.ID).Msg("failed to publish transaction event")
	}
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperr.Validation("amount must be greater than zero")
	}
	return nil
}
