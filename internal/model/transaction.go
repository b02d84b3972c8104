package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType identifies the banking operation a ledger row records.
type TransactionType string

const (
	TypeDeposit    TransactionType = "DEPOSIT"
	TypeWithdrawal TransactionType = "WITHDRAWAL"
	TypePayment    TransactionType = "PAYMENT"
	TypeCharge     TransactionType = "CHARGE"
	TypeTransfer   TransactionType = "TRANSFER"
)

// ParseTransactionType converts a path/query value into a TransactionType.
// Matching is case-insensitive.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToUpper(s)) {
	case TypeDeposit, TypeWithdrawal, TypePayment, TypeCharge, TypeTransfer:
		return TransactionType(strings.ToUpper(s)), nil
	}
	return "", fmt.Errorf("unknown transaction type: %q", s)
}

// TransactionStatus is the terminal state of a ledger row. Rows start PENDING
// but every persisted row ends COMPLETED or FAILED.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

// Transaction is the append-only ledger entry. AccountID and CreditID are
// mutually exclusive except for transfers, which write one row per account.
// Rows are never mutated after Save assigns the ID.
type Transaction struct {
	ID              string              `json:"id"`
	TransactionType TransactionType     `json:"transactionType"`
	Amount          decimal.Decimal     `json:"amount"`
	AccountID       string              `json:"accountId,omitempty"`
	CreditID        string              `json:"creditId,omitempty"`
	CustomerID      string              `json:"customerId"`
	Status          TransactionStatus   `json:"status"`
	Description     string              `json:"description,omitempty"`
	BalanceAfter    decimal.NullDecimal `json:"balanceAfter"`
	Commission      decimal.Decimal     `json:"commission"`
	ErrorMessage    string              `json:"errorMessage,omitempty"`
	CreatedAt       time.Time           `json:"createdAt"`
}

// IsAccountTransaction reports whether the row moved demand-deposit money.
func (t *Transaction) IsAccountTransaction() bool {
	return t.TransactionType == TypeDeposit ||
		t.TransactionType == TypeWithdrawal ||
		t.TransactionType == TypeTransfer
}

// IsCreditTransaction reports whether the row moved revolving-credit money.
func (t *Transaction) IsCreditTransaction() bool {
	return t.TransactionType == TypePayment || t.TransactionType == TypeCharge
}
