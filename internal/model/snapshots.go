package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountSnapshot is the account service's view of a demand-deposit account,
// consumed transiently during orchestration. The orchestrator never owns or
// persists it.
type AccountSnapshot struct {
	ID            string          `json:"id"`
	AccountNumber string          `json:"accountNumber"`
	AccountType   string          `json:"accountType"`
	CustomerID    string          `json:"customerId"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      string          `json:"currency"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// CreditSnapshot is the credit service's view of a revolving credit line.
// Balance reflects the outstanding debt after the remote mutation.
type CreditSnapshot struct {
	ID              string          `json:"id"`
	CreditNumber    string          `json:"creditNumber"`
	CreditType      string          `json:"creditType"`
	CustomerID      string          `json:"customerId"`
	Balance         decimal.Decimal `json:"balance"`
	CreditLimit     decimal.Decimal `json:"creditLimit"`
	AvailableCredit decimal.Decimal `json:"availableCredit"`
	Active          bool            `json:"active"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}
