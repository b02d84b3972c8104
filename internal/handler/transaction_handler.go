package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/bancore/transaction-service/internal/command"
	"github.com/bancore/transaction-service/internal/model"
)

// TransactionCommander defines the write-side operations used by the handler.
type TransactionCommander interface {
	Deposit(ctx context.Context, cmd command.DepositCommand) (*model.Transaction, error)
	Withdrawal(ctx context.Context, cmd command.WithdrawalCommand) (*model.Transaction, error)
	Payment(ctx context.Context, cmd command.PaymentCommand) (*model.Transaction, error)
	Charge(ctx context.Context, cmd command.ChargeCommand) (*model.Transaction, error)
	Transfer(ctx context.Context, cmd command.TransferCommand) ([]model.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by the handler.
type TransactionQuerier interface {
	FindAll(ctx context.Context) ([]model.Transaction, error)
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindByAccountID(ctx context.Context, accountID string) ([]model.Transaction, error)
	FindByCreditID(ctx context.Context, creditID string) ([]model.Transaction, error)
	FindByCustomerID(ctx context.Context, customerID string) ([]model.Transaction, error)
	FindByType(ctx context.Context, transactionType model.TransactionType) ([]model.Transaction, error)
}

// CommissionQuerier quotes the commission the next transaction on an account
// will carry, without applying it.
type CommissionQuerier interface {
	NextCommission(ctx context.Context, accountID string) (decimal.Decimal, error)
}

type TransactionHandler struct {
	commands   TransactionCommander
	queries    TransactionQuerier
	commission CommissionQuerier
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier, commission CommissionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries, commission: commission}
}

// RegisterRoutes mounts the transaction endpoints under /api/transactions.
func (h *TransactionHandler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api/transactions")
	{
		api.POST("/deposit", h.Deposit)
		api.POST("/withdrawal", h.Withdrawal)
		api.POST("/payment", h.Payment)
		api.POST("/charge", h.Charge)
		api.POST("/transfer", h.Transfer)

		api.GET("", h.FindAll)
		api.GET("/:id", h.FindByID)
		api.GET("/account/:accountId", h.FindByAccountID)
		api.GET("/credit/:creditId", h.FindByCreditID)
		api.GET("/customer/:customerId", h.FindByCustomerID)
		api.GET("/type/:transactionType", h.FindByType)
		api.GET("/commission/:accountId", h.NextCommission)
	}
}

type DepositRequest struct {
	AccountID   string          `json:"accountId" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type WithdrawalRequest struct {
	AccountID   string          `json:"accountId" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type PaymentRequest struct {
	CreditID    string          `json:"creditId" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type ChargeRequest struct {
	CreditID    string          `json:"creditId" validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type TransferRequest struct {
	AccountID            string          `json:"accountId" validate:"required"`
	DestinationAccountID string          `json:"destinationAccountId" validate:"required"`
	Amount               decimal.Decimal `json:"amount"`
	Description          string          `json:"description"`
}

func requireAmount(c *gin.Context, amount decimal.Decimal) bool {
	if !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "Amount must be greater than zero")
		return false
	}
	return true
}

func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, req.Amount) {
		return
	}
	transaction, err := h.commands.Deposit(c.Request.Context(), command.DepositCommand{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *TransactionHandler) Withdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, req.Amount) {
		return
	}
	transaction, err := h.commands.Withdrawal(c.Request.Context(), command.WithdrawalCommand{
		AccountID:   req.AccountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *TransactionHandler) Payment(c *gin.Context) {
	var req PaymentRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, req.Amount) {
		return
	}
	transaction, err := h.commands.Payment(c.Request.Context(), command.PaymentCommand{
		CreditID:    req.CreditID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *TransactionHandler) Charge(c *gin.Context) {
	var req ChargeRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, req.Amount) {
		return
	}
	transaction, err := h.commands.Charge(c.Request.Context(), command.ChargeCommand{
		CreditID:    req.CreditID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transaction)
}

func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if !bindAndValidate(c, &req) || !requireAmount(c, req.Amount) {
		return
	}
	transactions, err := h.commands.Transfer(c.Request.Context(), command.TransferCommand{
		SourceAccountID:      req.AccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		Description:          req.Description,
	})
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactions)
}

func (h *TransactionHandler) FindAll(c *gin.Context) {
	transactions, err := h.queries.FindAll(c.Request.Context())
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyToSlice(transactions))
}

func (h *TransactionHandler) FindByID(c *gin.Context) {
	transaction, err := h.queries.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusOK, transaction)
}

func (h *TransactionHandler) FindByAccountID(c *gin.Context) {
	transactions, err := h.queries.FindByAccountID(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyToSlice(transactions))
}

func (h *TransactionHandler) FindByCreditID(c *gin.Context) {
	transactions, err := h.queries.FindByCreditID(c.Request.Context(), c.Param("creditId"))
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyToSlice(transactions))
}

func (h *TransactionHandler) FindByCustomerID(c *gin.Context) {
	transactions, err := h.queries.FindByCustomerID(c.Request.Context(), c.Param("customerId"))
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyToSlice(transactions))
}

func (h *TransactionHandler) FindByType(c *gin.Context) {
	transactionType, err := model.ParseTransactionType(c.Param("transactionType"))
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	transactions, err := h.queries.FindByType(c.Request.Context(), transactionType)
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusOK, emptyToSlice(transactions))
}

func (h *TransactionHandler) NextCommission(c *gin.Context) {
	accountID := c.Param("accountId")
	commission, err := h.commission.NextCommission(c.Request.Context(), accountID)
	if err != nil {
		respondFromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accountId":                 accountID,
		"nextTransactionCommission": commission,
	})
}

// emptyToSlice keeps empty results serializing as [] instead of null.
func emptyToSlice(transactions []model.Transaction) []model.Transaction {
	if transactions == nil {
		return []model.Transaction{}
	}
	return transactions
}
