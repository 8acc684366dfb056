package aml

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"strings"

	"github.com/jrsteele09/regulus-console/api"
	"github.com/jrsteele09/regulus-console/internal/errors"
)

const transactionsPath = "/api/v1/transactions"

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionTradeBuy   TransactionType = "trade-buy"
	TransactionTradeSell  TransactionType = "trade-sell"
)

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionHeld      TransactionStatus = "held"
)

type Transaction struct {
	ID            string            `json:"transaction_id"`
	AccountNumber string            `json:"account_number"`
	Amount        float64           `json:"transaction_amount"`
	Currency      string            `json:"transaction_currency"`
	Type          TransactionType   `json:"transaction_type"`
	Status        TransactionStatus `json:"transaction_status"`
	Date          api.Timestamp     `json:"transaction_date"`
	Purpose       string            `json:"purpose,omitempty"`
}

type TransactionFilter struct {
	Pagination
	AccountNumber string
	Type          TransactionType
	Status        TransactionStatus
}

func (f TransactionFilter) query() url.Values {
	values := url.Values{}
	f.Pagination.apply(values)
	setString(values, "account_number", f.AccountNumber)
	setString(values, "transaction_type", string(f.Type))
	setString(values, "transaction_status", string(f.Status))
	return values
}

// ManualTransaction submits a single transaction for monitoring.
type ManualTransaction struct {
	AccountNumber string          `json:"account_number"`
	Amount        float64         `json:"transaction_amount"`
	Currency      string          `json:"transaction_currency"`
	Type          TransactionType `json:"transaction_type"`
	Purpose       string          `json:"purpose,omitempty"`
}

func (m ManualTransaction) Validate() error {
	switch {
	case strings.TrimSpace(m.AccountNumber) == "":
		return errors.Wrapf(errors.ErrInvalidInput, "account is required")
	case m.Amount <= 0 || math.IsNaN(m.Amount) || math.IsInf(m.Amount, 0):
		return errors.Wrapf(errors.ErrInvalidInput, "amount must be a positive number")
	case strings.TrimSpace(m.Currency) == "":
		return errors.Wrapf(errors.ErrInvalidInput, "currency is required")
	case m.Type == "":
		return errors.Wrapf(errors.ErrInvalidInput, "transaction type is required")
	}
	return nil
}

func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter) (*Page[Transaction], error) {
	page, err := get[Page[Transaction]](ctx, s, withQuery(transactionsPath, filter.query()))
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateTransaction submits m and returns the server's acknowledgement unchanged.
func (s *Service) CreateTransaction(ctx context.Context, m ManualTransaction) (json.RawMessage, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return s.api.Post(ctx, transactionsPath, m)
}
