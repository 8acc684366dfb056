package aml

import (
	"context"
	"net/url"
)

const (
	customersPath        = "/api/v1/customers"
	accountsCustomerPath = "/api/v1/accounts/customer/"

	// DefaultPageSize is used by the customer and account listings when none is given.
	DefaultPageSize = 50
)

type Customer struct {
	ID         string `json:"customer_id"`
	FullName   string `json:"full_name"`
	Type       string `json:"customer_type,omitempty"`
	Email      string `json:"email,omitempty"`
	KYCStatus  string `json:"kyc_status,omitempty"`
	RiskRating string `json:"risk_rating,omitempty"`
}

type Account struct {
	Number          string  `json:"account_number"`
	CustomerID      string  `json:"customer_id"`
	Status          string  `json:"account_status"`
	Type            string  `json:"account_type,omitempty"`
	BalanceAmount   float64 `json:"balance_amount,omitempty"`
	BalanceCurrency string  `json:"balance_currency,omitempty"`
}

func (p Pagination) withDefaults() Pagination {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (s *Service) ListCustomers(ctx context.Context, p Pagination) (*Page[Customer], error) {
	values := url.Values{}
	p.withDefaults().apply(values)
	page, err := get[Page[Customer]](ctx, s, withQuery(customersPath, values))
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) ListAccountsByCustomer(ctx context.Context, customerID string, p Pagination) (*Page[Account], error) {
	if err := requireID("customer", customerID); err != nil {
		return nil, err
	}
	values := url.Values{}
	p.withDefaults().apply(values)
	page, err := get[Page[Account]](ctx, s, withQuery(accountsCustomerPath+url.PathEscape(customerID), values))
	if err != nil {
		return nil, err
	}
	return &page, nil
}
