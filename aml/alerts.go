package aml

import (
	"context"
	"net/url"

	"github.com/jrsteele09/regulus-console/api"
)

const alertsPath = "/api/v1/alerts"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Alert struct {
	ID            string        `json:"alert_id"`
	AccountNumber string        `json:"account_number"`
	TransactionID string        `json:"transaction_id,omitempty"`
	AlertType     string        `json:"alert_type,omitempty"`
	Severity      Severity      `json:"severity"`
	RuleID        string        `json:"rule_id"`
	Description   string        `json:"description"`
	TriggeredDate api.Timestamp `json:"triggered_date"`
}

type AlertFilter struct {
	Pagination
	AccountNumber string
	Severity      Severity
	RuleID        string
}

func (f AlertFilter) query() url.Values {
	values := url.Values{}
	f.Pagination.apply(values)
	setString(values, "account_number", f.AccountNumber)
	setString(values, "severity", string(f.Severity))
	setString(values, "rule_id", f.RuleID)
	return values
}

func (s *Service) ListAlerts(ctx context.Context, filter AlertFilter) (*Page[Alert], error) {
	page, err := get[Page[Alert]](ctx, s, withQuery(alertsPath, filter.query()))
	if err != nil {
		return nil, err
	}
	return &page, nil
}
