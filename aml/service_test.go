package aml_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/regulus-console/aml"
	"github.com/jrsteele09/regulus-console/api"
	"github.com/jrsteele09/regulus-console/events"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/jrsteele09/regulus-console/session"
	fakesessionrepo "github.com/jrsteele09/regulus-console/session/repofake"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	method      string
	uri         string
	contentType string
	body        string
}

type testFixture struct {
	mu       sync.Mutex
	requests []recordedRequest
	status   int
	body     string
	service  *aml.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{status: http.StatusOK, body: `{"success":true,"data":null}`}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, recordedRequest{
			method:      r.Method,
			uri:         r.URL.RequestURI(),
			contentType: r.Header.Get("Content-Type"),
			body:        string(body),
		})
		status, reply := f.status, f.body
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(server.Close)

	store, err := session.NewStore(fakesessionrepo.NewFakeRepo(), events.NewBus())
	require.NoError(t, err)
	require.NoError(t, store.SetCredential("test-token", time.Time{}))

	f.service = aml.NewService(api.New(server.URL, store))
	return f
}

func (f *testFixture) reply(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *testFixture) last(t *testing.T) recordedRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func (f *testFixture) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func TestListAlerts(t *testing.T) {
	t.Run("only set filters are sent", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusOK, `{"success":true,"data":{"items":[{"alert_id":"ALT-1","account_number":"ACC-9","severity":"high","rule_id":"R-7","description":"structuring","triggered_date":"2025-05-01T10:00:00"}],"total":1,"page":2,"page_size":25,"total_pages":1}}`)

		page, err := f.service.ListAlerts(context.Background(), aml.AlertFilter{
			Pagination: aml.Pagination{Page: 2, PageSize: 25},
			Severity:   aml.SeverityHigh,
		})
		require.NoError(t, err)
		require.Equal(t, "/api/v1/alerts?page=2&page_size=25&severity=high", f.last(t).uri)
		require.Len(t, page.Items, 1)
		require.Equal(t, "ALT-1", page.Items[0].ID)
		require.Equal(t, aml.SeverityHigh, page.Items[0].Severity)
		require.Equal(t, 2025, page.Items[0].TriggeredDate.Year())
		require.Equal(t, 25, page.PageSize)
	})

	t.Run("no filters", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusOK, `{"items":[],"total":0,"page":1,"page_size":50,"total_pages":0}`)

		page, err := f.service.ListAlerts(context.Background(), aml.AlertFilter{})
		require.NoError(t, err)
		require.Equal(t, "/api/v1/alerts", f.last(t).uri)
		require.Empty(t, page.Items)
	})

	t.Run("failure is the pipeline error", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusForbidden, `{"message":"forbidden","error_code":"AML0403"}`)

		_, err := f.service.ListAlerts(context.Background(), aml.AlertFilter{})
		var failure *api.RequestError
		require.ErrorAs(t, err, &failure)
		require.Equal(t, "AML0403", failure.Code)
	})
}

func TestCases(t *testing.T) {
	t.Run("list by status", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusOK, `{"success":true,"data":{"items":[{"case_id":"CASE-1","account_number":"ACC-1","case_status":"OPEN","case_score_percentage":81.5,"case_opened_date":"2025-05-01T10:00:00+00:00"}],"total":1,"page":1,"page_size":50,"total_pages":1}}`)

		page, err := f.service.ListCases(context.Background(), aml.CaseFilter{Status: aml.CaseStatusOpen})
		require.NoError(t, err)
		require.Equal(t, "/api/v1/cases?status=OPEN", f.last(t).uri)
		require.InDelta(t, 81.5, page.Items[0].ScorePercentage, 0.001)
	})

	t.Run("detail", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusOK, `{"success":true,"data":{"case_id":"CASE-1","account_number":"ACC-1","case_status":"ACCEPTED","case_score_percentage":90,"case_summary":"layering","behavoir_agent_score":88,"network_agent_summary":"dense ring","case_closed_date":null}}`)

		c, err := f.service.GetCase(context.Background(), "CASE-1")
		require.NoError(t, err)
		require.Equal(t, "/api/v1/cases/CASE-1", f.last(t).uri)
		require.Equal(t, "layering", c.Summary)
		require.True(t, c.Closed())
		require.True(t, c.ClosedDate.IsZero())

		agents := c.Agents()
		require.Len(t, agents, 5)
		require.Equal(t, 88.0, *agents[0].Score)
		require.Nil(t, agents[1].Score)
		require.Equal(t, "dense ring", agents[1].Summary)
	})

	t.Run("detail not found", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.GetCase(context.Background(), "CASE-404")
		require.ErrorIs(t, err, errors.ErrNotFound)
	})

	t.Run("id is path escaped", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusOK, `[]`)

		docs, err := f.service.CaseDocuments(context.Background(), "CASE/1")
		require.NoError(t, err)
		require.Empty(t, docs)
		require.Equal(t, "/api/v1/cases/CASE%2F1/documents", f.last(t).uri)
	})

	t.Run("empty id", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.GetCase(context.Background(), "")
		require.ErrorIs(t, err, errors.ErrInvalidInput)
		require.Zero(t, f.count())
	})
}

func TestSubmitDecision(t *testing.T) {
	t.Run("accept carries next action", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusCreated, `{"success":true,"data":{"id":4,"case_id":"CASE-1","decision":"ACCEPT","decision_by":"compliance_manager","decision_reason":"confirmed","next_action":"file-sar","decision_date":"2025-05-02T08:00:00"}}`)

		recorded, err := f.service.SubmitDecision(context.Background(), "CASE-1", aml.Decision{
			Decision:   aml.DecisionAccept,
			Reason:     "confirmed",
			NextAction: aml.NextActionFileSAR,
		})
		require.NoError(t, err)
		require.Equal(t, 4, recorded.ID)

		req := f.last(t)
		require.Equal(t, http.MethodPost, req.method)
		require.Equal(t, "/api/v1/cases/CASE-1/decisions", req.uri)
		require.JSONEq(t, `{"decision":"ACCEPT","decision_by":"compliance_manager","decision_reason":"confirmed","next_action":"file-sar"}`, req.body)
	})

	t.Run("reject never sends next action", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.SubmitDecision(context.Background(), "CASE-1", aml.Decision{
			Decision:   aml.DecisionReject,
			Reason:     "benign",
			NextAction: aml.NextActionEscalate,
		})
		require.NoError(t, err)

		var sent map[string]any
		require.NoError(t, json.Unmarshal([]byte(f.last(t).body), &sent))
		require.NotContains(t, sent, "next_action")
		require.Equal(t, "REJECT", sent["decision"])
	})

	invalid := []struct {
		name     string
		decision aml.Decision
	}{
		{"accept without next action", aml.Decision{Decision: aml.DecisionAccept, Reason: "ok"}},
		{"unknown next action", aml.Decision{Decision: aml.DecisionAccept, Reason: "ok", NextAction: "archive"}},
		{"missing reason", aml.Decision{Decision: aml.DecisionReject, Reason: "  "}},
		{"unknown decision", aml.Decision{Decision: "MAYBE", Reason: "ok"}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			_, err := f.service.SubmitDecision(context.Background(), "CASE-1", tt.decision)
			require.ErrorIs(t, err, errors.ErrInvalidInput)
			require.Zero(t, f.count())
		})
	}
}

func TestGenerateSAR(t *testing.T) {
	f := setupTestFixture(t)
	f.reply(http.StatusOK, "%PDF-1.4 report")

	pdf, err := f.service.GenerateSAR(context.Background(), "CASE-1")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 report", string(pdf))

	req := f.last(t)
	require.Equal(t, http.MethodPost, req.method)
	require.Equal(t, "/api/v1/cases/CASE-1/generate-sar", req.uri)
	require.Empty(t, req.contentType)
	require.Equal(t, "SAR_CASE-1.pdf", aml.SARFileName("CASE-1"))
}

func TestTransactions(t *testing.T) {
	t.Run("list filters", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusOK, `{"success":true,"data":{"items":[{"transaction_id":"TX-1","account_number":"ACC-1","transaction_amount":1250.5,"transaction_currency":"USD","transaction_type":"deposit","transaction_status":"held","transaction_date":"2025-05-01T10:00:00"}],"total":1,"page":1,"page_size":100,"total_pages":1}}`)

		page, err := f.service.ListTransactions(context.Background(), aml.TransactionFilter{
			AccountNumber: "ACC-1",
			Status:        aml.TransactionHeld,
		})
		require.NoError(t, err)
		require.Equal(t, "/api/v1/transactions?account_number=ACC-1&transaction_status=held", f.last(t).uri)
		require.Equal(t, aml.TransactionDeposit, page.Items[0].Type)
	})

	t.Run("create", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusCreated, `{"success":true,"data":{"transaction_id":"TX-2"}}`)

		raw, err := f.service.CreateTransaction(context.Background(), aml.ManualTransaction{
			AccountNumber: "ACC-1",
			Amount:        99.5,
			Currency:      "EUR",
			Type:          aml.TransactionWithdrawal,
		})
		require.NoError(t, err)
		require.Contains(t, string(raw), "TX-2")
		require.JSONEq(t, `{"account_number":"ACC-1","transaction_amount":99.5,"transaction_currency":"EUR","transaction_type":"withdrawal"}`, f.last(t).body)
	})

	t.Run("create rejects non positive amount", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.CreateTransaction(context.Background(), aml.ManualTransaction{
			AccountNumber: "ACC-1",
			Currency:      "EUR",
			Type:          aml.TransactionDeposit,
		})
		require.ErrorIs(t, err, errors.ErrInvalidInput)
		require.Zero(t, f.count())
	})
}

func TestCustomersAndAccounts(t *testing.T) {
	t.Run("customers default paging", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusOK, `{"success":true,"data":{"items":[{"customer_id":"CUS-1","full_name":"Ada Lovelace"}],"total":1,"page":1,"page_size":50,"total_pages":1}}`)

		page, err := f.service.ListCustomers(context.Background(), aml.Pagination{})
		require.NoError(t, err)
		require.Equal(t, "/api/v1/customers?page=1&page_size=50", f.last(t).uri)
		require.Equal(t, "Ada Lovelace", page.Items[0].FullName)
	})

	t.Run("accounts by customer", func(t *testing.T) {
		f := setupTestFixture(t)
		f.reply(http.StatusOK, `{"success":true,"data":{"items":[{"account_number":"ACC-1","customer_id":"CUS-1","account_status":"active"}],"total":1,"page":3,"page_size":10,"total_pages":3}}`)

		page, err := f.service.ListAccountsByCustomer(context.Background(), "CUS-1", aml.Pagination{Page: 3, PageSize: 10})
		require.NoError(t, err)
		require.Equal(t, "/api/v1/accounts/customer/CUS-1?page=3&page_size=10", f.last(t).uri)
		require.Equal(t, "active", page.Items[0].Status)
	})

	t.Run("accounts need a customer", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.ListAccountsByCustomer(context.Background(), "", aml.Pagination{})
		require.ErrorIs(t, err, errors.ErrInvalidInput)
	})
}

func TestSimulation(t *testing.T) {
	f := setupTestFixture(t)
	f.reply(http.StatusOK, `{"success":true,"data":[{"scenario_id":"SC-1","name":"Smurfing","description":"many small deposits"}]}`)

	scenarios, err := f.service.ListScenarios(context.Background())
	require.NoError(t, err)
	require.Equal(t, []aml.Scenario{{ID: "SC-1", Name: "Smurfing", Description: "many small deposits"}}, scenarios)

	f.reply(http.StatusOK, `{"success":true,"data":{"transactions":3}}`)
	raw, err := f.service.RunScenario(context.Background(), "ACC 1", "SC-1")
	require.NoError(t, err)
	require.JSONEq(t, `{"transactions":3}`, string(raw))

	req := f.last(t)
	require.Equal(t, "/api/v1/simulate/scenario?account_number=ACC+1", req.uri)
	require.JSONEq(t, `{"scenario_id":"SC-1"}`, req.body)
}
