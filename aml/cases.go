package aml

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/regulus-console/api"
	"github.com/jrsteele09/regulus-console/internal/errors"
	"github.com/rs/zerolog/log"
)

const casesPath = "/api/v1/cases"

type CaseStatus string

const (
	CaseStatusOpen     CaseStatus = "OPEN"
	CaseStatusClosed   CaseStatus = "CLOSE"
	CaseStatusAccepted CaseStatus = "ACCEPTED"
)

type CaseListItem struct {
	ID              string        `json:"case_id"`
	AlertID         string        `json:"alert_id,omitempty"`
	AccountNumber   string        `json:"account_number"`
	Status          CaseStatus    `json:"case_status"`
	ScorePercentage float64       `json:"case_score_percentage"`
	AssignedTo      string        `json:"assigned_to,omitempty"`
	OpenedDate      api.Timestamp `json:"case_opened_date"`
	Summary         string        `json:"case_summary,omitempty"`
}

// Case is the full investigation record with the per-agent assessments.
type Case struct {
	CaseListItem
	TransactionID string `json:"transaction_id,omitempty"`

	BehaviorAgentScore        *float64 `json:"behavoir_agent_score,omitempty"`
	BehaviorAgentSummary      string   `json:"behavoir_agent_summary,omitempty"`
	NetworkAgentScore         *float64 `json:"network_agent_score,omitempty"`
	NetworkAgentSummary       string   `json:"network_agent_summary,omitempty"`
	ContextualAgentScore      *float64 `json:"contextual_agent_score,omitempty"`
	ContextualAgentSummary    string   `json:"contextual_agent_summary,omitempty"`
	EvidenceAgentScore        *float64 `json:"evidence_agent_score,omitempty"`
	EvidenceAgentSummary      string   `json:"evidence_agent_summary,omitempty"`
	FalsePositiveAgentScore   *float64 `json:"false_positive_agent_score,omitempty"`
	FalsePositiveAgentSummary string   `json:"false_positive_agent_summary,omitempty"`

	ClosedDate api.Timestamp  `json:"case_closed_date"`
	Documents  []CaseDocument `json:"documents,omitempty"`
	Decisions  []CaseDecision `json:"decisions,omitempty"`
}

// Closed reports whether the case no longer accepts decisions.
func (c *Case) Closed() bool {
	return c.Status == CaseStatusClosed || c.Status == CaseStatusAccepted
}

// AgentScore is one agent's assessment of a case.
type AgentScore struct {
	Label   string
	Score   *float64
	Summary string
}

func (c *Case) Agents() []AgentScore {
	return []AgentScore{
		{Label: "Behavioral", Score: c.BehaviorAgentScore, Summary: c.BehaviorAgentSummary},
		{Label: "Network", Score: c.NetworkAgentScore, Summary: c.NetworkAgentSummary},
		{Label: "Contextual", Score: c.ContextualAgentScore, Summary: c.ContextualAgentSummary},
		{Label: "Evidence", Score: c.EvidenceAgentScore, Summary: c.EvidenceAgentSummary},
		{Label: "False Positive", Score: c.FalsePositiveAgentScore, Summary: c.FalsePositiveAgentSummary},
	}
}

type CaseDocument struct {
	ID          string        `json:"document_id"`
	CaseID      string        `json:"case_id,omitempty"`
	ContentType string        `json:"content_type"`
	Content     string        `json:"content"`
	GeneratedBy string        `json:"generated_by,omitempty"`
	Version     int           `json:"version"`
	CreatedDate api.Timestamp `json:"created_date"`
}

type CaseDecision struct {
	ID           int           `json:"id"`
	CaseID       string        `json:"case_id"`
	Decision     DecisionType  `json:"decision"`
	DecisionBy   string        `json:"decision_by"`
	DecisionDate api.Timestamp `json:"decision_date"`
	Reason       string        `json:"decision_reason"`
	NextAction   NextAction    `json:"next_action,omitempty"`
}

type CaseFilter struct {
	Pagination
	Status CaseStatus
}

func (f CaseFilter) query() url.Values {
	values := url.Values{}
	f.Pagination.apply(values)
	setString(values, "status", string(f.Status))
	return values
}

type DecisionType string

const (
	DecisionAccept DecisionType = "ACCEPT"
	DecisionReject DecisionType = "REJECT"
)

type NextAction string

const (
	NextActionFileSAR          NextAction = "file-sar"
	NextActionEscalate         NextAction = "escalate"
	NextActionRequestDocuments NextAction = "request-additional-documents"
)

// NextActions lists the follow-ups an accepted case can be routed to.
var NextActions = []NextAction{NextActionFileSAR, NextActionEscalate, NextActionRequestDocuments}

// DecisionByComplianceManager is recorded as the decision maker when none is given.
const DecisionByComplianceManager = "compliance_manager"

// Decision is an operator's verdict on a case. NextAction is only sent for
// ACCEPT.
type Decision struct {
	Decision   DecisionType `json:"decision"`
	DecisionBy string       `json:"decision_by"`
	Reason     string       `json:"decision_reason"`
	NextAction NextAction   `json:"next_action,omitempty"`
}

func (d Decision) Validate() error {
	switch d.Decision {
	case DecisionAccept:
		if d.NextAction == "" {
			return errors.Wrapf(errors.ErrInvalidInput, "next action is required to accept")
		}
		if !validNextAction(d.NextAction) {
			return errors.Wrapf(errors.ErrInvalidInput, "unknown next action %q", d.NextAction)
		}
	case DecisionReject:
	default:
		return errors.Wrapf(errors.ErrInvalidInput, "decision must be %s or %s", DecisionAccept, DecisionReject)
	}
	if strings.TrimSpace(d.Reason) == "" {
		return errors.Wrapf(errors.ErrInvalidInput, "decision reason is required")
	}
	return nil
}

func validNextAction(action NextAction) bool {
	for _, a := range NextActions {
		if a == action {
			return true
		}
	}
	return false
}

func (s *Service) ListCases(ctx context.Context, filter CaseFilter) (*Page[CaseListItem], error) {
	page, err := get[Page[CaseListItem]](ctx, s, withQuery(casesPath, filter.query()))
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *Service) GetCase(ctx context.Context, caseID string) (*Case, error) {
	if err := requireID("case", caseID); err != nil {
		return nil, err
	}
	c, err := get[*Case](ctx, s, casePath(caseID))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "case %s", caseID)
	}
	return c, nil
}

func (s *Service) CaseDocuments(ctx context.Context, caseID string) ([]CaseDocument, error) {
	if err := requireID("case", caseID); err != nil {
		return nil, err
	}
	return get[[]CaseDocument](ctx, s, casePath(caseID)+"/documents")
}

// SubmitDecision records d against the case. REJECT never carries a next action.
func (s *Service) SubmitDecision(ctx context.Context, caseID string, d Decision) (*CaseDecision, error) {
	if err := requireID("case", caseID); err != nil {
		return nil, err
	}
	if d.Decision == DecisionReject {
		d.NextAction = ""
	}
	if d.DecisionBy == "" {
		d.DecisionBy = DecisionByComplianceManager
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	recorded, err := post[*CaseDecision](ctx, s, casePath(caseID)+"/decisions", d)
	if err != nil {
		return nil, err
	}
	log.Info().Str("case_id", caseID).Str("decision", string(d.Decision)).Msg("Decision submitted")
	return recorded, nil
}

// GenerateSAR produces the suspicious activity report PDF for a case.
func (s *Service) GenerateSAR(ctx context.Context, caseID string) ([]byte, error) {
	if err := requireID("case", caseID); err != nil {
		return nil, err
	}
	return s.api.Download(ctx, api.Request{
		Method: http.MethodPost,
		Path:   casePath(caseID) + "/generate-sar",
	})
}

// SARFileName is the conventional download name for a case's SAR.
func SARFileName(caseID string) string {
	return "SAR_" + caseID + ".pdf"
}

func casePath(caseID string) string {
	return casesPath + "/" + url.PathEscape(caseID)
}
