package aml

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jrsteele09/regulus-console/internal/errors"
)

const (
	scenariosPath = "/api/v1/simulate/scenarios"
	scenarioPath  = "/api/v1/simulate/scenario"
)

// Scenario is a canned transaction pattern the API can replay against an account.
type Scenario struct {
	ID          string `json:"scenario_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Service) ListScenarios(ctx context.Context) ([]Scenario, error) {
	return get[[]Scenario](ctx, s, scenariosPath)
}

// RunScenario replays the scenario against accountNumber.
func (s *Service) RunScenario(ctx context.Context, accountNumber, scenarioID string) (json.RawMessage, error) {
	if accountNumber == "" || scenarioID == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "account and scenario are required")
	}
	values := url.Values{}
	values.Set("account_number", accountNumber)
	return post[json.RawMessage](ctx, s, withQuery(scenarioPath, values), map[string]string{"scenario_id": scenarioID})
}
