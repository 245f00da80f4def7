package models

import (
	"fmt"
	"strings"
	"time"

	"OracleAgent/pkg/util"
)

// Known scenario types. Stored as free text; other values are accepted.
const (
	ScenarioRetirement = "retirement"
	ScenarioHealth     = "health"
	ScenarioUniversity = "university"
	ScenarioDailyBills = "daily_bills"
)

const DefaultInflationRate = 0.07

// PaymentScenario is a user-defined future payment need.
type PaymentScenario struct {
	ID            string     `json:"id"`
	ScenarioType  string     `json:"scenario_type"`
	AmountUSD     float64    `json:"amount_usd"`
	TargetDate    *time.Time `json:"target_date"`
	RiskTolerance string     `json:"risk_tolerance"`
	InflationRate float64    `json:"inflation_rate"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateScenarioRequest is the client-supplied part of a scenario.
type CreateScenarioRequest struct {
	ScenarioType  string   `json:"scenario_type" validate:"required,max=64"`
	AmountUSD     float64  `json:"amount_usd" validate:"required,gt=0"`
	TargetDate    string   `json:"target_date"`
	RiskTolerance string   `json:"risk_tolerance" default:"medium" validate:"oneof=low medium high"`
	InflationRate *float64 `json:"inflation_rate" default:"0.07" validate:"required,gte=-1,lte=1"`
}

// ParseTargetDate returns nil for an empty target date.
func (r *CreateScenarioRequest) ParseTargetDate() (*time.Time, error) {
	s := strings.TrimSpace(r.TargetDate)
	if s == "" {
		return nil, nil
	}
	t, ok := util.ParseTime(s)
	if !ok {
		return nil, fmt.Errorf("target_date: unrecognised time %q", s)
	}
	return &t, nil
}
