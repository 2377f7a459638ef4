package dto

import (
	"fmt"
	"sort"

	goValidator "github.com/go-playground/validator/v10"
)

// ConsultationStatus is the terminal status of one pipeline run.
type ConsultationStatus string

const (
	StatusSuccess           ConsultationStatus = "success"
	StatusValidationFailed  ConsultationStatus = "validation_failed"
	StatusPortfolioError    ConsultationStatus = "portfolio_error"
	StatusRiskAnalysisError ConsultationStatus = "risk_analysis_error"
	StatusError             ConsultationStatus = "error"
)

// Risk profile buckets the financial analyst must choose from.
const (
	RiskProfileVeryConservative = "very_conservative"
	RiskProfileConservative     = "conservative"
	RiskProfileNeutral          = "neutral"
	RiskProfileAggressive       = "aggressive"
	RiskProfileVeryAggressive   = "very_aggressive"
)

// UserProfile is the immutable input of a consultation.
type UserProfile struct {
	TotalInvestableAmount float64 `json:"total_investable_amount" validate:"required,gt=0"`
	Age                   int     `json:"age" validate:"required,gte=18,lte=120"`
	ExperienceYears       int     `json:"stock_investment_experience_years" validate:"gte=0"`
	TargetAmount          float64 `json:"target_amount" validate:"required,gt=0"`
}

// AnalysisResult is the structured output of the financial analyst stage.
type AnalysisResult struct {
	RiskProfile              string  `json:"risk_profile" validate:"required,oneof=very_conservative conservative neutral aggressive very_aggressive"`
	RiskProfileReason        string  `json:"risk_profile_reason" validate:"required"`
	RequiredAnnualReturnRate float64 `json:"required_annual_return_rate"`
	ReturnRateReason         string  `json:"return_rate_reason" validate:"required"`
}

// ValidationVerdict is the reflection agent's accept/reject decision.
type ValidationVerdict struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// PortfolioAllocation maps tickers to integer percentage weights.
type PortfolioAllocation struct {
	Allocation map[string]int `json:"portfolio_allocation" validate:"required"`
	Strategy   string         `json:"strategy" validate:"required"`
	Reason     string         `json:"reason" validate:"required"`
}

// Tickers returns the allocation's ticker set in sorted order.
func (p *PortfolioAllocation) Tickers() []string {
	tickers := make([]string, 0, len(p.Allocation))
	for ticker := range p.Allocation {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}

// RiskScenario is one hypothesized macro condition with a reweighted
// allocation limited to the original portfolio's tickers.
type RiskScenario struct {
	Name                 string         `json:"name" validate:"required"`
	Description          string         `json:"description" validate:"required"`
	AllocationManagement map[string]int `json:"allocation_management" validate:"required"`
	Reason               string         `json:"reason" validate:"required"`
}

// RiskAssessment holds exactly two scenarios keyed scenario1/scenario2.
type RiskAssessment struct {
	Scenario1 RiskScenario `json:"scenario1"`
	Scenario2 RiskScenario `json:"scenario2"`
}

// ConsultationResult aggregates all stage artifacts of one pipeline run.
// Failed runs still carry every artifact produced before the failure.
type ConsultationResult struct {
	Status            ConsultationStatus   `json:"status"`
	Message           string               `json:"message"`
	FinancialAnalysis *AnalysisResult      `json:"financial_analysis,omitempty"`
	Verdict           *ValidationVerdict   `json:"validation,omitempty"`
	Portfolio         *PortfolioAllocation `json:"portfolio_result,omitempty"`
	RiskAssessment    *RiskAssessment      `json:"risk_result,omitempty"`
	FinalReport       string               `json:"final_report,omitempty"`
	Error             string               `json:"error,omitempty"`
}

// Validate checks the analyst output against its schema. Range checks on
// the return rate belong to the reflection stage, not here.
func (a *AnalysisResult) Validate(v *goValidator.Validate) error {
	if err := v.Struct(a); err != nil {
		return fmt.Errorf("analysis result failed schema validation: %w", err)
	}
	return nil
}

// Validate checks the portfolio against the catalog and its invariants:
// exactly three catalog tickers with integer weights summing to 100.
func (p *PortfolioAllocation) Validate(v *goValidator.Validate, catalog map[string]string) error {
	if err := v.Struct(p); err != nil {
		return fmt.Errorf("portfolio failed schema validation: %w", err)
	}

	if len(p.Allocation) != 3 {
		return fmt.Errorf("portfolio must hold exactly 3 tickers, got %d", len(p.Allocation))
	}

	sum := 0
	for ticker, weight := range p.Allocation {
		if _, ok := catalog[ticker]; !ok {
			return fmt.Errorf("ticker %s is not in the instrument catalog", ticker)
		}
		if weight < 0 || weight > 100 {
			return fmt.Errorf("weight for %s out of range: %d", ticker, weight)
		}
		sum += weight
	}
	if sum != 100 {
		return fmt.Errorf("allocation weights must sum to 100, got %d", sum)
	}
	return nil
}

// Validate checks both scenarios: schema fields present, and the scenario
// ticker sets introduce nothing outside the original allocation.
func (r *RiskAssessment) Validate(v *goValidator.Validate, original *PortfolioAllocation) error {
	for key, scenario := range map[string]RiskScenario{"scenario1": r.Scenario1, "scenario2": r.Scenario2} {
		if err := v.Struct(scenario); err != nil {
			return fmt.Errorf("%s failed schema validation: %w", key, err)
		}
		for ticker := range scenario.AllocationManagement {
			if _, ok := original.Allocation[ticker]; !ok {
				return fmt.Errorf("%s introduces ticker %s not present in the original portfolio", key, ticker)
			}
		}
	}
	return nil
}
