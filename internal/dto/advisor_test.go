package dto

import (
	"testing"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

var testCatalog = map[string]string{
	"SPY": "SPDR S&P 500 ETF Trust (US large cap)",
	"QQQ": "Invesco QQQ Trust (US technology)",
	"GLD": "SPDR Gold Shares (gold)",
	"AGG": "iShares Core U.S. Aggregate Bond ETF (US aggregate bonds)",
}

func TestAnalysisResultValidate(t *testing.T) {
	v := goValidator.New()

	valid := AnalysisResult{
		RiskProfile:              RiskProfileAggressive,
		RiskProfileReason:        "young investor with long experience",
		RequiredAnnualReturnRate: 40,
		ReturnRateReason:         "(70000000-50000000)/50000000*100 = 40.00%",
	}
	assert.NoError(t, valid.Validate(v))

	unknownProfile := valid
	unknownProfile.RiskProfile = "reckless"
	assert.Error(t, unknownProfile.Validate(v))

	missingReason := valid
	missingReason.RiskProfileReason = ""
	assert.Error(t, missingReason.Validate(v))
}

func TestPortfolioAllocationValidate(t *testing.T) {
	v := goValidator.New()

	tests := []struct {
		name      string
		portfolio PortfolioAllocation
		wantErr   string
	}{
		{
			name: "valid three ticker allocation",
			portfolio: PortfolioAllocation{
				Allocation: map[string]int{"SPY": 50, "QQQ": 30, "GLD": 20},
				Strategy:   "growth with a hedge",
				Reason:     "diversified across equities and gold",
			},
		},
		{
			name: "two tickers only",
			portfolio: PortfolioAllocation{
				Allocation: map[string]int{"SPY": 60, "QQQ": 40},
				Strategy:   "growth",
				Reason:     "concentrated",
			},
			wantErr: "exactly 3 tickers",
		},
		{
			name: "four tickers",
			portfolio: PortfolioAllocation{
				Allocation: map[string]int{"SPY": 25, "QQQ": 25, "GLD": 25, "AGG": 25},
				Strategy:   "spread",
				Reason:     "too many holdings",
			},
			wantErr: "exactly 3 tickers",
		},
		{
			name: "weights do not sum to 100",
			portfolio: PortfolioAllocation{
				Allocation: map[string]int{"SPY": 50, "QQQ": 30, "GLD": 10},
				Strategy:   "growth",
				Reason:     "sums to 90",
			},
			wantErr: "sum to 100",
		},
		{
			name: "ticker outside catalog",
			portfolio: PortfolioAllocation{
				Allocation: map[string]int{"SPY": 50, "QQQ": 30, "NOPE": 20},
				Strategy:   "growth",
				Reason:     "unknown holding",
			},
			wantErr: "not in the instrument catalog",
		},
		{
			name: "negative weight",
			portfolio: PortfolioAllocation{
				Allocation: map[string]int{"SPY": 120, "QQQ": -40, "GLD": 20},
				Strategy:   "leveraged",
				Reason:     "short position",
			},
			wantErr: "out of range",
		},
		{
			name: "missing strategy",
			portfolio: PortfolioAllocation{
				Allocation: map[string]int{"SPY": 50, "QQQ": 30, "GLD": 20},
				Reason:     "no strategy text",
			},
			wantErr: "schema validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.portfolio.Validate(v, testCatalog)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestRiskAssessmentValidate(t *testing.T) {
	v := goValidator.New()
	original := &PortfolioAllocation{
		Allocation: map[string]int{"SPY": 50, "QQQ": 30, "GLD": 20},
		Strategy:   "growth",
		Reason:     "base case",
	}

	scenario := func(tickers map[string]int) RiskScenario {
		return RiskScenario{
			Name:                 "rate shock",
			Description:          "rapid tightening",
			AllocationManagement: tickers,
			Reason:               "shift toward defensives",
		}
	}

	valid := RiskAssessment{
		Scenario1: scenario(map[string]int{"SPY": 40, "QQQ": 20, "GLD": 40}),
		Scenario2: scenario(map[string]int{"SPY": 60, "QQQ": 30, "GLD": 10}),
	}
	assert.NoError(t, valid.Validate(v, original))

	introducesTicker := RiskAssessment{
		Scenario1: scenario(map[string]int{"SPY": 40, "QQQ": 20, "AGG": 40}),
		Scenario2: scenario(map[string]int{"SPY": 60, "QQQ": 30, "GLD": 10}),
	}
	err := introducesTicker.Validate(v, original)
	assert.ErrorContains(t, err, "not present in the original portfolio")

	missingFields := RiskAssessment{
		Scenario1: RiskScenario{Name: "incomplete"},
		Scenario2: scenario(map[string]int{"SPY": 60, "QQQ": 30, "GLD": 10}),
	}
	assert.ErrorContains(t, missingFields.Validate(v, original), "schema validation")
}

func TestPortfolioAllocationTickers(t *testing.T) {
	p := PortfolioAllocation{Allocation: map[string]int{"QQQ": 30, "GLD": 20, "SPY": 50}}
	assert.Equal(t, []string{"GLD", "QQQ", "SPY"}, p.Tickers())
}
