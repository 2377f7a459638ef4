package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"investment-advisor/config"
	"investment-advisor/internal/agent"
	"investment-advisor/internal/dto"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAgentRepo struct {
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
}

func newFakeAgentRepo() *fakeAgentRepo {
	return &fakeAgentRepo{
		responses: map[string]string{},
		errs:      map[string]error{},
		calls:     map[string]int{},
	}
}

func (f *fakeAgentRepo) Invoke(ctx context.Context, param dto.AgentInvokeParam) (string, error) {
	f.calls[param.AgentName]++
	if err := f.errs[param.AgentName]; err != nil {
		return "", err
	}
	return f.responses[param.AgentName], nil
}

type stubMarketData struct{}

func (stubMarketData) GetPriceHistory(ctx context.Context, param dto.GetPriceHistoryParam) (dto.PriceSeries, error) {
	return dto.PriceSeries{"2026-08-25": 100.0}, nil
}

func (stubMarketData) GetNews(ctx context.Context, ticker string, topN int) (*dto.NewsDigest, error) {
	return &dto.NewsDigest{Ticker: ticker}, nil
}

func (stubMarketData) GetMarketIndicators(ctx context.Context) (map[string]dto.MarketIndicator, error) {
	return map[string]dto.MarketIndicator{}, nil
}

const (
	validAnalysisJSON  = `{"risk_profile":"aggressive","risk_profile_reason":"young with long experience","required_annual_return_rate":40.00,"return_rate_reason":"(70000000-50000000)/50000000*100 = 40.00%"}`
	validPortfolioJSON = `{"portfolio_allocation":{"SPY":50,"QQQ":30,"GLD":20},"strategy":"growth with a gold hedge","reason":"SPY (US large cap) anchors the portfolio"}`
	validRiskJSON      = `{"scenario1":{"name":"rate shock","description":"rapid tightening","allocation_management":{"SPY":40,"QQQ":20,"GLD":40},"reason":"rotate into gold"},"scenario2":{"name":"soft landing","description":"growth holds up","allocation_management":{"SPY":55,"QQQ":35,"GLD":10},"reason":"lean into equities"}}`
	validReport        = "### Investment Portfolio Analysis Report\nAll good."
)

func testProfile() dto.UserProfile {
	return dto.UserProfile{
		TotalInvestableAmount: 50000000,
		Age:                   35,
		ExperienceYears:       10,
		TargetAmount:          70000000,
	}
}

func newTestAdvisor(t *testing.T, agentRepo repository.AgentRepository) AdvisorService {
	t.Helper()

	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Advisor.StageTimeout = time.Minute
	cfg.Advisor.MaxToolTurns = 8

	repo := &repository.Repository{
		AgentRepo:      agentRepo,
		MarketDataRepo: stubMarketData{},
		CatalogRepo:    repository.NewInstrumentCatalogRepository(cfg),
	}

	agents := agent.NewAgents(cfg, repo, log)
	return NewAdvisorService(cfg, log, agents, nil, nil)
}

func happyPathRepo() *fakeAgentRepo {
	repo := newFakeAgentRepo()
	repo.responses["financial_analyst"] = validAnalysisJSON
	repo.responses["reflection_validator"] = "yes"
	repo.responses["portfolio_architect"] = validPortfolioJSON
	repo.responses["risk_manager"] = validRiskJSON
	repo.responses["report_generator"] = validReport
	return repo
}

func TestConsult_Success(t *testing.T) {
	repo := happyPathRepo()
	advisor := newTestAdvisor(t, repo)

	result := advisor.Consult(context.Background(), testProfile())

	assert.Equal(t, dto.StatusSuccess, result.Status)
	assert.Empty(t, result.Error)

	require.NotNil(t, result.FinancialAnalysis)
	assert.Equal(t, dto.RiskProfileAggressive, result.FinancialAnalysis.RiskProfile)
	assert.Equal(t, 40.00, result.FinancialAnalysis.RequiredAnnualReturnRate)

	require.NotNil(t, result.Verdict)
	assert.True(t, result.Verdict.Accepted)

	require.NotNil(t, result.Portfolio)
	assert.Equal(t, map[string]int{"SPY": 50, "QQQ": 30, "GLD": 20}, result.Portfolio.Allocation)

	require.NotNil(t, result.RiskAssessment)
	assert.Equal(t, "rate shock", result.RiskAssessment.Scenario1.Name)

	assert.Equal(t, validReport, result.FinalReport)

	// Exactly one invocation per stage.
	for _, name := range []string{"financial_analyst", "reflection_validator", "portfolio_architect", "risk_manager", "report_generator"} {
		assert.Equal(t, 1, repo.calls[name], name)
	}
}

func TestConsult_ValidationRejected(t *testing.T) {
	repo := happyPathRepo()
	repo.responses["reflection_validator"] = "no\nThe required annual return rate of 900% is outside the 0-50% range."

	advisor := newTestAdvisor(t, repo)
	result := advisor.Consult(context.Background(), testProfile())

	assert.Equal(t, dto.StatusValidationFailed, result.Status)
	assert.Contains(t, result.Error, "900%")

	// The rejected analysis is kept for the caller.
	require.NotNil(t, result.FinancialAnalysis)
	require.NotNil(t, result.Verdict)
	assert.False(t, result.Verdict.Accepted)

	// Rejection is a hard gate: nothing downstream runs.
	assert.Nil(t, result.Portfolio)
	assert.Nil(t, result.RiskAssessment)
	assert.Empty(t, result.FinalReport)
	assert.Zero(t, repo.calls["portfolio_architect"])
	assert.Zero(t, repo.calls["risk_manager"])
	assert.Zero(t, repo.calls["report_generator"])
}

func TestConsult_OutOfRangeReturnRateRejected(t *testing.T) {
	repo := happyPathRepo()
	repo.responses["financial_analyst"] = `{"risk_profile":"very_aggressive","risk_profile_reason":"one year horizon with a 10x target","required_annual_return_rate":900.00,"return_rate_reason":"(100000000-10000000)/10000000*100 = 900.00%"}`
	// The reviewer would answer "yes", but the range gate rejects first.
	repo.responses["reflection_validator"] = "yes"

	advisor := newTestAdvisor(t, repo)
	result := advisor.Consult(context.Background(), testProfile())

	assert.Equal(t, dto.StatusValidationFailed, result.Status)
	assert.Contains(t, result.Error, "900.00%")

	require.NotNil(t, result.FinancialAnalysis)
	require.NotNil(t, result.Verdict)
	assert.False(t, result.Verdict.Accepted)

	assert.Nil(t, result.Portfolio)
	assert.Nil(t, result.RiskAssessment)
	assert.Zero(t, repo.calls["reflection_validator"])
	assert.Zero(t, repo.calls["portfolio_architect"])
}

type panickingAgentRepo struct{}

func (panickingAgentRepo) Invoke(ctx context.Context, param dto.AgentInvokeParam) (string, error) {
	panic("model client blew up")
}

func TestConsult_StagePanicIsContained(t *testing.T) {
	advisor := newTestAdvisor(t, panickingAgentRepo{})

	result := advisor.Consult(context.Background(), testProfile())

	require.NotNil(t, result)
	assert.Equal(t, dto.StatusError, result.Status)
	assert.Contains(t, result.Error, "model client blew up")
	assert.NotEmpty(t, result.Message)
}

func TestConsult_AnalysisExtractionFails(t *testing.T) {
	repo := happyPathRepo()
	repo.responses["financial_analyst"] = "I cannot answer that in JSON form."

	advisor := newTestAdvisor(t, repo)
	result := advisor.Consult(context.Background(), testProfile())

	assert.Equal(t, dto.StatusError, result.Status)
	assert.Nil(t, result.FinancialAnalysis)
	assert.Zero(t, repo.calls["reflection_validator"])
}

func TestConsult_PortfolioError(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "weights sum under 100",
			response: `{"portfolio_allocation":{"SPY":50,"QQQ":30,"GLD":10},"strategy":"growth","reason":"sums to 90"}`,
		},
		{
			name:     "ticker outside catalog",
			response: `{"portfolio_allocation":{"SPY":50,"QQQ":30,"NOPE":20},"strategy":"growth","reason":"unknown holding"}`,
		},
		{
			name:     "not json",
			response: "here is a prose answer with no structure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := happyPathRepo()
			repo.responses["portfolio_architect"] = tt.response

			advisor := newTestAdvisor(t, repo)
			result := advisor.Consult(context.Background(), testProfile())

			assert.Equal(t, dto.StatusPortfolioError, result.Status)
			assert.NotEmpty(t, result.Error)

			// Artifacts produced before the failure survive.
			assert.NotNil(t, result.FinancialAnalysis)
			assert.NotNil(t, result.Verdict)
			assert.Nil(t, result.Portfolio)
			assert.Nil(t, result.RiskAssessment)
			assert.Zero(t, repo.calls["risk_manager"])
		})
	}
}

func TestConsult_RiskAnalysisError(t *testing.T) {
	repo := happyPathRepo()
	// Scenario introduces a ticker the portfolio never held.
	repo.responses["risk_manager"] = `{"scenario1":{"name":"rate shock","description":"tightening","allocation_management":{"SPY":40,"QQQ":20,"AGG":40},"reason":"rotate"},"scenario2":{"name":"soft landing","description":"growth holds","allocation_management":{"SPY":55,"QQQ":35,"GLD":10},"reason":"lean in"}}`

	advisor := newTestAdvisor(t, repo)
	result := advisor.Consult(context.Background(), testProfile())

	assert.Equal(t, dto.StatusRiskAnalysisError, result.Status)
	assert.NotNil(t, result.Portfolio)
	assert.Nil(t, result.RiskAssessment)
	assert.Zero(t, repo.calls["report_generator"])
}

func TestConsult_ReportFailure(t *testing.T) {
	repo := happyPathRepo()
	repo.errs["report_generator"] = errors.New("model unavailable")

	advisor := newTestAdvisor(t, repo)
	result := advisor.Consult(context.Background(), testProfile())

	assert.Equal(t, dto.StatusError, result.Status)
	assert.Contains(t, result.Error, "model unavailable")

	// Everything up to the report survives.
	assert.NotNil(t, result.FinancialAnalysis)
	assert.NotNil(t, result.Portfolio)
	assert.NotNil(t, result.RiskAssessment)
	assert.Empty(t, result.FinalReport)
}
