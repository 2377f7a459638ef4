package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"investment-advisor/config"
	"investment-advisor/internal/dto"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
)

const riskManagerSystemPrompt = `You are a risk management expert. You must perform a risk analysis of the proposed portfolio and provide portfolio adjustment guidance for the most likely economic scenarios.

Input data:
The proposed portfolio is provided in the following JSON format:
{
  "portfolio_allocation": {
    "ticker1": weight1,
    "ticker2": weight2,
    "ticker3": weight3
  },
  "strategy": "description of the investment strategy",
  "reason": "rationale behind the portfolio composition"
}

Your task:
Use the available tools freely to accomplish the following goals.

1. Perform a comprehensive risk analysis of the given portfolio.
2. Derive the 2 most likely economic scenarios.
3. For each scenario, propose how the portfolio should be adjusted.

Respond in exactly this format:
{
  "scenario1": {
    "name": "name of scenario 1",
    "description": "detailed description of scenario 1",
    "allocation_management": {
      "ticker1": new_weight1,
      "ticker2": new_weight2,
      "ticker3": new_weight3
    },
    "reason": "reason and strategy for the adjustment"
  },
  "scenario2": {
    "name": "name of scenario 2",
    "description": "detailed description of scenario 2",
    "allocation_management": {
      "ticker1": new_weight1,
      "ticker2": new_weight2,
      "ticker3": new_weight3
    },
    "reason": "reason and strategy for the adjustment"
  }
}

When responding, you must observe these rules:
1. Only use the tickers received in the input when adjusting the portfolio.
2. Do not add new products or remove existing ones.
3. Make sure the adjusted weights of each scenario sum to 100.`

// RiskManager stresses an allocation against two hypothesized macro
// scenarios, using news and indicator tools during reasoning.
type RiskManager struct {
	stage     config.StageModel
	agentRepo repository.AgentRepository
	toolset   *Toolset
	validate  *goValidator.Validate
	logger    *logger.Logger
}

func NewRiskManager(cfg *config.Config, agentRepo repository.AgentRepository, toolset *Toolset, validate *goValidator.Validate, log *logger.Logger) *RiskManager {
	return &RiskManager{
		stage:     cfg.Advisor.RiskAnalysis,
		agentRepo: agentRepo,
		toolset:   toolset,
		validate:  validate,
		logger:    log,
	}
}

func (a *RiskManager) AssessRisk(ctx context.Context, portfolio *dto.PortfolioAllocation) (*dto.RiskAssessment, error) {
	portfolioJSON, err := json.MarshalIndent(portfolio, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
	}

	userMessage := fmt.Sprintf("Please analyze the risk of the following portfolio and provide scenario based adjustment guidance:\n\n%s", portfolioJSON)

	text, err := a.agentRepo.Invoke(ctx, dto.AgentInvokeParam{
		AgentName:    "risk_manager",
		Model:        a.stage.Model,
		SystemPrompt: riskManagerSystemPrompt,
		UserMessage:  userMessage,
		Temperature:  a.stage.Temperature,
		MaxTokens:    a.stage.MaxTokens,
		Tools:        riskTools,
		ToolHandler:  a.toolset.Dispatch,
	})
	if err != nil {
		return nil, fmt.Errorf("risk analysis failed: %w", err)
	}

	var assessment dto.RiskAssessment
	if err := ExtractJSON(text, &assessment); err != nil {
		a.logger.ErrorContext(ctx, "Failed to extract risk assessment",
			logger.StringField("raw_response", text))
		return nil, err
	}

	if err := assessment.Validate(a.validate, portfolio); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "Risk analysis complete",
		logger.StringField("scenario1", assessment.Scenario1.Name),
		logger.StringField("scenario2", assessment.Scenario2.Name),
	)
	return &assessment, nil
}
