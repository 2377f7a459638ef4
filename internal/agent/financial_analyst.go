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

const financialAnalystSystemPrompt = `You are a financial analysis expert. Based on the user information provided, you must evaluate the user's risk tolerance and calculate the required annual return rate.

The user information is provided in the following JSON format:
{
"total_investable_amount": <total amount available to invest>,
"age": <age>,
"stock_investment_experience_years": <years of stock investment experience>,
"target_amount": <target amount after one year>
}

Consider the following in your analysis:
1. Risk profile evaluation:
- Evaluate risk tolerance holistically from age, investment experience, financial situation, and target amount.
2. Required annual return rate calculation:
- Show the calculation step by step and explain each step.
- Briefly interpret what the calculated rate means.

Output your analysis as JSON in exactly this format:
{
"risk_profile": "one of: very_conservative, conservative, neutral, aggressive, very_aggressive",
"risk_profile_reason": "detailed explanation of the risk profile evaluation",
"required_annual_return_rate": required annual return rate (percentage, two decimal places),
"return_rate_reason": "detailed explanation of the calculation and its meaning"
}

When producing output:
- Do not include any additional explanation or text.
- Output pure JSON only, with no backticks or quotes around it.`

// FinancialAnalyst evaluates a user profile into a risk bucket and a
// required annual return rate.
type FinancialAnalyst struct {
	stage     config.StageModel
	agentRepo repository.AgentRepository
	validate  *goValidator.Validate
	logger    *logger.Logger
}

func NewFinancialAnalyst(cfg *config.Config, agentRepo repository.AgentRepository, validate *goValidator.Validate, log *logger.Logger) *FinancialAnalyst {
	return &FinancialAnalyst{
		stage:     cfg.Advisor.FinancialAnalyst,
		agentRepo: agentRepo,
		validate:  validate,
		logger:    log,
	}
}

func (a *FinancialAnalyst) Analyze(ctx context.Context, profile dto.UserProfile) (*dto.AnalysisResult, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user profile: %w", err)
	}

	text, err := a.agentRepo.Invoke(ctx, dto.AgentInvokeParam{
		AgentName:    "financial_analyst",
		Model:        a.stage.Model,
		SystemPrompt: financialAnalystSystemPrompt,
		UserMessage:  fmt.Sprintf("Please analyze the following user information:\n%s", profileJSON),
		Temperature:  a.stage.Temperature,
		MaxTokens:    a.stage.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("financial analysis failed: %w", err)
	}

	var result dto.AnalysisResult
	if err := ExtractJSON(text, &result); err != nil {
		a.logger.ErrorContext(ctx, "Failed to extract analysis result",
			logger.StringField("raw_response", text))
		return nil, err
	}

	if err := result.Validate(a.validate); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "Financial analysis complete",
		logger.StringField("risk_profile", result.RiskProfile),
		logger.Float64Field("required_annual_return_rate", result.RequiredAnnualReturnRate),
	)
	return &result, nil
}
