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

const portfolioArchitectSystemPrompt = `You are a professional portfolio designer. Based on the customer's financial analysis result, you must propose a concrete investment portfolio.

Your task:
1. Carefully review and interpret the financial analysis result.
2. Call the "list_available_instruments" tool to obtain the list of available investment products.
3. From that list, select the 3 products that best match the customer's analysis while keeping the portfolio diversified.
4. For each selected product, call the "get_price_history" tool to obtain recent price data.
5. Analyze the price data and decide the final portfolio weights.
6. Explain the rationale behind the portfolio in detail.

Respond in exactly this JSON format:
{
  "portfolio_allocation": {"ticker1": weight1, "ticker2": weight2, "ticker3": weight3},
  "strategy": "description of the investment strategy",
  "reason": "rationale behind the portfolio composition"
}

When responding:
- Explain logically how the proposed portfolio helps the customer reach their investment goal.
- Express every weight as an integer, and make sure they sum to exactly 100.
- When writing the rationale, always pair each ticker with its description, e.g. "QQQ (US technology stocks)".`

// PortfolioArchitect turns an accepted analysis into a three instrument
// allocation, using market data tools during reasoning.
type PortfolioArchitect struct {
	stage     config.StageModel
	agentRepo repository.AgentRepository
	toolset   *Toolset
	catalog   repository.InstrumentCatalogRepository
	validate  *goValidator.Validate
	logger    *logger.Logger
}

func NewPortfolioArchitect(cfg *config.Config, agentRepo repository.AgentRepository, toolset *Toolset, catalog repository.InstrumentCatalogRepository, validate *goValidator.Validate, log *logger.Logger) *PortfolioArchitect {
	return &PortfolioArchitect{
		stage:     cfg.Advisor.PortfolioDesign,
		agentRepo: agentRepo,
		toolset:   toolset,
		catalog:   catalog,
		validate:  validate,
		logger:    log,
	}
}

func (a *PortfolioArchitect) DesignPortfolio(ctx context.Context, analysis *dto.AnalysisResult) (*dto.PortfolioAllocation, error) {
	analysisJSON, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	userMessage := fmt.Sprintf("Please design a portfolio based on the following financial analysis result:\n\n%s\n\nPropose the optimal portfolio taking this analysis into account.", analysisJSON)

	text, err := a.agentRepo.Invoke(ctx, dto.AgentInvokeParam{
		AgentName:    "portfolio_architect",
		Model:        a.stage.Model,
		SystemPrompt: portfolioArchitectSystemPrompt,
		UserMessage:  userMessage,
		Temperature:  a.stage.Temperature,
		MaxTokens:    a.stage.MaxTokens,
		Tools:        portfolioTools,
		ToolHandler:  a.toolset.Dispatch,
	})
	if err != nil {
		return nil, fmt.Errorf("portfolio design failed: %w", err)
	}

	var portfolio dto.PortfolioAllocation
	if err := ExtractJSON(text, &portfolio); err != nil {
		a.logger.ErrorContext(ctx, "Failed to extract portfolio allocation",
			logger.StringField("raw_response", text))
		return nil, err
	}

	if err := portfolio.Validate(a.validate, a.catalog.List()); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "Portfolio design complete",
		logger.Field("allocation", portfolio.Allocation))
	return &portfolio, nil
}
