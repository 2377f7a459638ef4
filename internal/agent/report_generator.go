package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"investment-advisor/config"
	"investment-advisor/internal/dto"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"
)

const reportGeneratorSystemPrompt = `You are a professional wealth advisor. You must write an investment portfolio analysis report based on the information provided.

Analyze all of the information holistically and write the report strictly in this format:

### Investment Portfolio Analysis Report
#### 1. Customer Profile Analysis
- [customer information]
#### 2. Base Portfolio Composition
##### Asset Allocation
- [ETF ticker] ([ETF description]): [weight]%
##### Allocation Strategy Rationale
- [explanation of the allocation strategy]
#### 3. Scenario Response Strategies
##### Scenario: [scenario 1]
Adjusted asset allocation:
- [ETF ticker]: [new weight]% ([change])
Response strategy:
- [response strategy]
#### 4. Cautions and Recommendations
- [cautions and recommendations]
#### 5. Conclusion
[overall conclusion and recommendation on the portfolio strategy]

Keep the following in mind while writing:
1. State the risks of investing clearly.
2. Tailor the advice to the customer's specific situation.
3. Include a short legal disclaimer at the end of the report.`

// ReportGenerator composes the final free text report. Its output is
// delivered verbatim, no JSON extraction happens here.
type ReportGenerator struct {
	stage     config.StageModel
	agentRepo repository.AgentRepository
	logger    *logger.Logger
}

func NewReportGenerator(cfg *config.Config, agentRepo repository.AgentRepository, log *logger.Logger) *ReportGenerator {
	return &ReportGenerator{
		stage:     cfg.Advisor.ReportGenerator,
		agentRepo: agentRepo,
		logger:    log,
	}
}

func (a *ReportGenerator) GenerateReport(ctx context.Context, profile dto.UserProfile, analysis *dto.AnalysisResult, portfolio *dto.PortfolioAllocation, assessment *dto.RiskAssessment) (string, error) {
	userMessage, err := buildReportMessage(profile, analysis, portfolio, assessment)
	if err != nil {
		return "", err
	}

	text, err := a.agentRepo.Invoke(ctx, dto.AgentInvokeParam{
		AgentName:    "report_generator",
		Model:        a.stage.Model,
		SystemPrompt: reportGeneratorSystemPrompt,
		UserMessage:  userMessage,
		Temperature:  a.stage.Temperature,
		MaxTokens:    a.stage.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("report generation failed: %w", err)
	}

	report := strings.TrimSpace(text)
	if report == "" {
		return "", fmt.Errorf("report generation returned an empty response")
	}

	a.logger.InfoContext(ctx, "Report generation complete",
		logger.IntField("report_length", len(report)))
	return report, nil
}

func buildReportMessage(profile dto.UserProfile, analysis *dto.AnalysisResult, portfolio *dto.PortfolioAllocation, assessment *dto.RiskAssessment) (string, error) {
	sections := []struct {
		title string
		value any
	}{
		{"User information", profile},
		{"Financial analysis result", analysis},
		{"Proposed portfolio composition", portfolio},
		{"Portfolio adjustment guide", assessment},
	}

	var b strings.Builder
	b.WriteString("Please write an investment portfolio analysis report based on the following information:\n")
	for _, s := range sections {
		encoded, err := json.MarshalIndent(s.value, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal %s: %w", strings.ToLower(s.title), err)
		}
		b.WriteString(fmt.Sprintf("\n%s:\n%s\n", s.title, encoded))
	}
	b.WriteString("\nCombine all of the information above into a professional investment report.")
	return b.String(), nil
}
