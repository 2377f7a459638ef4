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

const reflectionSystemPrompt = `You are an expert reviewer of financial analysis results. You must assess whether the analysis provided is sound.

The analysis is provided in the following JSON format:
{
"risk_profile": <risk profile evaluation>,
"risk_profile_reason": <detailed explanation of the risk profile evaluation>,
"required_annual_return_rate": <required annual return rate>,
"return_rate_reason": <explanation of the calculation and its meaning>
}

Review the analysis against these criteria:
1. Redo the required annual return rate calculation and check it matches.
2. Check that the calculated rate lies between 0% and 50%.

Output format:
- If every criterion is met, output exactly "yes" and nothing else.
- If any criterion fails, output "no" and on the next line briefly explain which criterion failed.`

// ReflectionValidator is a second, independent model pass over the
// analyst's output. The parse is deliberately strict: only a response
// beginning with "yes" accepts, anything else rejects. Ambiguous answers
// therefore fail closed.
type ReflectionValidator struct {
	stage     config.StageModel
	agentRepo repository.AgentRepository
	logger    *logger.Logger
}

func NewReflectionValidator(cfg *config.Config, agentRepo repository.AgentRepository, log *logger.Logger) *ReflectionValidator {
	return &ReflectionValidator{
		stage:     cfg.Advisor.Reflection,
		agentRepo: agentRepo,
		logger:    log,
	}
}

// Achievable bounds for the required annual return rate. The reviewer
// prompt repeats them, but the gate here is mechanical so a drifting
// reviewer can never wave an out-of-range analysis through.
const (
	minRequiredReturnRate = 0.0
	maxRequiredReturnRate = 50.0
)

func (a *ReflectionValidator) Review(ctx context.Context, analysis *dto.AnalysisResult) (*dto.ValidationVerdict, error) {
	if rate := analysis.RequiredAnnualReturnRate; rate < minRequiredReturnRate || rate > maxRequiredReturnRate {
		verdict := &dto.ValidationVerdict{
			Accepted: false,
			Reason: fmt.Sprintf("required annual return rate %.2f%% is outside the achievable range of %.0f%% to %.0f%%",
				rate, minRequiredReturnRate, maxRequiredReturnRate),
		}
		a.logger.InfoContext(ctx, "Reflection review complete",
			logger.Field("accepted", verdict.Accepted),
			logger.StringField("reason", verdict.Reason),
		)
		return verdict, nil
	}

	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	text, err := a.agentRepo.Invoke(ctx, dto.AgentInvokeParam{
		AgentName:    "reflection_validator",
		Model:        a.stage.Model,
		SystemPrompt: reflectionSystemPrompt,
		UserMessage:  fmt.Sprintf("Please review the following financial analysis result:\n%s", analysisJSON),
		Temperature:  a.stage.Temperature,
		MaxTokens:    a.stage.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("reflection review failed: %w", err)
	}

	verdict := ParseVerdict(text)
	a.logger.InfoContext(ctx, "Reflection review complete",
		logger.Field("accepted", verdict.Accepted),
		logger.StringField("reason", verdict.Reason),
	)
	return verdict, nil
}

// ParseVerdict maps raw reviewer text to a verdict. A trimmed
// case-insensitive "yes" prefix accepts; everything else rejects, with a
// leading "no" token stripped from the reason.
func ParseVerdict(text string) *dto.ValidationVerdict {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToLower(trimmed), "yes") {
		return &dto.ValidationVerdict{Accepted: true}
	}
	return &dto.ValidationVerdict{Accepted: false, Reason: rejectionReason(trimmed)}
}

// rejectionReason drops the reviewer's opening "no" so the reason holds
// only the explanation. The token must stand alone; responses like
// "nothing matches" are kept whole, as is a bare "no" with no follow up.
func rejectionReason(trimmed string) string {
	if len(trimmed) < 2 || !strings.EqualFold(trimmed[:2], "no") {
		return trimmed
	}
	rest := trimmed[2:]
	if rest != "" && !strings.ContainsRune(" \t\r\n.,:;", rune(rest[0])) {
		return trimmed
	}
	if stripped := strings.TrimSpace(strings.TrimLeft(rest, " \t\r\n.,:;")); stripped != "" {
		return stripped
	}
	return trimmed
}
