package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"investment-advisor/config"
	"investment-advisor/internal/dto"
	"investment-advisor/pkg/logger"
	"investment-advisor/pkg/ratelimit"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ErrModelInvocation marks transport or provider failures calling the
// hosted model. The repository never retries; retry policy, if any,
// belongs to the caller.
var ErrModelInvocation = errors.New("model invocation failed")

type AgentRepository interface {
	Invoke(ctx context.Context, param dto.AgentInvokeParam) (string, error)
}

// geminiAgentRepository invokes Gemini models with a fixed system prompt
// and a single user message, running the model's tool calls through the
// supplied handler until it produces final text.
type geminiAgentRepository struct {
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAgentRepository creates a new instance of geminiAgentRepository.
func NewGeminiAgentRepository(cfg *config.Config, log *logger.Logger) (AgentRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)
	genAiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiAgentRepository{
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

func (r *geminiAgentRepository) Invoke(ctx context.Context, param dto.AgentInvokeParam) (string, error) {
	model := param.Model

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: param.SystemPrompt}},
		},
		Temperature:     genai.Ptr(float32(param.Temperature)),
		MaxOutputTokens: int32(param.MaxTokens),
	}
	if len(param.Tools) > 0 {
		genConfig.Tools = param.Tools
	}

	contents := []*genai.Content{
		genai.NewContentFromText(param.UserMessage, "user"),
	}

	maxTurns := r.cfg.Advisor.MaxToolTurns
	if maxTurns <= 0 {
		maxTurns = 1
	}

	for turn := 0; turn < maxTurns; turn++ {
		if err := r.waitForQuota(ctx, model, contents); err != nil {
			return "", err
		}

		resp, err := r.genAiClient.Models.GenerateContent(ctx, model, contents, genConfig)
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to generate content",
				logger.StringField("agent", param.AgentName),
				logger.ErrorField(err),
			)
			return "", fmt.Errorf("%w: agent %s: %v", ErrModelInvocation, param.AgentName, err)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", fmt.Errorf("%w: agent %s returned no candidates", ErrModelInvocation, param.AgentName)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 || param.ToolHandler == nil {
			return resp.Text(), nil
		}

		contents = append(contents, resp.Candidates[0].Content)

		parts := make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			r.logger.DebugContext(ctx, "agent requested tool call",
				logger.StringField("agent", param.AgentName),
				logger.StringField("tool", call.Name),
			)
			result := param.ToolHandler(ctx, call.Name, call.Args)
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name:     call.Name,
					Response: result,
				},
			})
		}
		contents = append(contents, &genai.Content{Role: "user", Parts: parts})
	}

	return "", fmt.Errorf("%w: agent %s exceeded %d tool turns without final output", ErrModelInvocation, param.AgentName, maxTurns)
}

// waitForQuota blocks on the token and request limiters so concurrent
// consultations share the provider quota fairly.
func (r *geminiAgentRepository) waitForQuota(ctx context.Context, model string, contents []*genai.Content) error {
	tokenResp, err := r.genAiClient.Models.CountTokens(ctx, model, contents, nil)
	if err != nil {
		return fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(tokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)
	if err := r.tokenLimiter.Wait(ctx, int(tokenResp.TotalTokens)); err != nil {
		return fmt.Errorf("failed to wait for gemini token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for gemini request limit: %w", err)
	}

	if int(tokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token count has exceeded 50% of the per-minute limit",
			logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	return nil
}
