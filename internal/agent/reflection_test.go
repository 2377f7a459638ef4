package agent

import (
	"context"
	"testing"

	"investment-advisor/config"
	"investment-advisor/internal/dto"
	"investment-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantAccepted bool
		wantReason   string
	}{
		{
			name:         "plain yes",
			input:        "yes",
			wantAccepted: true,
		},
		{
			name:         "yes with surrounding whitespace",
			input:        "  \nYes\n",
			wantAccepted: true,
		},
		{
			name:         "yes with trailing commentary",
			input:        "Yes, the calculation checks out.",
			wantAccepted: true,
		},
		{
			name:         "no with reason on next line",
			input:        "no\nThe required annual return rate of 900% is outside the 0-50% range.",
			wantAccepted: false,
			wantReason:   "The required annual return rate of 900% is outside the 0-50% range.",
		},
		{
			name:         "no with inline reason",
			input:        "No, the derivation does not match the stated amounts.",
			wantAccepted: false,
			wantReason:   "the derivation does not match the stated amounts.",
		},
		{
			name:         "bare no keeps the text",
			input:        "no",
			wantAccepted: false,
			wantReason:   "no",
		},
		{
			name:         "word starting with no is not a verdict token",
			input:        "nothing about this derivation holds up",
			wantAccepted: false,
			wantReason:   "nothing about this derivation holds up",
		},
		{
			name:         "ambiguous response rejects",
			input:        "The analysis looks mostly correct.",
			wantAccepted: false,
			wantReason:   "The analysis looks mostly correct.",
		},
		{
			name:         "empty response rejects",
			input:        "",
			wantAccepted: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseVerdict(tt.input)
			assert.Equal(t, tt.wantAccepted, got.Accepted)
			if !tt.wantAccepted {
				assert.Equal(t, tt.wantReason, got.Reason)
			}
		})
	}
}

type recordingAgentRepo struct {
	response string
	calls    int
}

func (r *recordingAgentRepo) Invoke(ctx context.Context, param dto.AgentInvokeParam) (string, error) {
	r.calls++
	return r.response, nil
}

func newTestReflectionValidator(t *testing.T, repo *recordingAgentRepo) *ReflectionValidator {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return NewReflectionValidator(&config.Config{}, repo, log)
}

func TestReviewRejectsOutOfRangeRateBeforeModelCall(t *testing.T) {
	// A reviewer answering "yes" must not be able to wave through a rate
	// the range gate already ruled out.
	repo := &recordingAgentRepo{response: "yes"}
	validator := newTestReflectionValidator(t, repo)

	verdict, err := validator.Review(context.Background(), &dto.AnalysisResult{
		RiskProfile:              dto.RiskProfileVeryAggressive,
		RiskProfileReason:        "one year horizon with a 10x target",
		RequiredAnnualReturnRate: 900.00,
		ReturnRateReason:         "10,000,000 to 100,000,000 in one year",
	})

	require.NoError(t, err)
	assert.False(t, verdict.Accepted)
	assert.Contains(t, verdict.Reason, "900.00%")
	assert.Zero(t, repo.calls)
}

func TestReviewAcceptsBoundaryRate(t *testing.T) {
	repo := &recordingAgentRepo{response: "yes"}
	validator := newTestReflectionValidator(t, repo)

	verdict, err := validator.Review(context.Background(), &dto.AnalysisResult{
		RiskProfile:              dto.RiskProfileVeryConservative,
		RiskProfileReason:        "target already reached",
		RequiredAnnualReturnRate: 0.00,
		ReturnRateReason:         "no growth needed to hit the target",
	})

	require.NoError(t, err)
	assert.True(t, verdict.Accepted)
	assert.Equal(t, 1, repo.calls)
}
