package agent

import (
	"strings"
	"testing"

	"investment-advisor/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		check   func(t *testing.T, got dto.PortfolioAllocation)
	}{
		{
			name:  "pure json",
			input: `{"portfolio_allocation":{"SPY":50,"QQQ":30,"GLD":20},"strategy":"balanced","reason":"diversified"}`,
			check: func(t *testing.T, got dto.PortfolioAllocation) {
				assert.Equal(t, 50, got.Allocation["SPY"])
				assert.Equal(t, "balanced", got.Strategy)
			},
		},
		{
			name:  "json wrapped in prose",
			input: "Here is the portfolio you asked for:\n{\"portfolio_allocation\":{\"SPY\":60,\"AGG\":30,\"GLD\":10},\"strategy\":\"defensive\",\"reason\":\"capital preservation\"}\nLet me know if you need anything else.",
			check: func(t *testing.T, got dto.PortfolioAllocation) {
				assert.Equal(t, 60, got.Allocation["SPY"])
				assert.Equal(t, "defensive", got.Strategy)
			},
		},
		{
			name:  "json in code fence",
			input: "```json\n{\"portfolio_allocation\":{\"QQQ\":100},\"strategy\":\"growth\",\"reason\":\"tech\"}\n```",
			check: func(t *testing.T, got dto.PortfolioAllocation) {
				assert.Equal(t, 100, got.Allocation["QQQ"])
			},
		},
		{
			name:    "no json at all",
			input:   "I am sorry, I cannot produce a portfolio right now.",
			wantErr: true,
		},
		{
			name:    "empty response",
			input:   "   \n  ",
			wantErr: true,
		},
		{
			name:    "braces but invalid json",
			input:   "prefix {not: valid json} suffix",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got dto.PortfolioAllocation
			err := ExtractJSON(tt.input, &got)
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrExtraction)
				return
			}
			assert.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestExtractJSONErrorCarriesResponseText(t *testing.T) {
	var got dto.PortfolioAllocation

	err := ExtractJSON("I am sorry, I cannot produce a portfolio right now.", &got)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "I cannot produce a portfolio")

	long := strings.Repeat("x", 500) + "{not valid json}"
	err = ExtractJSON(long, &got)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Contains(t, err.Error(), "...")
	assert.Less(t, len(err.Error()), len(long))
}
