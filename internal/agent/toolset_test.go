package agent

import (
	"context"
	"errors"
	"testing"

	"investment-advisor/config"
	"investment-advisor/internal/dto"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMarketData struct {
	priceSeries dto.PriceSeries
	priceErr    error
	news        *dto.NewsDigest
	newsErr     error
	indicators  map[string]dto.MarketIndicator
	indicErr    error
}

func (f *fakeMarketData) GetPriceHistory(ctx context.Context, param dto.GetPriceHistoryParam) (dto.PriceSeries, error) {
	return f.priceSeries, f.priceErr
}

func (f *fakeMarketData) GetNews(ctx context.Context, ticker string, topN int) (*dto.NewsDigest, error) {
	return f.news, f.newsErr
}

func (f *fakeMarketData) GetMarketIndicators(ctx context.Context) (map[string]dto.MarketIndicator, error) {
	return f.indicators, f.indicErr
}

func newTestToolset(t *testing.T, market *fakeMarketData) *Toolset {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	catalog := repository.NewInstrumentCatalogRepository(cfg)
	return NewToolset(market, catalog, log)
}

func TestToolsetDispatch_ListInstruments(t *testing.T) {
	ts := newTestToolset(t, &fakeMarketData{})

	result := ts.Dispatch(context.Background(), ToolListAvailableInstruments, nil)

	instruments, ok := result["instruments"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, instruments, "SPY")
	assert.Contains(t, instruments, "GLD")
	assert.NotContains(t, result, "error")
}

func TestToolsetDispatch_PriceHistory(t *testing.T) {
	ts := newTestToolset(t, &fakeMarketData{
		priceSeries: dto.PriceSeries{"2026-08-25": 512.34},
	})

	result := ts.Dispatch(context.Background(), ToolGetPriceHistory, map[string]any{"ticker": "SPY"})

	assert.Equal(t, "SPY", result["ticker"])
	prices, ok := result["prices"].(dto.PriceSeries)
	require.True(t, ok)
	assert.Equal(t, 512.34, prices["2026-08-25"])
}

func TestToolsetDispatch_SoftFailures(t *testing.T) {
	tests := []struct {
		name   string
		market *fakeMarketData
		tool   string
		args   map[string]any
	}{
		{
			name:   "unknown tool",
			market: &fakeMarketData{},
			tool:   "does_not_exist",
		},
		{
			name:   "ticker outside catalog",
			market: &fakeMarketData{},
			tool:   ToolGetPriceHistory,
			args:   map[string]any{"ticker": "NOPE"},
		},
		{
			name:   "missing ticker argument",
			market: &fakeMarketData{},
			tool:   ToolGetPriceHistory,
			args:   map[string]any{},
		},
		{
			name:   "upstream price failure",
			market: &fakeMarketData{priceErr: errors.New("upstream down")},
			tool:   ToolGetPriceHistory,
			args:   map[string]any{"ticker": "SPY"},
		},
		{
			name:   "upstream news failure",
			market: &fakeMarketData{newsErr: errors.New("upstream down")},
			tool:   ToolGetProductNews,
			args:   map[string]any{"ticker": "SPY"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestToolset(t, tt.market)

			result := ts.Dispatch(context.Background(), tt.tool, tt.args)

			// Failures surface as error payloads, never panics or nils.
			require.NotNil(t, result)
			reason, ok := result["error"].(string)
			require.True(t, ok)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestToolsetDispatch_MarketIndicators(t *testing.T) {
	ts := newTestToolset(t, &fakeMarketData{
		indicators: map[string]dto.MarketIndicator{
			"vix_volatility_index": {Ticker: "^VIX", Value: 17.5},
			"crude_oil_price":      {Ticker: "CL=F", Value: 0},
		},
	})

	result := ts.Dispatch(context.Background(), ToolGetMarketIndicators, nil)

	indicators, ok := result["indicators"].(map[string]dto.MarketIndicator)
	require.True(t, ok)
	assert.Equal(t, 17.5, indicators["vix_volatility_index"].Value)
	assert.Zero(t, indicators["crude_oil_price"].Value)
}
