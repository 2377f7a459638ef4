package agent

import (
	"context"
	"fmt"

	"investment-advisor/internal/dto"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"

	"google.golang.org/genai"
)

const (
	ToolListAvailableInstruments = "list_available_instruments"
	ToolGetPriceHistory          = "get_price_history"
	ToolGetProductNews           = "get_product_news"
	ToolGetMarketIndicators      = "get_market_indicators"
)

// portfolioTools is the declaration set exposed to the portfolio architect.
var portfolioTools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolListAvailableInstruments,
				Description: "List every instrument available for portfolio construction with a short description of each. Allocations may only use tickers returned by this tool.",
			},
			{
				Name:        ToolGetPriceHistory,
				Description: "Get the daily closing price history of one instrument over roughly the past 100 days, keyed by date.",
				Parameters: &genai.Schema{
					Type: "OBJECT",
					Properties: map[string]*genai.Schema{
						"ticker": {
							Type:        "STRING",
							Description: "Instrument ticker symbol, e.g. SPY",
						},
					},
					Required: []string{"ticker"},
				},
			},
		},
	},
}

// riskTools is the declaration set exposed to the risk manager.
var riskTools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolGetProductNews,
				Description: "Get the most recent news headlines for one instrument.",
				Parameters: &genai.Schema{
					Type: "OBJECT",
					Properties: map[string]*genai.Schema{
						"ticker": {
							Type:        "STRING",
							Description: "Instrument ticker symbol, e.g. SPY",
						},
					},
					Required: []string{"ticker"},
				},
			},
			{
				Name:        ToolGetMarketIndicators,
				Description: "Get current macro market indicators: US dollar index, US 10 year and 13 week treasury yields, VIX, and crude oil price. Indicators that could not be fetched are reported as 0.",
			},
		},
	},
}

// Toolset bridges model function calls to the market data and catalog
// repositories. Every handler returns a payload, never an error: tool
// failures surface to the model as {"error": reason} so a bad ticker or a
// flaky upstream degrades the answer instead of aborting the stage.
type Toolset struct {
	marketData repository.MarketDataRepository
	catalog    repository.InstrumentCatalogRepository
	logger     *logger.Logger
}

func NewToolset(marketData repository.MarketDataRepository, catalog repository.InstrumentCatalogRepository, log *logger.Logger) *Toolset {
	return &Toolset{
		marketData: marketData,
		catalog:    catalog,
		logger:     log,
	}
}

// Dispatch routes one function call by name. Unknown names are reported
// back to the model the same way failed calls are.
func (t *Toolset) Dispatch(ctx context.Context, name string, args map[string]any) map[string]any {
	t.logger.DebugContext(ctx, "Dispatching tool call", logger.StringField("tool", name))

	switch name {
	case ToolListAvailableInstruments:
		return t.listAvailableInstruments()
	case ToolGetPriceHistory:
		return t.getPriceHistory(ctx, args)
	case ToolGetProductNews:
		return t.getProductNews(ctx, args)
	case ToolGetMarketIndicators:
		return t.getMarketIndicators(ctx)
	default:
		return toolError(fmt.Sprintf("unknown tool: %s", name))
	}
}

func (t *Toolset) listAvailableInstruments() map[string]any {
	return map[string]any{"instruments": t.catalog.List()}
}

func (t *Toolset) getPriceHistory(ctx context.Context, args map[string]any) map[string]any {
	ticker, ok := stringArg(args, "ticker")
	if !ok {
		return toolError("missing required argument: ticker")
	}
	if !t.catalog.Contains(ticker) {
		return toolError(fmt.Sprintf("ticker %s is not in the instrument catalog", ticker))
	}

	series, err := t.marketData.GetPriceHistory(ctx, dto.GetPriceHistoryParam{Ticker: ticker})
	if err != nil {
		t.logger.WarnContext(ctx, "Price history tool call failed",
			logger.StringField("ticker", ticker), logger.ErrorField(err))
		return toolError(fmt.Sprintf("failed to fetch price history for %s: %v", ticker, err))
	}

	return map[string]any{"ticker": ticker, "prices": series}
}

func (t *Toolset) getProductNews(ctx context.Context, args map[string]any) map[string]any {
	ticker, ok := stringArg(args, "ticker")
	if !ok {
		return toolError("missing required argument: ticker")
	}

	digest, err := t.marketData.GetNews(ctx, ticker, 0)
	if err != nil {
		t.logger.WarnContext(ctx, "News tool call failed",
			logger.StringField("ticker", ticker), logger.ErrorField(err))
		return toolError(fmt.Sprintf("failed to fetch news for %s: %v", ticker, err))
	}

	return map[string]any{"ticker": digest.Ticker, "news": digest.News, "count": digest.Count}
}

func (t *Toolset) getMarketIndicators(ctx context.Context) map[string]any {
	indicators, err := t.marketData.GetMarketIndicators(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "Market indicators tool call failed", logger.ErrorField(err))
		return toolError(fmt.Sprintf("failed to fetch market indicators: %v", err))
	}
	return map[string]any{"indicators": indicators}
}

func toolError(reason string) map[string]any {
	return map[string]any{"error": reason}
}

func stringArg(args map[string]any, key string) (string, bool) {
	if args == nil {
		return "", false
	}
	val, ok := args[key].(string)
	if !ok || val == "" {
		return "", false
	}
	return val, true
}
