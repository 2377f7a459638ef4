package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"investment-advisor/config"
	"investment-advisor/internal/dto"
	"investment-advisor/pkg/cache"
	"investment-advisor/pkg/httpclient"
	"investment-advisor/pkg/logger"
	"investment-advisor/pkg/utils"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// marketIndicators is the fixed set of macro readings exposed to the risk
// agent. Each entry fetches independently and falls back to 0 on failure.
var marketIndicators = map[string]dto.MarketIndicator{
	"us_dollar_index":       {Ticker: "DX-Y.NYB", Description: "US dollar strength index"},
	"us_10y_treasury_yield": {Ticker: "^TNX", Description: "US 10 year treasury yield (%)"},
	"us_13w_treasury_yield": {Ticker: "^IRX", Description: "US 13 week treasury yield (%)"},
	"vix_volatility_index":  {Ticker: "^VIX", Description: "VIX volatility index"},
	"crude_oil_price":       {Ticker: "CL=F", Description: "WTI crude oil futures price (USD/barrel)"},
}

type MarketDataRepository interface {
	GetPriceHistory(ctx context.Context, param dto.GetPriceHistoryParam) (dto.PriceSeries, error)
	GetNews(ctx context.Context, ticker string, topN int) (*dto.NewsDigest, error)
	GetMarketIndicators(ctx context.Context) (map[string]dto.MarketIndicator, error)
}

// yahooMarketDataRepository fetches prices and news from the Yahoo Finance
// public endpoints.
type yahooMarketDataRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	cache          cache.Cache
	requestLimiter *rate.Limiter
}

// NewMarketDataRepository creates a new instance of yahooMarketDataRepository.
func NewMarketDataRepository(cfg *config.Config, c cache.Cache, log *logger.Logger) MarketDataRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.MarketAPI.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &yahooMarketDataRepository{
		httpClient:     httpclient.New(log, cfg.MarketAPI.BaseURL, cfg.MarketAPI.Timeout, ""),
		cfg:            cfg,
		logger:         log,
		cache:          c,
		requestLimiter: requestLimiter,
	}
}

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "application/json, text/plain, */*",
	"Accept-Language": "en-US,en;q=0.9",
	"Referer":         "https://finance.yahoo.com/",
}

// GetPriceHistory returns daily closes over the trailing lookback window,
// keyed by ISO date and rounded to two decimals.
func (r *yahooMarketDataRepository) GetPriceHistory(ctx context.Context, param dto.GetPriceHistoryParam) (dto.PriceSeries, error) {
	if param.LookbackDays <= 0 {
		param.LookbackDays = r.cfg.MarketAPI.LookbackDays
	}

	cacheKey := fmt.Sprintf("price_history:%s:%d", param.Ticker, param.LookbackDays)
	if series, found := cache.GetFromCache[dto.PriceSeries](r.cache, cacheKey); found {
		return series, nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	now := time.Now()
	queryParams := map[string]string{
		"period1":        strconv.FormatInt(now.AddDate(0, 0, -param.LookbackDays).Unix(), 10),
		"period2":        strconv.FormatInt(now.Unix(), 10),
		"interval":       "1d",
		"includePrePost": "false",
		"events":         "div,split",
	}

	var chartResp dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, "/v8/finance/chart/"+param.Ticker, queryParams, browserHeaders, &chartResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Market API returned Non-OK status",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("ticker", param.Ticker))
		return nil, fmt.Errorf("market api returned status: %d", resp.StatusCode)
	}

	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("market api error: %v", chartResp.Chart.Error)
	}

	if len(chartResp.Chart.Result) == 0 || len(chartResp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no data found for ticker %s", param.Ticker)
	}

	result := chartResp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	series := make(dto.PriceSeries, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		date := time.Unix(ts, 0).UTC().Format("2006-01-02")
		series[date] = utils.RoundTo2(quote.Close[i])
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no data found for ticker %s", param.Ticker)
	}

	r.cache.Set(cacheKey, series, r.cfg.Cache.DefaultExpiration)
	return series, nil
}

// GetNews returns the most recent topN headlines for the ticker.
func (r *yahooMarketDataRepository) GetNews(ctx context.Context, ticker string, topN int) (*dto.NewsDigest, error) {
	if topN <= 0 {
		topN = r.cfg.MarketAPI.NewsTopN
	}

	cacheKey := fmt.Sprintf("news:%s:%d", ticker, topN)
	if digest, found := cache.GetFromCache[*dto.NewsDigest](r.cache, cacheKey); found {
		return digest, nil
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"q":           ticker,
		"newsCount":   strconv.Itoa(topN),
		"quotesCount": "0",
	}

	var searchResp dto.YahooSearchResponse
	resp, err := r.httpClient.Get(ctx, "/v1/finance/search", queryParams, browserHeaders, &searchResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market api returned status: %d", resp.StatusCode)
	}

	digest := &dto.NewsDigest{Ticker: ticker, News: []dto.NewsItem{}}
	for i, item := range searchResp.News {
		if i >= topN {
			break
		}
		digest.News = append(digest.News, dto.NewsItem{
			Title:       item.Title,
			Summary:     item.Publisher,
			PublishDate: time.Unix(item.ProviderPublishTime, 0).UTC().Format("2006-01-02"),
			Link:        item.Link,
		})
	}
	digest.Count = len(digest.News)

	r.cache.Set(cacheKey, digest, r.cfg.Cache.DefaultExpiration)
	return digest, nil
}

// GetMarketIndicators fetches the macro indicator set concurrently. A
// failed fetch yields a zero value for that indicator only; the call as a
// whole never fails on individual indicators.
func (r *yahooMarketDataRepository) GetMarketIndicators(ctx context.Context) (map[string]dto.MarketIndicator, error) {
	const cacheKey = "market_indicators"
	if indicators, found := cache.GetFromCache[map[string]dto.MarketIndicator](r.cache, cacheKey); found {
		return indicators, nil
	}

	results := make(map[string]dto.MarketIndicator, len(marketIndicators))
	g, gctx := errgroup.WithContext(ctx)
	resultCh := make(chan struct {
		key       string
		indicator dto.MarketIndicator
	}, len(marketIndicators))

	for key, info := range marketIndicators {
		key, info := key, info
		g.Go(func() error {
			indicator := dto.MarketIndicator{
				Description: info.Description,
				Ticker:      info.Ticker,
				Value:       0.0,
			}

			price, err := r.getLatestPrice(gctx, info.Ticker)
			if err != nil {
				r.logger.WarnContext(gctx, "Failed to fetch market indicator, using zero value",
					logger.StringField("indicator", key),
					logger.ErrorField(err),
				)
			} else {
				indicator.Value = utils.RoundTo2(price)
			}

			resultCh <- struct {
				key       string
				indicator dto.MarketIndicator
			}{key, indicator}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(resultCh)

	for res := range resultCh {
		results[res.key] = res.indicator
	}

	r.cache.Set(cacheKey, results, r.cfg.Cache.DefaultExpiration)
	return results, nil
}

func (r *yahooMarketDataRepository) getLatestPrice(ctx context.Context, ticker string) (float64, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return 0, err
	}

	queryParams := map[string]string{
		"range":    "5d",
		"interval": "1d",
	}

	var chartResp dto.YahooChartResponse
	resp, err := r.httpClient.Get(ctx, "/v8/finance/chart/"+ticker, queryParams, browserHeaders, &chartResp)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("market api returned status: %d", resp.StatusCode)
	}
	if len(chartResp.Chart.Result) == 0 {
		return 0, fmt.Errorf("no data returned for %s", ticker)
	}

	price := chartResp.Chart.Result[0].Meta.RegularMarketPrice
	if price == 0 {
		// Fall back to the last non-zero close in the window.
		quotes := chartResp.Chart.Result[0].Indicators.Quote
		if len(quotes) > 0 {
			for i := len(quotes[0].Close) - 1; i >= 0; i-- {
				if quotes[0].Close[i] != 0 {
					price = quotes[0].Close[i]
					break
				}
			}
		}
	}
	if price == 0 {
		return 0, fmt.Errorf("no price available for %s", ticker)
	}
	return price, nil
}
