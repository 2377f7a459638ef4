package dto

// PriceSeries maps ISO dates to rounded closing prices for one ticker.
type PriceSeries map[string]float64

// GetPriceHistoryParam scopes a price history lookup.
type GetPriceHistoryParam struct {
	Ticker       string `json:"ticker"`
	LookbackDays int    `json:"lookback_days"`
}

// NewsItem is one news headline for a ticker.
type NewsItem struct {
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	PublishDate string `json:"publish_date"`
	Link        string `json:"link"`
}

// NewsDigest is the top-N recent news for one ticker.
type NewsDigest struct {
	Ticker string     `json:"ticker"`
	News   []NewsItem `json:"news"`
	Count  int        `json:"count"`
}

// MarketIndicator is one macro indicator reading. Value falls back to 0
// when the upstream fetch fails so one bad indicator never aborts a call.
type MarketIndicator struct {
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	Ticker      string  `json:"ticker"`
}

// YahooChartResponse mirrors the chart API payload we consume.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// YahooSearchResponse mirrors the search API payload used for news.
type YahooSearchResponse struct {
	News []struct {
		Title               string `json:"title"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
	} `json:"news"`
}
