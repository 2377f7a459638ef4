package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"investment-advisor/config"
	"investment-advisor/internal/dto"
	"investment-advisor/pkg/cache"
	"investment-advisor/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMarketTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func newTestMarketRepo(t *testing.T, baseURL string) MarketDataRepository {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.MarketAPI = config.MarketAPI{
		BaseURL:             baseURL,
		Timeout:             5 * time.Second,
		MaxRequestPerMinute: 6000,
		LookbackDays:        100,
		NewsTopN:            5,
	}
	cfg.Cache.DefaultExpiration = time.Minute

	c := cache.NewCache(time.Minute, time.Minute)
	c.Flush()
	return NewMarketDataRepository(cfg, c, log)
}

func TestGetPriceHistory(t *testing.T) {
	day := int64(86400)
	base := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC).Unix()

	server := newMarketTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/SPY"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w,
			`{"chart":{"result":[{"meta":{"regularMarketPrice":514.999},"timestamp":[%d,%d,%d],"indicators":{"quote":[{"close":[510.1234,512.5678,514.999]}]}}],"error":null}}`,
			base, base+day, base+2*day)
	})

	repo := newTestMarketRepo(t, server.URL)
	series, err := repo.GetPriceHistory(context.Background(), dto.GetPriceHistoryParam{Ticker: "SPY"})
	require.NoError(t, err)

	assert.Len(t, series, 3)
	assert.Equal(t, 510.12, series["2026-08-24"])
	assert.Equal(t, 512.57, series["2026-08-25"])
	assert.Equal(t, 515.0, series["2026-08-26"])
}

func TestGetPriceHistory_NoData(t *testing.T) {
	server := newMarketTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	})

	repo := newTestMarketRepo(t, server.URL)
	_, err := repo.GetPriceHistory(context.Background(), dto.GetPriceHistoryParam{Ticker: "EMPTY"})
	assert.ErrorContains(t, err, "no data found")
}

func TestGetNews_TopN(t *testing.T) {
	server := newMarketTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "QQQ", r.URL.Query().Get("q"))

		var items []string
		for i := 0; i < 8; i++ {
			items = append(items, fmt.Sprintf(`{"title":"headline %d","publisher":"wire","link":"https://example.com/%d","providerPublishTime":1756200000}`, i, i))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"news":[%s]}`, strings.Join(items, ","))
	})

	repo := newTestMarketRepo(t, server.URL)
	digest, err := repo.GetNews(context.Background(), "QQQ", 5)
	require.NoError(t, err)

	assert.Equal(t, "QQQ", digest.Ticker)
	assert.Equal(t, 5, digest.Count)
	require.Len(t, digest.News, 5)
	assert.Equal(t, "headline 0", digest.News[0].Title)
}

func TestGetMarketIndicators_SoftFail(t *testing.T) {
	// Every upstream fetch fails, yet the call succeeds with zero values.
	server := newMarketTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	})

	repo := newTestMarketRepo(t, server.URL)
	indicators, err := repo.GetMarketIndicators(context.Background())
	require.NoError(t, err)

	require.Len(t, indicators, 5)
	for name, indicator := range indicators {
		assert.Zero(t, indicator.Value, name)
		assert.NotEmpty(t, indicator.Ticker, name)
		assert.NotEmpty(t, indicator.Description, name)
	}
}
