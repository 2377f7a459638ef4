package repository

import (
	"sort"

	"investment-advisor/config"
)

// InstrumentCatalogRepository exposes the fixed set of instruments the
// portfolio agent may allocate to.
type InstrumentCatalogRepository interface {
	List() map[string]string
	Tickers() []string
	Contains(ticker string) bool
	Describe(ticker string) (string, bool)
}

type instrumentCatalogRepository struct {
	instruments map[string]string
	tickers     []string
}

// NewInstrumentCatalogRepository builds the catalog from config, falling
// back to the built-in instrument set when none is configured.
func NewInstrumentCatalogRepository(cfg *config.Config) InstrumentCatalogRepository {
	instruments := cfg.Catalog.Instruments
	if len(instruments) == 0 {
		instruments = config.DefaultInstruments()
	}

	tickers := make([]string, 0, len(instruments))
	for ticker := range instruments {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	return &instrumentCatalogRepository{
		instruments: instruments,
		tickers:     tickers,
	}
}

func (r *instrumentCatalogRepository) List() map[string]string {
	out := make(map[string]string, len(r.instruments))
	for k, v := range r.instruments {
		out[k] = v
	}
	return out
}

func (r *instrumentCatalogRepository) Tickers() []string {
	out := make([]string, len(r.tickers))
	copy(out, r.tickers)
	return out
}

func (r *instrumentCatalogRepository) Contains(ticker string) bool {
	_, ok := r.instruments[ticker]
	return ok
}

func (r *instrumentCatalogRepository) Describe(ticker string) (string, bool) {
	desc, ok := r.instruments[ticker]
	return desc, ok
}
