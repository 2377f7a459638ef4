package repository

import (
	"investment-advisor/config"
	"investment-advisor/pkg/cache"
	"investment-advisor/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	AgentRepo        AgentRepository
	MarketDataRepo   MarketDataRepository
	CatalogRepo      InstrumentCatalogRepository
	ConsultationRepo ConsultationRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, c cache.Cache, log *logger.Logger) (*Repository, error) {
	agentRepo, err := NewGeminiAgentRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Repository{
		AgentRepo:        agentRepo,
		MarketDataRepo:   NewMarketDataRepository(cfg, c, log),
		CatalogRepo:      NewInstrumentCatalogRepository(cfg),
		ConsultationRepo: NewConsultationRepository(db),
	}, nil
}
