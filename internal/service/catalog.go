package service

import (
	"context"

	"investment-advisor/internal/dto"
	"investment-advisor/internal/repository"
)

type CatalogService interface {
	List() map[string]string
	MarketIndicators(ctx context.Context) (map[string]dto.MarketIndicator, error)
}

type catalogService struct {
	catalogRepo    repository.InstrumentCatalogRepository
	marketDataRepo repository.MarketDataRepository
}

func NewCatalogService(catalogRepo repository.InstrumentCatalogRepository, marketDataRepo repository.MarketDataRepository) *catalogService {
	return &catalogService{
		catalogRepo:    catalogRepo,
		marketDataRepo: marketDataRepo,
	}
}

func (s *catalogService) List() map[string]string {
	return s.catalogRepo.List()
}

func (s *catalogService) MarketIndicators(ctx context.Context) (map[string]dto.MarketIndicator, error) {
	return s.marketDataRepo.GetMarketIndicators(ctx)
}
