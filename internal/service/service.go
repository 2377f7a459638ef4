package service

import (
	"investment-advisor/config"
	"investment-advisor/internal/agent"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"
	"investment-advisor/pkg/telegram"
)

type Service struct {
	AdvisorService   AdvisorService
	CatalogService   CatalogService
	SchedulerService SchedulerService
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	telegramSender *telegram.RateLimitedSender,
) *Service {
	agents := agent.NewAgents(cfg, repo, log)
	advisorService := NewAdvisorService(cfg, log, agents, repo.ConsultationRepo, telegramSender)
	catalogService := NewCatalogService(repo.CatalogRepo, repo.MarketDataRepo)
	schedulerService := NewSchedulerService(cfg, log, repo.MarketDataRepo, advisorService)

	return &Service{
		AdvisorService:   advisorService,
		CatalogService:   catalogService,
		SchedulerService: schedulerService,
	}
}
