package agent

import (
	"investment-advisor/config"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
)

// Agents bundles the five pipeline stages behind one constructor.
type Agents struct {
	FinancialAnalyst    *FinancialAnalyst
	ReflectionValidator *ReflectionValidator
	PortfolioArchitect  *PortfolioArchitect
	RiskManager         *RiskManager
	ReportGenerator     *ReportGenerator
}

func NewAgents(cfg *config.Config, repo *repository.Repository, log *logger.Logger) *Agents {
	validate := goValidator.New()
	toolset := NewToolset(repo.MarketDataRepo, repo.CatalogRepo, log)

	return &Agents{
		FinancialAnalyst:    NewFinancialAnalyst(cfg, repo.AgentRepo, validate, log),
		ReflectionValidator: NewReflectionValidator(cfg, repo.AgentRepo, log),
		PortfolioArchitect:  NewPortfolioArchitect(cfg, repo.AgentRepo, toolset, repo.CatalogRepo, validate, log),
		RiskManager:         NewRiskManager(cfg, repo.AgentRepo, toolset, validate, log),
		ReportGenerator:     NewReportGenerator(cfg, repo.AgentRepo, log),
	}
}
