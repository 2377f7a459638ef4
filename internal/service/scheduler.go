package service

import (
	"context"
	"time"

	"investment-advisor/config"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"

	"github.com/robfig/cron/v3"
)

type SchedulerService interface {
	Start() error
	Stop() context.Context
}

// schedulerService owns the periodic jobs: warming the market indicator
// cache so consultations hit fresh data, and pruning consultations past
// the retention window.
type schedulerService struct {
	cfg            *config.Config
	log            *logger.Logger
	cron           *cron.Cron
	marketDataRepo repository.MarketDataRepository
	advisorService AdvisorService
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	marketDataRepo repository.MarketDataRepository,
	advisorService AdvisorService,
) *schedulerService {
	return &schedulerService{
		cfg:            cfg,
		log:            log,
		cron:           cron.New(),
		marketDataRepo: marketDataRepo,
		advisorService: advisorService,
	}
}

func (s *schedulerService) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.IndicatorWarmupSpec, s.warmupIndicators); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.CleanupSpec, s.cleanupConsultations); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started",
		logger.StringField("indicator_warmup_spec", s.cfg.Scheduler.IndicatorWarmupSpec),
		logger.StringField("cleanup_spec", s.cfg.Scheduler.CleanupSpec),
	)
	return nil
}

// Stop halts scheduling and returns a context that closes once running
// jobs finish.
func (s *schedulerService) Stop() context.Context {
	return s.cron.Stop()
}

func (s *schedulerService) warmupIndicators() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.MarketAPI.Timeout*6)
	defer cancel()

	if _, err := s.marketDataRepo.GetMarketIndicators(ctx); err != nil {
		s.log.ErrorContext(ctx, "Indicator warmup failed", logger.ErrorField(err))
		return
	}
	s.log.DebugContext(ctx, "Indicator cache warmed")
}

func (s *schedulerService) cleanupConsultations() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.advisorService.CleanupExpired(ctx); err != nil {
		s.log.ErrorContext(ctx, "Consultation cleanup failed", logger.ErrorField(err))
	}
}
