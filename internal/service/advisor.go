package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"investment-advisor/config"
	"investment-advisor/internal/agent"
	"investment-advisor/internal/dto"
	"investment-advisor/internal/model"
	"investment-advisor/internal/repository"
	"investment-advisor/pkg/logger"
	"investment-advisor/pkg/telegram"
	"investment-advisor/pkg/utils"

	"gorm.io/datatypes"
)

type AdvisorService interface {
	Consult(ctx context.Context, profile dto.UserProfile) *dto.ConsultationResult
	GetConsultation(ctx context.Context, id uint) (*model.Consultation, error)
	GetConsultations(ctx context.Context, param model.GetConsultationParam) ([]model.Consultation, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// advisorService runs the consultation pipeline: analyze, review, design,
// assess, report. Each stage runs under its own wall clock timeout and a
// failed stage short circuits the run with a stage specific status while
// keeping every artifact produced so far.
type advisorService struct {
	cfg              *config.Config
	log              *logger.Logger
	agents           *agent.Agents
	consultationRepo repository.ConsultationRepository
	telegramSender   *telegram.RateLimitedSender
}

func NewAdvisorService(
	cfg *config.Config,
	log *logger.Logger,
	agents *agent.Agents,
	consultationRepo repository.ConsultationRepository,
	telegramSender *telegram.RateLimitedSender,
) *advisorService {
	return &advisorService{
		cfg:              cfg,
		log:              log,
		agents:           agents,
		consultationRepo: consultationRepo,
		telegramSender:   telegramSender,
	}
}

// Consult never returns nil: a panic anywhere in the pipeline is
// recovered into the named result with status error, so the caller
// always gets the artifacts produced up to that point.
func (s *advisorService) Consult(ctx context.Context, profile dto.UserProfile) (result *dto.ConsultationResult) {
	result = &dto.ConsultationResult{}
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "Consultation panicked", logger.Field("panic", r))
			result.Status = dto.StatusError
			result.Message = "The consultation failed unexpectedly."
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		s.log.InfoContext(ctx, "Consultation finished",
			logger.StringField("status", string(result.Status)),
			logger.Field("duration", time.Since(start).String()),
		)
		s.persist(ctx, profile, result)
		s.notify(profile, result)
	}()

	s.log.InfoContext(ctx, "Step 1: running financial analysis")
	analysis, err := s.runAnalysis(ctx, profile)
	if err != nil {
		result.Status = dto.StatusError
		result.Message = "Financial analysis failed."
		result.Error = err.Error()
		return result
	}
	result.FinancialAnalysis = analysis

	s.log.InfoContext(ctx, "Step 2: reviewing analysis")
	verdict, err := s.runReview(ctx, analysis)
	if err != nil {
		result.Status = dto.StatusError
		result.Message = "Analysis review failed."
		result.Error = err.Error()
		return result
	}
	result.Verdict = verdict
	if !verdict.Accepted {
		result.Status = dto.StatusValidationFailed
		result.Message = "The financial analysis did not pass review."
		result.Error = verdict.Reason
		return result
	}

	s.log.InfoContext(ctx, "Step 3: designing portfolio")
	portfolio, err := s.runPortfolioDesign(ctx, analysis)
	if err != nil {
		result.Status = dto.StatusPortfolioError
		result.Message = "Portfolio design failed."
		result.Error = err.Error()
		return result
	}
	result.Portfolio = portfolio

	s.log.InfoContext(ctx, "Step 4: assessing risk")
	assessment, err := s.runRiskAssessment(ctx, portfolio)
	if err != nil {
		result.Status = dto.StatusRiskAnalysisError
		result.Message = "Risk analysis failed."
		result.Error = err.Error()
		return result
	}
	result.RiskAssessment = assessment

	s.log.InfoContext(ctx, "Step 5: generating final report")
	report, err := s.runReportGeneration(ctx, profile, analysis, portfolio, assessment)
	if err != nil {
		result.Status = dto.StatusError
		result.Message = "Report generation failed."
		result.Error = err.Error()
		return result
	}
	result.FinalReport = report

	result.Status = dto.StatusSuccess
	result.Message = "The investment analysis completed successfully."
	return result
}

func (s *advisorService) stageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Advisor.StageTimeout)
}

func (s *advisorService) runAnalysis(ctx context.Context, profile dto.UserProfile) (*dto.AnalysisResult, error) {
	stageCtx, cancel := s.stageContext(ctx)
	defer cancel()
	return s.agents.FinancialAnalyst.Analyze(stageCtx, profile)
}

func (s *advisorService) runReview(ctx context.Context, analysis *dto.AnalysisResult) (*dto.ValidationVerdict, error) {
	stageCtx, cancel := s.stageContext(ctx)
	defer cancel()
	return s.agents.ReflectionValidator.Review(stageCtx, analysis)
}

func (s *advisorService) runPortfolioDesign(ctx context.Context, analysis *dto.AnalysisResult) (*dto.PortfolioAllocation, error) {
	stageCtx, cancel := s.stageContext(ctx)
	defer cancel()
	return s.agents.PortfolioArchitect.DesignPortfolio(stageCtx, analysis)
}

func (s *advisorService) runRiskAssessment(ctx context.Context, portfolio *dto.PortfolioAllocation) (*dto.RiskAssessment, error) {
	stageCtx, cancel := s.stageContext(ctx)
	defer cancel()
	return s.agents.RiskManager.AssessRisk(stageCtx, portfolio)
}

func (s *advisorService) runReportGeneration(ctx context.Context, profile dto.UserProfile, analysis *dto.AnalysisResult, portfolio *dto.PortfolioAllocation, assessment *dto.RiskAssessment) (string, error) {
	stageCtx, cancel := s.stageContext(ctx)
	defer cancel()
	return s.agents.ReportGenerator.GenerateReport(stageCtx, profile, analysis, portfolio, assessment)
}

// persist stores the run best effort. A storage failure is logged and
// never alters the consultation outcome.
func (s *advisorService) persist(ctx context.Context, profile dto.UserProfile, result *dto.ConsultationResult) {
	if s.consultationRepo == nil {
		return
	}

	consultation := &model.Consultation{
		Status:       string(result.Status),
		Message:      result.Message,
		UserProfile:  mustJSON(profile),
		FinalReport:  result.FinalReport,
		ErrorMessage: result.Error,
	}
	if result.FinancialAnalysis != nil {
		consultation.FinancialAnalysis = mustJSON(result.FinancialAnalysis)
	}
	if result.Verdict != nil {
		consultation.Validation = mustJSON(result.Verdict)
	}
	if result.Portfolio != nil {
		consultation.Portfolio = mustJSON(result.Portfolio)
	}
	if result.RiskAssessment != nil {
		consultation.RiskAssessment = mustJSON(result.RiskAssessment)
	}

	if err := s.consultationRepo.Create(ctx, consultation); err != nil {
		s.log.ErrorContext(ctx, "Failed to persist consultation", logger.ErrorField(err))
	}
}

// notify pushes a short summary to the configured Telegram chat. Runs in
// the background so delivery latency never blocks the caller.
func (s *advisorService) notify(profile dto.UserProfile, result *dto.ConsultationResult) {
	if s.telegramSender == nil || !s.cfg.Telegram.Enabled || s.cfg.Telegram.ChatID == "" {
		return
	}

	chatID, err := strconv.ParseInt(s.cfg.Telegram.ChatID, 10, 64)
	if err != nil {
		s.log.Error("Invalid telegram chat id", logger.ErrorField(err))
		return
	}

	message := formatConsultationSummary(profile, result)
	utils.GoSafe(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Telegram.TimeoutDuration)
		defer cancel()
		if err := s.telegramSender.SendMessageUser(ctx, message, chatID); err != nil {
			s.log.Error("Failed to send consultation summary", logger.ErrorField(err))
		}
	})
}

func formatConsultationSummary(profile dto.UserProfile, result *dto.ConsultationResult) string {
	header := fmt.Sprintf("Consultation finished with status: %s\n%s\n\nInvestable amount: %.0f\nTarget amount: %.0f\n",
		result.Status, result.Message, profile.TotalInvestableAmount, profile.TargetAmount)

	if result.Status == dto.StatusSuccess {
		return header + "\n" + result.FinalReport
	}
	if result.Error != "" {
		return header + "\nDetail: " + result.Error
	}
	return header
}

func (s *advisorService) GetConsultation(ctx context.Context, id uint) (*model.Consultation, error) {
	return s.consultationRepo.GetByID(ctx, id)
}

func (s *advisorService) GetConsultations(ctx context.Context, param model.GetConsultationParam) ([]model.Consultation, error) {
	return s.consultationRepo.Get(ctx, param)
}

// CleanupExpired removes consultations older than the retention window.
func (s *advisorService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.Advisor.RetentionDays)
	deleted, err := s.consultationRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up consultations: %w", err)
	}
	if deleted > 0 {
		s.log.InfoContext(ctx, "Cleaned up expired consultations",
			logger.IntField("deleted", int(deleted)))
	}
	return deleted, nil
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(b)
}
