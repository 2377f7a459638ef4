package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"investment-advisor/config"
	"investment-advisor/internal/agent"
	"investment-advisor/internal/dto"
	"investment-advisor/internal/repository"
	"investment-advisor/internal/service"
	"investment-advisor/pkg/cache"
	"investment-advisor/pkg/logger"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

var consultProfile dto.UserProfile

// consultCmd runs one consultation from the command line and prints the
// aggregate result as JSON. It needs no database or bot, only a model API
// key, which makes it handy for smoke testing prompts and configuration.
var consultCmd = &cobra.Command{
	Use:   "consult",
	Short: "Run a single consultation and print the result as JSON",
	Run:   Consult,
}

func init() {
	consultCmd.Flags().Float64Var(&consultProfile.TotalInvestableAmount, "amount", 0, "total investable amount")
	consultCmd.Flags().IntVar(&consultProfile.Age, "age", 0, "age of the investor")
	consultCmd.Flags().IntVar(&consultProfile.ExperienceYears, "experience", 0, "years of stock investment experience")
	consultCmd.Flags().Float64Var(&consultProfile.TargetAmount, "target", 0, "target amount after one year")
	consultCmd.MarkFlagRequired("amount")
	consultCmd.MarkFlagRequired("age")
	consultCmd.MarkFlagRequired("target")
}

func Consult(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logg, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	validate := goValidator.New()
	if err := validate.Struct(consultProfile); err != nil {
		log.Fatalf("Invalid profile: %v", err)
	}

	agentRepo, err := repository.NewGeminiAgentRepository(cfg, logg)
	if err != nil {
		log.Fatalf("Failed to create agent repository: %v", err)
	}

	inmemoryCache := cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)
	repo := &repository.Repository{
		AgentRepo:      agentRepo,
		MarketDataRepo: repository.NewMarketDataRepository(cfg, inmemoryCache, logg),
		CatalogRepo:    repository.NewInstrumentCatalogRepository(cfg),
	}

	agents := agent.NewAgents(cfg, repo, logg)
	advisor := service.NewAdvisorService(cfg, logg, agents, nil, nil)

	result := advisor.Consult(ctx, consultProfile)

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(encoded))

	if result.Status != dto.StatusSuccess {
		os.Exit(1)
	}
}
