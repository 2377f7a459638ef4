package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger         `mapstructure:"logger"`
	DB        Database       `mapstructure:"database"`
	API       API            `mapstructure:"api"`
	Gemini    Gemini         `mapstructure:"gemini"`
	Advisor   Advisor        `mapstructure:"advisor"`
	MarketAPI MarketAPI      `mapstructure:"market_api"`
	Catalog   Catalog        `mapstructure:"catalog"`
	Scheduler Scheduler      `mapstructure:"scheduler"`
	Cache     Cache          `mapstructure:"cache"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// StageModel holds the model configuration for a single agent stage.
type StageModel struct {
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type Advisor struct {
	StageTimeout     time.Duration `mapstructure:"stage_timeout"`
	MaxToolTurns     int           `mapstructure:"max_tool_turns"`
	RetentionDays    int           `mapstructure:"retention_days"`
	FinancialAnalyst StageModel    `mapstructure:"financial_analyst"`
	Reflection       StageModel    `mapstructure:"reflection"`
	PortfolioDesign  StageModel    `mapstructure:"portfolio_design"`
	RiskAnalysis     StageModel    `mapstructure:"risk_analysis"`
	ReportGenerator  StageModel    `mapstructure:"report_generator"`
}

type MarketAPI struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	LookbackDays        int           `mapstructure:"lookback_days"`
	NewsTopN            int           `mapstructure:"news_top_n"`
}

type Catalog struct {
	Instruments map[string]string `mapstructure:"instruments"`
}

type Scheduler struct {
	IndicatorWarmupSpec string `mapstructure:"indicator_warmup_spec"`
	CleanupSpec         string `mapstructure:"cleanup_spec"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type TelegramConfig struct {
	BotToken                  string        `mapstructure:"bot_token"`
	ChatID                    string        `mapstructure:"chat_id"`
	WebhookURL                string        `mapstructure:"webhook_url"`
	Enabled                   bool          `mapstructure:"enabled"`
	TimeoutDuration           time.Duration `mapstructure:"timeout_duration"`
	MaxGlobalRequestPerSecond int           `mapstructure:"max_global_request_per_second"`
	MaxUserRequestPerSecond   int           `mapstructure:"max_user_request_per_second"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Catalog.Instruments) == 0 {
		cfg.Catalog.Instruments = DefaultInstruments()
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")

	viper.SetDefault("api.port", 8080)

	viper.SetDefault("gemini.max_request_per_minute", 10)
	viper.SetDefault("gemini.max_token_per_minute", 250000)

	viper.SetDefault("advisor.stage_timeout", 2*time.Minute)
	viper.SetDefault("advisor.max_tool_turns", 8)
	viper.SetDefault("advisor.retention_days", 30)

	viper.SetDefault("advisor.financial_analyst.model", "gemini-2.0-flash")
	viper.SetDefault("advisor.financial_analyst.temperature", 0.1)
	viper.SetDefault("advisor.financial_analyst.max_tokens", 2000)

	viper.SetDefault("advisor.reflection.model", "gemini-2.0-flash")
	viper.SetDefault("advisor.reflection.temperature", 0.1)
	viper.SetDefault("advisor.reflection.max_tokens", 2000)

	viper.SetDefault("advisor.portfolio_design.model", "gemini-2.0-flash")
	viper.SetDefault("advisor.portfolio_design.temperature", 0.3)
	viper.SetDefault("advisor.portfolio_design.max_tokens", 3000)

	viper.SetDefault("advisor.risk_analysis.model", "gemini-2.0-flash")
	viper.SetDefault("advisor.risk_analysis.temperature", 0.2)
	viper.SetDefault("advisor.risk_analysis.max_tokens", 3000)

	viper.SetDefault("advisor.report_generator.model", "gemini-2.0-flash")
	viper.SetDefault("advisor.report_generator.temperature", 0.3)
	viper.SetDefault("advisor.report_generator.max_tokens", 2000)

	viper.SetDefault("market_api.base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("market_api.timeout", 15*time.Second)
	viper.SetDefault("market_api.max_request_per_minute", 30)
	viper.SetDefault("market_api.lookback_days", 100)
	viper.SetDefault("market_api.news_top_n", 5)

	viper.SetDefault("scheduler.indicator_warmup_spec", "0 * * * *")
	viper.SetDefault("scheduler.cleanup_spec", "30 2 * * *")

	viper.SetDefault("cache.default_expiration", 15*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 30*time.Minute)

	viper.SetDefault("telegram.enabled", false)
	viper.SetDefault("telegram.timeout_duration", 5*time.Minute)
	viper.SetDefault("telegram.max_global_request_per_second", 30)
	viper.SetDefault("telegram.max_user_request_per_second", 1)
}

// DefaultInstruments is the built-in investment product catalog used when
// none is configured. Tickers map to the human readable descriptions the
// portfolio agent is instructed to quote in its rationale.
func DefaultInstruments() map[string]string {
	return map[string]string{
		"SPY":  "SPDR S&P 500 ETF Trust (US large cap)",
		"QQQ":  "Invesco QQQ Trust (US technology)",
		"IWM":  "iShares Russell 2000 ETF (US small cap)",
		"VGK":  "Vanguard FTSE Europe ETF (European equities)",
		"EWJ":  "iShares MSCI Japan ETF (Japanese equities)",
		"MCHI": "iShares MSCI China ETF (Chinese equities)",
		"EEM":  "iShares MSCI Emerging Markets ETF (emerging market equities)",
		"AGG":  "iShares Core U.S. Aggregate Bond ETF (US aggregate bonds)",
		"TLT":  "iShares 20+ Year Treasury Bond ETF (US long-term treasuries)",
		"LQD":  "iShares iBoxx $ Investment Grade Corporate Bond ETF (US investment grade credit)",
		"HYG":  "iShares iBoxx $ High Yield Corporate Bond ETF (US high yield credit)",
		"EMB":  "iShares J.P. Morgan USD Emerging Markets Bond ETF (emerging market bonds)",
		"GLD":  "SPDR Gold Shares (gold)",
		"SLV":  "iShares Silver Trust (silver)",
		"VNQ":  "Vanguard Real Estate ETF (US REITs)",
		"RWX":  "SPDR Dow Jones International Real Estate ETF (international real estate)",
		"USO":  "United States Oil Fund (crude oil)",
		"VTIP": "Vanguard Short-Term Inflation-Protected Securities ETF (inflation linked bonds)",
		"XLF":  "Financial Select Sector SPDR Fund (financial sector)",
		"ICLN": "iShares Global Clean Energy ETF (clean energy)",
	}
}
