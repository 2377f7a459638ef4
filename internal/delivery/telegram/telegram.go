package telegram

import (
	"context"
	"time"

	"investment-advisor/config"
	"investment-advisor/internal/service"
	"investment-advisor/pkg/logger"
	"investment-advisor/pkg/telegram"
	"investment-advisor/pkg/utils"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

type TelegramBotHandler struct {
	ctx       context.Context
	cfg       *config.Config
	bot       *telebot.Bot
	log       *logger.Logger
	sender    *telegram.RateLimitedSender
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewTelegramBotHandler(
	ctx context.Context,
	cfg *config.Config,
	log *logger.Logger,
	bot *telebot.Bot,
	sender *telegram.RateLimitedSender,
	echo *echo.Echo,
	validator *goValidator.Validate,
	service *service.Service) *TelegramBotHandler {
	return &TelegramBotHandler{
		ctx:       ctx,
		cfg:       cfg,
		bot:       bot,
		log:       log,
		sender:    sender,
		echo:      echo,
		validator: validator,
		service:   service,
	}
}

func (t *TelegramBotHandler) Start() {
	t.log.Info("Starting Telegram bot...")

	t.RegisterHandlers()

	if t.cfg.Telegram.WebhookURL != "" {
		t.log.Info("Setting webhook URL", logger.StringField("webhook_url", t.cfg.Telegram.WebhookURL))
		t.bot.SetWebhook(&telebot.Webhook{
			Endpoint: &telebot.WebhookEndpoint{
				PublicURL: t.cfg.Telegram.WebhookURL,
			},
		})
		return
	}

	// No webhook configured, fall back to long polling.
	utils.GoSafe(t.bot.Start)
}

func (t *TelegramBotHandler) Stop() {
	t.log.Info("Stopping Telegram bot...")

	ctx, cancel := context.WithTimeout(t.ctx, 10*time.Second)
	defer cancel()

	stopDone := make(chan struct{}, 1)
	go func() {
		t.bot.Stop()
		stopDone <- struct{}{}
	}()

	select {
	case <-stopDone:
		t.log.Info("Telegram bot stopped successfully")
	case <-ctx.Done():
		t.log.Warn("Timeout while stopping bot, forcing shutdown")
	}
}
