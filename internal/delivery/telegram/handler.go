package telegram

import (
	"context"
	"net/http"
	"time"

	"investment-advisor/internal/dto"
	"investment-advisor/pkg/logger"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

func (t *TelegramBotHandler) WithContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(t.ctx, 15*time.Minute)
		defer cancel()

		return handler(ctx, c)
	}
}

func (t *TelegramBotHandler) RegisterHandlers() {
	t.echo.POST("/api/v1/telegram/webhook", func(c echo.Context) error {
		var update telebot.Update
		if err := c.Bind(&update); err != nil {
			t.log.ErrorContext(t.ctx, "Cannot bind JSON", logger.ErrorField(err))
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
		}
		t.bot.ProcessUpdate(update)
		return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "ok", nil))
	})

	t.bot.Handle("/start", t.WithContext(t.handleStart))
	t.bot.Handle("/help", t.WithContext(t.handleHelp))
	t.bot.Handle("/advise", t.WithContext(t.handleAdvise))
	t.bot.Handle("/instruments", t.WithContext(t.handleInstruments))
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	message := `👋 *Welcome to the Investment Advisor Bot!* 🤖
I turn your financial profile into a reviewed portfolio proposal with scenario guidance.

🔧 Available commands:

💼 /advise - Run a full investment consultation
📋 /instruments - List the investable products
🆘 /help - Usage guide
🔁 /start - Show this message again

🚀 *Ready?* Try /advise to get your first report!`
	_, err := t.sender.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}

func (t *TelegramBotHandler) handleHelp(ctx context.Context, c telebot.Context) error {
	message := `❓ *How to use the Investment Advisor Bot* ❓

The /advise command expects four numbers separated by spaces:

` + "`/advise <investable amount> <age> <experience years> <target amount>`" + `

Example:
` + "`/advise 50000000 35 10 70000000`" + `

The consultation runs five steps: financial analysis, an independent review of that analysis, portfolio design over the available products, a two scenario risk assessment, and a final written report. It can take a couple of minutes.

Use /instruments to see which products the portfolio can hold.`
	_, err := t.sender.Send(ctx, c, message, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}
