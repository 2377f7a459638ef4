package telegram

import (
	"context"
	"strconv"

	"investment-advisor/config"
	"investment-advisor/pkg/logger"
	"investment-advisor/pkg/ratelimit"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// maxMessageLength is telegram's hard limit per message.
const maxMessageLength = 4096

// RateLimitedSender wraps the bot with a global and a per-user rate limit
// so report delivery never trips telegram's flood control.
type RateLimitedSender struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	bot           *telebot.Bot
	globalLimiter *rate.Limiter
	userLimiters  *ratelimit.LimiterStore
}

func NewRateLimitedSender(cfg *config.TelegramConfig, log *logger.Logger, bot *telebot.Bot) *RateLimitedSender {
	return &RateLimitedSender{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.MaxGlobalRequestPerSecond), cfg.MaxGlobalRequestPerSecond),
		userLimiters:  ratelimit.NewLimiterStore(rate.Limit(cfg.MaxUserRequestPerSecond), cfg.MaxUserRequestPerSecond),
	}
}

func (t *RateLimitedSender) Send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, c.Sender().ID); err != nil {
		return nil, err
	}
	return t.bot.Send(c.Chat(), what, opts...)
}

func (t *RateLimitedSender) SendMessageUser(ctx context.Context, message string, chatID int64, opts ...interface{}) error {
	if err := t.checkRateLimit(ctx, chatID); err != nil {
		return err
	}
	for _, chunk := range SplitMessage(message) {
		if _, err := t.bot.Send(&telebot.User{ID: chatID}, chunk, opts...); err != nil {
			t.log.ErrorContext(ctx, "Failed to send telegram message", logger.ErrorField(err))
			return err
		}
	}
	return nil
}

// SendLong sends a message in chunks that respect telegram's length limit.
func (t *RateLimitedSender) SendLong(ctx context.Context, c telebot.Context, message string, opts ...interface{}) error {
	for _, chunk := range SplitMessage(message) {
		if _, err := t.Send(ctx, c, chunk, opts...); err != nil {
			return err
		}
	}
	return nil
}

func (t *RateLimitedSender) checkRateLimit(ctx context.Context, userID int64) error {
	if err := t.globalLimiter.Wait(ctx); err != nil {
		return err
	}
	limiter := t.userLimiters.GetLimiter(strconv.FormatInt(userID, 10))
	return limiter.Wait(ctx)
}

// SplitMessage breaks text on newline boundaries into telegram-sized chunks.
func SplitMessage(text string) []string {
	if len(text) <= maxMessageLength {
		return []string{text}
	}

	var chunks []string
	for len(text) > maxMessageLength {
		cut := maxMessageLength
		for i := maxMessageLength - 1; i > 0; i-- {
			if text[i] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}
