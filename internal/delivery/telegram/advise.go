package telegram

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"investment-advisor/internal/dto"
	"investment-advisor/pkg/logger"

	"gopkg.in/telebot.v3"
)

const adviseUsage = "Usage: /advise <investable amount> <age> <experience years> <target amount>\nExample: /advise 50000000 35 10 70000000"

func (t *TelegramBotHandler) handleAdvise(ctx context.Context, c telebot.Context) error {
	profile, err := parseAdviseArgs(c.Args())
	if err != nil {
		_, sendErr := t.sender.Send(ctx, c, fmt.Sprintf("⚠️ %s\n\n%s", err.Error(), adviseUsage))
		return sendErr
	}
	if err := t.validator.Struct(profile); err != nil {
		_, sendErr := t.sender.Send(ctx, c, fmt.Sprintf("⚠️ Invalid profile: %s", err.Error()))
		return sendErr
	}

	if _, err := t.sender.Send(ctx, c, "🔎 Running your consultation, this can take a couple of minutes..."); err != nil {
		return err
	}

	t.log.InfoContext(ctx, "Running consultation from telegram",
		logger.Field("user_id", c.Sender().ID))

	result := t.service.AdvisorService.Consult(ctx, profile)
	return t.sendResult(ctx, c, result)
}

func (t *TelegramBotHandler) handleInstruments(ctx context.Context, c telebot.Context) error {
	instruments := t.service.CatalogService.List()

	var b strings.Builder
	b.WriteString("📋 Available investment products:\n\n")
	for _, ticker := range sortedKeys(instruments) {
		b.WriteString(fmt.Sprintf("• %s: %s\n", ticker, instruments[ticker]))
	}

	return t.sender.SendLong(ctx, c, b.String())
}

func (t *TelegramBotHandler) sendResult(ctx context.Context, c telebot.Context, result *dto.ConsultationResult) error {
	switch result.Status {
	case dto.StatusSuccess:
		return t.sender.SendLong(ctx, c, "✅ "+result.Message+"\n\n"+result.FinalReport)
	case dto.StatusValidationFailed:
		return t.sender.SendLong(ctx, c, fmt.Sprintf("🚫 %s\n\nReviewer: %s", result.Message, result.Error))
	default:
		return t.sender.SendLong(ctx, c, fmt.Sprintf("❌ %s\n\nDetail: %s", result.Message, result.Error))
	}
}

func parseAdviseArgs(args []string) (dto.UserProfile, error) {
	var profile dto.UserProfile
	if len(args) != 4 {
		return profile, fmt.Errorf("expected 4 values, got %d", len(args))
	}

	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return profile, fmt.Errorf("invalid investable amount: %s", args[0])
	}
	age, err := strconv.Atoi(args[1])
	if err != nil {
		return profile, fmt.Errorf("invalid age: %s", args[1])
	}
	experience, err := strconv.Atoi(args[2])
	if err != nil {
		return profile, fmt.Errorf("invalid experience years: %s", args[2])
	}
	target, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return profile, fmt.Errorf("invalid target amount: %s", args[3])
	}

	profile.TotalInvestableAmount = amount
	profile.Age = age
	profile.ExperienceYears = experience
	profile.TargetAmount = target
	return profile, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
