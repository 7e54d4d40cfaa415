package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/leitner/internal/session"
	"github.com/example/leitner/internal/spaced_repetition"
	"github.com/example/leitner/pkg/models"
)

// statsPeriod is how far back /stats aggregates the session archive
const statsPeriod = 7 * 24 * time.Hour

// handleCommand handles bot commands
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		b.handleStart(ctx, chatID)
	case "menu":
		b.showMainMenu(ctx, chatID)
	case "study":
		if args == "" {
			b.sendText(ctx, chatID, "Usage: /study <category>", b.MainMenuButtons())
			return
		}
		b.startStudy(ctx, chatID, args, 0)
	case "level":
		category, level, err := parseLevelArgs(args)
		if err != nil {
			b.sendText(ctx, chatID, "Usage: /level <category> <1-5>", nil)
			return
		}
		b.startStudy(ctx, chatID, category, level)
	case "stats":
		b.showStats(ctx, chatID)
	case "due":
		b.showDue(ctx, chatID)
	case "reset":
		b.runner.Reset()
		b.cardMessageID = 0
		b.sendText(ctx, chatID, "Session cancelled.", b.MainMenuButtons())
	default:
		b.sendText(ctx, chatID, "Unknown command. Use /menu to show the main menu.", b.MainMenuButtons())
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) {
	text := "👋 Welcome to your Leitner flashcards!\n\n" +
		"Cards start in box 1 and move up one box for every correct answer. " +
		"A wrong answer sends a card back to box 1, so weak cards come up more often.\n\n" +
		"/study <category> - mixed session, weighted towards low boxes\n" +
		"/level <category> <1-5> - drill a single box\n" +
		"/due - cards due for review\n" +
		"/stats - your progress\n" +
		"/reset - cancel the current session"
	b.sendText(ctx, chatID, text, b.MainMenuButtons())
}

// startStudy builds a deck and sends its first card. Level 0 means a weighted run.
func (b *Bot) startStudy(ctx context.Context, chatID int64, category string, level int) {
	cards := b.app.Store.Cards()

	var deck *session.Deck
	if level == 0 {
		deck = b.sampler.BuildWeightedDeck(category, cards)
	} else {
		var err error
		deck, err = b.sampler.BuildLevelDeck(category, cards, level)
		if errors.Is(err, session.ErrEmptyDeck) {
			b.sendText(ctx, chatID, fmt.Sprintf("No cards in level %d of %s.", level, category), b.MainMenuButtons())
			return
		}
	}

	if err := b.runner.Start(deck); err != nil {
		b.sendText(ctx, chatID, fmt.Sprintf("No cards in %s yet.", category), b.MainMenuButtons())
		return
	}
	b.cardMessageID = 0
	b.sendCard(ctx, chatID)
}

// sendCard shows the current card with its answer hidden
func (b *Bot) sendCard(ctx context.Context, chatID int64) {
	card, err := b.runner.Current()
	if err != nil {
		return
	}
	pos, total := b.runner.Progress()
	msg := tgbotapi.NewMessage(chatID, cardText(card, pos, total, false))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{
		{{Text: "👀 Show answer", CallbackData: callbackReveal}},
	})
	sent, err := b.send(ctx, msg)
	if err != nil {
		return
	}
	b.cardMessageID = sent.MessageID
}

// isCurrentCard reports whether a callback came from the message showing the current card
func (b *Bot) isCurrentCard(callback *tgbotapi.CallbackQuery) bool {
	return b.cardMessageID != 0 && callback.Message.MessageID == b.cardMessageID
}

// handleReveal shows the answer of the current card and opens the runner for a verdict
func (b *Bot) handleReveal(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	card, err := b.runner.Current()
	if err != nil {
		b.answerCallback(callback.ID, "No active session.")
		return
	}
	if !b.isCurrentCard(callback) {
		b.answerCallback(callback.ID, "This card is no longer active.")
		return
	}
	b.answerCallback(callback.ID, "")

	chatID := callback.Message.Chat.ID
	pos, total := b.runner.Progress()
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, callback.Message.MessageID, cardText(card, pos, total, true),
		createKeyboard([][]MenuButton{{
			{Text: "✅ Correct", CallbackData: callbackAnswer + "1"},
			{Text: "❌ Wrong", CallbackData: callbackAnswer + "0"},
		}}))
	if err := b.sendMessage(ctx, edit); err == nil {
		b.runner.Ready()
	}
}

// handleAnswer records a verdict. Taps on a keyboard that was already answered,
// or that belongs to an earlier card or run, are not counted.
func (b *Bot) handleAnswer(ctx context.Context, callback *tgbotapi.CallbackQuery, correct bool) {
	if b.runner.State() != session.Running {
		b.answerCallback(callback.ID, "No active session.")
		return
	}
	if !b.isCurrentCard(callback) {
		b.answerCallback(callback.ID, "Already counted.")
		return
	}

	result, err := b.runner.Answer(correct)
	if err != nil {
		b.answerCallback(callback.ID, "No active session.")
		return
	}
	if !result.Accepted {
		b.answerCallback(callback.ID, "Already counted.")
		return
	}

	verdict := "❌ Wrong"
	if correct {
		verdict = "✅ Correct"
	}
	b.answerCallback(callback.ID, verdict)

	chatID := callback.Message.Chat.ID
	answered := fmt.Sprintf("❓ %s\n\n💡 %s\n\n%s → level %d", result.Card.Question, result.Card.Answer, verdict, result.Card.Level)
	b.sendMessage(ctx, tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, answered))

	if result.Completed {
		b.cardMessageID = 0
		b.sendText(ctx, chatID, summaryText(result.Summary), [][]MenuButton{
			{{Text: "🔁 Study again", CallbackData: studyCallback(result.Summary.Category)}},
			{{Text: "🏠 Menu", CallbackData: callbackMenu}},
		})
		return
	}
	b.sendCard(ctx, chatID)
}

func (b *Bot) showStats(ctx context.Context, chatID int64) {
	var sb strings.Builder
	sb.WriteString("📊 Statistics\n")

	levels := b.app.Store.LevelStats()
	sb.WriteString(fmt.Sprintf("\n%d cards in total\n", levels.Total()))
	for level := spaced_repetition.MinLevel; level <= spaced_repetition.MaxLevel; level++ {
		sb.WriteString(fmt.Sprintf("Level %d: %d\n", level, levels[level]))
	}

	sb.WriteString("\n")
	for _, stat := range b.app.Store.CategoryStats() {
		sb.WriteString(fmt.Sprintf("%s: %d cards, avg level %.1f, %d%%\n",
			stat.Category, stat.Total, stat.AvgLevel, stat.Progress))
	}

	now := b.app.Now()
	period, err := b.app.Sessions.StatsByPeriod(ctx, now.Add(-statsPeriod), now)
	if err != nil {
		log.Printf("Error getting session statistics: %v", err)
	} else {
		sb.WriteString(fmt.Sprintf("\nLast 7 days: %d sessions, %d answers, %d correct, avg %.0f%%\n",
			period.Sessions, period.Answers, period.Correct, period.AvgSuccessRate))
	}

	b.sendText(ctx, chatID, sb.String(), [][]MenuButton{{{Text: "🏠 Menu", CallbackData: callbackMenu}}})
}

func (b *Bot) showDue(ctx context.Context, chatID int64) {
	due := b.app.Store.DueCounts(b.app.Now())
	if len(due) == 0 {
		b.sendText(ctx, chatID, "🎉 Nothing is due right now.", [][]MenuButton{{{Text: "🏠 Menu", CallbackData: callbackMenu}}})
		return
	}
	b.sendText(ctx, chatID, reminderText(due), dueButtons(due))
}

// cardText renders a card; position is zero-based
func cardText(card *models.Card, position, total int, revealed bool) string {
	text := fmt.Sprintf("%s · card %d/%d · level %d\n\n❓ %s", card.Category, position+1, total, card.Level, card.Question)
	if revealed {
		text += fmt.Sprintf("\n\n💡 %s", card.Answer)
	}
	return text
}

func summaryText(s *session.Summary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏁 %s finished\n\n✅ %d correct · ❌ %d wrong · %d%%\n",
		s.Category, s.Correct, s.Incorrect, s.SuccessRate))
	if s.Level != nil {
		sb.WriteString("\n" + s.Level.Headline() + "\n")
	}
	if len(s.Missed) > 0 {
		sb.WriteString("\nReview these again:\n")
		seen := make(map[*models.Card]bool)
		for _, c := range s.Missed {
			if seen[c] {
				continue
			}
			seen[c] = true
			sb.WriteString(fmt.Sprintf("• %s → %s\n", c.Question, c.Answer))
		}
	}
	return sb.String()
}

func reminderText(due []models.DueCount) string {
	var sb strings.Builder
	sb.WriteString("⏰ Cards due for review:\n")
	for _, d := range due {
		sb.WriteString(fmt.Sprintf("• %s: %d\n", d.Category, d.Count))
	}
	return sb.String()
}

func dueButtons(due []models.DueCount) [][]MenuButton {
	var rows [][]MenuButton
	for _, d := range due {
		rows = append(rows, []MenuButton{{Text: "📚 " + d.Category, CallbackData: studyCallback(d.Category)}})
	}
	return rows
}

// parseLevelArgs splits "<category> <level>"; the category may contain spaces
func parseLevelArgs(args string) (string, int, error) {
	idx := strings.LastIndex(args, " ")
	if idx <= 0 {
		return "", 0, fmt.Errorf("missing level")
	}
	level, err := strconv.Atoi(strings.TrimSpace(args[idx+1:]))
	if err != nil || level < spaced_repetition.MinLevel || level > spaced_repetition.MaxLevel {
		return "", 0, fmt.Errorf("invalid level %q", args[idx+1:])
	}
	return strings.TrimSpace(args[:idx]), level, nil
}
