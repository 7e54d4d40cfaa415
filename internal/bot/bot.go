package bot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/example/leitner/internal/app"
	"github.com/example/leitner/internal/config"
	"github.com/example/leitner/internal/session"
	"github.com/example/leitner/pkg/models"
)

// Callback data
const (
	callbackMenu   = "menu"
	callbackStats  = "stats"
	callbackDue    = "due"
	callbackReveal = "reveal"
	callbackStudy  = "study:"
	callbackAnswer = "answer:"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot talks through
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot is the Telegram front end for a single learner
type Bot struct {
	api     sender
	updates *tgbotapi.BotAPI
	app     *app.App
	ownerID int64
	limiter *rate.Limiter
	sampler *session.Sampler

	// mu serializes the update loop and the reminder job over the store and runner
	mu     sync.Mutex
	runner *session.Runner
	// cardMessageID is the message showing the runner's current card; 0 when none
	cardMessageID int
}

// New authorizes against the Telegram API
func New(cfg config.TelegramConfig, a *app.App) (*Bot, error) {
	botAPI, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	b := newBot(botAPI, a, cfg, session.NewSampler())
	b.updates = botAPI
	return b, nil
}

func newBot(api sender, a *app.App, cfg config.TelegramConfig, sampler *session.Sampler) *Bot {
	burst := cfg.SendBurst
	if burst < 1 {
		burst = 1
	}
	return &Bot{
		api:     api,
		app:     a,
		ownerID: cfg.OwnerChatID,
		limiter: rate.NewLimiter(rate.Limit(cfg.SendRate), burst),
		sampler: sampler,
		runner:  a.NewRunner(),
	}
}

// Start receives updates until ctx is cancelled. Updates are handled one at a time.
func (b *Bot) Start(ctx context.Context) error {
	if b.updates == nil {
		return fmt.Errorf("bot is not connected")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.updates.GetUpdatesChan(updateConfig)
	defer b.updates.StopReceivingUpdates()

	log.Printf("Bot started, serving chat %d", b.ownerID)
	for {
		select {
		case <-ctx.Done():
			log.Println("Stopping bot...")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case update.Message != nil:
		if update.Message.Chat == nil {
			return
		}
		if !b.isOwner(update.Message.Chat.ID) {
			b.refuse(ctx, update.Message.Chat.ID)
			return
		}
		if update.Message.IsCommand() {
			b.handleCommand(ctx, update.Message)
			return
		}
		b.sendText(ctx, update.Message.Chat.ID, "I don't understand. Use /menu to show the main menu.", b.MainMenuButtons())
	case update.CallbackQuery != nil:
		callback := update.CallbackQuery
		if callback.Message == nil || callback.Message.Chat == nil {
			return
		}
		if !b.isOwner(callback.Message.Chat.ID) {
			b.answerCallback(callback.ID, "This bot is private.")
			return
		}
		b.handleCallbackQuery(ctx, callback)
	}
}

func (b *Bot) isOwner(chatID int64) bool {
	return chatID == b.ownerID
}

func (b *Bot) refuse(ctx context.Context, chatID int64) {
	log.Printf("Refusing message from chat %d", chatID)
	b.sendMessage(ctx, tgbotapi.NewMessage(chatID, "This bot is private."))
}

// handleCallbackQuery routes inline keyboard presses
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	chatID := callback.Message.Chat.ID
	data := callback.Data

	switch {
	case data == callbackMenu:
		b.answerCallback(callback.ID, "")
		b.showMainMenu(ctx, chatID)
	case data == callbackStats:
		b.answerCallback(callback.ID, "")
		b.showStats(ctx, chatID)
	case data == callbackDue:
		b.answerCallback(callback.ID, "")
		b.showDue(ctx, chatID)
	case data == callbackReveal:
		b.handleReveal(ctx, callback)
	case strings.HasPrefix(data, callbackStudy):
		category, ok := b.categoryForToken(strings.TrimPrefix(data, callbackStudy))
		if !ok {
			b.answerCallback(callback.ID, "This category no longer exists.")
			b.showMainMenu(ctx, chatID)
			return
		}
		b.answerCallback(callback.ID, "")
		b.startStudy(ctx, chatID, category, 0)
	case strings.HasPrefix(data, callbackAnswer):
		b.handleAnswer(ctx, callback, strings.TrimPrefix(data, callbackAnswer) == "1")
	default:
		log.Printf("Unknown callback data %q", data)
		b.answerCallback(callback.ID, "")
	}
}

// DueCounts implements scheduler.DueSource
func (b *Bot) DueCounts(_ context.Context, now time.Time) ([]models.DueCount, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.app.Store.DueCounts(now), nil
}

// SendReminder implements scheduler.Notifier
func (b *Bot) SendReminder(ctx context.Context, due []models.DueCount) error {
	msg := tgbotapi.NewMessage(b.ownerID, reminderText(due))
	msg.ReplyMarkup = createKeyboard(dueButtons(due))
	return b.sendMessage(ctx, msg)
}

// showMainMenu shows the main menu
func (b *Bot) showMainMenu(ctx context.Context, chatID int64) {
	b.sendText(ctx, chatID, "Main Menu - pick a category to study:", b.MainMenuButtons())
}

// MainMenuButtons returns one study button per category plus the overview buttons
func (b *Bot) MainMenuButtons() [][]MenuButton {
	var rows [][]MenuButton
	for _, name := range b.app.Store.Categories() {
		count := len(b.app.Store.CardsInCategory(name))
		rows = append(rows, []MenuButton{
			{Text: fmt.Sprintf("📚 %s (%d)", name, count), CallbackData: studyCallback(name)},
		})
	}
	return append(rows, []MenuButton{
		{Text: "📊 Statistics", CallbackData: callbackStats},
		{Text: "⏰ Due", CallbackData: callbackDue},
	})
}

// studyCallback encodes a category as a fixed-length token; Telegram caps callback data at 64 bytes
func studyCallback(category string) string {
	return callbackStudy + categoryToken(category)
}

func categoryToken(category string) string {
	sum := sha256.Sum256([]byte(category))
	return hex.EncodeToString(sum[:8])
}

// categoryForToken finds the listed or card-referenced category a study button was built for
func (b *Bot) categoryForToken(token string) (string, bool) {
	for _, name := range b.app.Store.Categories() {
		if categoryToken(name) == token {
			return name, true
		}
	}
	for _, card := range b.app.Store.Cards() {
		if categoryToken(card.Category) == token {
			return card.Category, true
		}
	}
	return "", false
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string, buttons [][]MenuButton) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	b.sendMessage(ctx, msg)
}

// sendMessage sends through the rate limiter
func (b *Bot) sendMessage(ctx context.Context, c tgbotapi.Chattable) error {
	_, err := b.send(ctx, c)
	return err
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("rate limiter: %w", err)
	}
	sent, err := b.api.Send(c)
	if err != nil {
		log.Printf("Error sending message: %v", err)
		return tgbotapi.Message{}, err
	}
	return sent, nil
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("Error answering callback: %v", err)
	}
}
