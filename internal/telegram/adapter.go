package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/hydrolix-assistant/internal/gateway"
	"github.com/user/hydrolix-assistant/internal/types"
)

const maxTelegramMessage = 4096

// statusRecentWindow caps how many remembered turns /status counts.
const statusRecentWindow = 200

// Adapter bridges Telegram to the gateway. Telegram gets the answer text
// only; query result panels are an interactive-terminal feature.
type Adapter struct {
	bot      *tgbotapi.BotAPI
	gateway  *gateway.Gateway
	sessions types.SessionStore
	memory   types.MemoryStore
}

// New creates a Telegram adapter.
func New(token string, gw *gateway.Gateway, sessions types.SessionStore, memory types.MemoryStore) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Adapter{
		bot:      bot,
		gateway:  gw,
		sessions: sessions,
		memory:   memory,
	}, nil
}

// Start begins long-polling for Telegram updates.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		a.handleCommand(ctx, msg)
		return
	}

	chatID := msg.Chat.ID
	event := &types.InboundEvent{
		Source:     "telegram",
		SessionKey: buildSessionKey(msg.From.ID, msg.Chat.ID),
		UserID:     strconv.FormatInt(msg.From.ID, 10),
		Text:       msg.Text,
	}

	err := a.gateway.HandleInbound(ctx, event, gateway.WithOnComplete(func(ans *types.Answer) {
		a.sendResponse(chatID, ans.Text)
	}))
	if err != nil {
		slog.Error("handle inbound failed", "chat_id", chatID, "error", err)
		a.sendResponse(chatID, "Sorry, I encountered an error processing your message.")
	}
}

func (a *Adapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendResponse(chatID, "Hello! I'm your streaming analytics assistant. Ask me about playback quality, errors, or cache performance.")

	case "status":
		key := buildSessionKey(msg.From.ID, msg.Chat.ID)
		userID := strconv.FormatInt(msg.From.ID, 10)
		sid, err := a.sessions.ResolveOrCreate(ctx, key, userID)
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		turns, err := a.memory.Recent(ctx, userID, sid, statusRecentWindow)
		if err != nil {
			a.sendResponse(chatID, "Error fetching status.")
			return
		}
		a.sendResponse(chatID, fmt.Sprintf("Session: %s\nRemembered turns: %d", sid, len(turns)))

	default:
		a.sendResponse(chatID, "Unknown command. Available: /start, /status")
	}
}

// Deliver sends a completed answer to the chat encoded in the session key.
// Registered with the delivery registry for scheduled report prompts.
func (a *Adapter) Deliver(sessionKey string, ans *types.Answer) error {
	chatID, err := chatIDFromSessionKey(sessionKey)
	if err != nil {
		return err
	}
	a.sendResponse(chatID, ans.Text)
	return nil
}

func (a *Adapter) sendResponse(chatID int64, text string) {
	parts := splitMessage(text)
	for _, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		msg.ParseMode = "Markdown"
		if _, err := a.bot.Send(msg); err != nil {
			// Retry without markdown if it fails
			msg.ParseMode = ""
			if _, err := a.bot.Send(msg); err != nil {
				slog.Error("send message failed", "chat_id", chatID, "error", err)
			}
		}
	}
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := maxTelegramMessage
		if end >= len(text) {
			end = len(text)
		} else {
			// Back up to a rune boundary so a multi-byte character is
			// never cut across two messages.
			for end > 0 && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == 0 {
				end = maxTelegramMessage
			}
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}

func buildSessionKey(userID, chatID int64) types.SessionKey {
	return types.NewSessionKey("telegram",
		strconv.FormatInt(userID, 10),
		strconv.FormatInt(chatID, 10),
	)
}

// chatIDFromSessionKey parses the chat ID out of "telegram:{user}:{chat}".
func chatIDFromSessionKey(sessionKey string) (int64, error) {
	var user, chat int64
	if _, err := fmt.Sscanf(sessionKey, "telegram:%d:%d", &user, &chat); err != nil {
		return 0, fmt.Errorf("parse session key %q: %w", sessionKey, err)
	}
	return chat, nil
}
