package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrNotConfigured is returned when the bot token or chat id is missing.
var ErrNotConfigured = errors.New("telegram bot token and chat id are required")

// TelegramNotifier sends HTML messages via the Telegram Bot API.
// The bot client is created on the first Send.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Endpoint string // format with token and method, e.g. tgbotapi.APIEndpoint
	Client   *http.Client

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// NewTelegramNotifier creates a notifier with optional proxy support.
// An empty endpoint selects the public Bot API.
func NewTelegramNotifier(botToken, chatID, endpoint, proxyURL string) *TelegramNotifier {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		Endpoint: endpoint,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

// Send posts text to the configured chat with HTML parse mode.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	if t.BotToken == "" || t.ChatID == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	bot, err := t.client()
	if err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(t.ChatID, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel(t.ChatID, text)
	}
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (t *TelegramNotifier) client() (*tgbotapi.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.BotToken, t.Endpoint, t.Client)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	t.bot = bot
	return bot, nil
}
