// Package telegram posts operator alerts to a Telegram chat. The alerter
// is optional: without credentials it silently swallows every message.
package telegram

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	sendTimeout    = 10 * time.Second
)

// Alerter delivers Markdown messages to one chat. Delivery failures are
// logged and absorbed; an alert is never worth stopping the scanner for.
type Alerter struct {
	endpoint string
	chatID   string
	client   *http.Client
	logger   *zap.Logger
}

// Config holds alerter configuration. Leaving BotToken or ChatID empty
// produces a disabled alerter whose Send is a no-op.
type Config struct {
	BotToken string
	ChatID   string
	// BaseURL overrides the Telegram host, for tests.
	BaseURL string
	Logger  *zap.Logger
}

// New creates an alerter. It never fails: missing credentials just
// disable it.
func New(cfg *Config) *Alerter {
	a := &Alerter{
		chatID: cfg.ChatID,
		client: &http.Client{Timeout: sendTimeout},
		logger: cfg.Logger,
	}

	if cfg.BotToken == "" || cfg.ChatID == "" {
		cfg.Logger.Info("telegram-alerts-disabled")
		return a
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	a.endpoint = base + "/bot" + cfg.BotToken + "/sendMessage"

	cfg.Logger.Info("telegram-alerts-enabled", zap.String("chat-id", cfg.ChatID))
	return a
}

// NewFromEnv builds the alerter from TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID.
func NewFromEnv(logger *zap.Logger) *Alerter {
	return New(&Config{
		BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		Logger:   logger,
	})
}

// Enabled reports whether messages will actually go anywhere.
func (a *Alerter) Enabled() bool {
	return a.endpoint != ""
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send posts one Markdown message. A disabled alerter performs no HTTP
// request at all.
func (a *Alerter) Send(ctx context.Context, text string) {
	if !a.Enabled() {
		return
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:    a.chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		a.logger.Warn("alert-marshal-failed", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		a.logger.Warn("alert-request-failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		alertsTotal.WithLabelValues("transport_error").Inc()
		a.logger.Warn("alert-delivery-failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		alertsTotal.WithLabelValues("rejected").Inc()
		a.logger.Warn("alert-rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(payload)))
		return
	}

	alertsTotal.WithLabelValues("delivered").Inc()
	a.logger.Debug("alert-delivered", zap.Int("bytes", len(text)))
}
