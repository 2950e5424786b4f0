package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ms-topup/internal/config"
	"ms-topup/internal/logger"
)

// TelegramClient posts operator notifications to a Telegram bot chat.
// With no token or chat ID configured the client reports disabled and
// every send is skipped.
type TelegramClient struct {
	cfg    config.TelegramConfig
	client *http.Client
	logger *logger.Logger
}

func NewTelegramClient(cfg config.TelegramConfig, log *logger.Logger) *TelegramClient {
	return &TelegramClient{
		cfg: cfg,
		client: &http.Client{
			// Bounded so a dead Telegram endpoint can't hold the goroutine forever.
			Timeout: 10 * time.Second,
		},
		logger: log,
	}
}

func (t *TelegramClient) Enabled() bool {
	return t.cfg.BotToken != "" && t.cfg.ChatID != ""
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send posts text to the configured chat via the bot sendMessage API.
func (t *TelegramClient) Send(ctx context.Context, text string) error {
	if !t.Enabled() {
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.cfg.APIBase, t.cfg.BotToken)
	body, err := json.Marshal(sendMessageRequest{ChatID: t.cfg.ChatID, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			t.logger.Error("TELEGRAM", fmt.Sprintf("Failed to close response body: %v", err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status: %d", resp.StatusCode)
	}
	return nil
}
