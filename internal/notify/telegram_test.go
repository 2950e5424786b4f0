package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ms-topup/internal/config"
	"ms-topup/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	var gotPath string
	var gotBody sendMessageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewTelegramClient(config.TelegramConfig{
		BotToken: "bot-token",
		ChatID:   "chat-42",
		APIBase:  server.URL,
	}, logger.NewLogger())

	require.True(t, client.Enabled())
	require.NoError(t, client.Send(context.Background(), "📣 Order Update"))

	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "chat-42", gotBody.ChatID)
	assert.Equal(t, "📣 Order Update", gotBody.Text)
}

func TestTelegramSendRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewTelegramClient(config.TelegramConfig{
		BotToken: "bot-token",
		ChatID:   "chat-42",
		APIBase:  server.URL,
	}, logger.NewLogger())

	err := client.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestTelegramDisabledWithoutConfig(t *testing.T) {
	client := NewTelegramClient(config.TelegramConfig{APIBase: "https://api.telegram.org"}, logger.NewLogger())

	assert.False(t, client.Enabled())
	assert.NoError(t, client.Send(context.Background(), "ignored"))
}
