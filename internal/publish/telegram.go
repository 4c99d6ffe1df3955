package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"StockTrend/internal/collector"
)

const (
	telegramAPI = "https://api.telegram.org"
	// MaxMessageLen is the Bot API limit on one message's text.
	MaxMessageLen = 4096
)

// TelegramNotifier posts run summaries to one chat through the Bot API.
type TelegramNotifier struct {
	BaseURL  string
	BotToken string
	ChatID   string
	Client   *http.Client
}

func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	return &TelegramNotifier{
		BaseURL:  telegramAPI,
		BotToken: botToken,
		ChatID:   chatID,
		Client:   collector.NewHTTPClient(proxyURL),
	}
}

type sendMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type botReply struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// TelegramError is a request the Bot API answered with ok=false.
type TelegramError struct {
	Status      int
	Description string
}

func (e *TelegramError) Error() string {
	return fmt.Sprintf("telegram: status %d: %s", e.Status, e.Description)
}

// Send posts text as HTML. Text longer than MaxMessageLen goes out as several
// messages split on line boundaries; the first failure stops the rest.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	for i, part := range splitMessage(text, MaxMessageLen) {
		if err := t.post(ctx, part); err != nil {
			return fmt.Errorf("send part %d: %w", i+1, err)
		}
	}
	return nil
}

func (t *TelegramNotifier) post(ctx context.Context, text string) error {
	body, err := json.Marshal(sendMessage{
		ChatID:                t.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return err
	}
	endpoint := t.BaseURL + "/bot" + t.BotToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reply botReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &TelegramError{Status: resp.StatusCode, Description: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decode reply: %w", err)
	}
	if !reply.OK || resp.StatusCode != http.StatusOK {
		return &TelegramError{Status: resp.StatusCode, Description: reply.Description}
	}
	return nil
}

// splitMessage cuts text into chunks of at most limit bytes, preferring to cut
// after a newline. A single line longer than limit is cut mid-line.
func splitMessage(text string, limit int) []string {
	var parts []string
	for len(text) > limit {
		cut := strings.LastIndexByte(text[:limit], '\n') + 1
		if cut <= 0 {
			cut = limit
			for cut > 1 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		parts = append(parts, text[:cut])
		text = text[cut:]
	}
	if text != "" || len(parts) == 0 {
		parts = append(parts, text)
	}
	return parts
}
