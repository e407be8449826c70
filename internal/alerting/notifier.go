package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Line is one family's result inside a digest.
type Line struct {
	Family         string
	Label          string
	Level          string
	Color          string
	CompositeScore int
	Recommendation string
	Summary        string
}

// Digest 封装一次定时推送的内容。
type Digest struct {
	Bucket time.Time
	Period string
	AsOf   string
	Lines  []Line
}

// Notifier 定义推送接口。
type Notifier interface {
	Notify(ctx context.Context, digest Digest) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 推送器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "digest_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, digest Digest) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    RenderDigest(digest),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil && !result.OK {
		return fmt.Errorf("telegram 返回 ok=false: %s", result.Description)
	}

	n.logger.Info().Time("bucket", digest.Bucket).
		Int("families", len(digest.Lines)).
		Msg("digest sent (telegram)")
	return nil
}

// LogNotifier writes the digest to the logger instead of a chat.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier is used when no push channel is configured.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "digest_log").Logger()}
}

// Notify logs one line per family.
func (n *LogNotifier) Notify(_ context.Context, digest Digest) error {
	for _, l := range digest.Lines {
		n.logger.Info().
			Time("bucket", digest.Bucket).
			Str("period", digest.Period).
			Str("as_of", digest.AsOf).
			Str("family", l.Family).
			Str("regime", l.Level).
			Int("composite", l.CompositeScore).
			Msg(l.Label)
	}
	return nil
}

var colorMarks = map[string]string{
	"red":    "🔴",
	"orange": "🟠",
	"yellow": "🟡",
	"green":  "🟢",
	"blue":   "🔵",
	"gray":   "⚪",
}

// RenderDigest formats the plain-text message body.
func RenderDigest(d Digest) string {
	var b strings.Builder
	b.WriteString("[Macro Signal Digest]\n")
	fmt.Fprintf(&b, "Bucket: %s UTC\n", d.Bucket.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Period: %s, as of %s\n", d.Period, d.AsOf)
	for _, l := range d.Lines {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s %s: %s (score %d)\n", colorMarks[l.Color], l.Family, l.Label, l.CompositeScore)
		if l.Summary != "" {
			fmt.Fprintf(&b, "%s\n", l.Summary)
		}
		if l.Recommendation != "" {
			fmt.Fprintf(&b, "→ %s\n", l.Recommendation)
		}
	}
	return b.String()
}

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
