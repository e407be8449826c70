package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func sampleDigest() Digest {
	return Digest{
		Bucket: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Period: "1y",
		AsOf:   "202403",
		Lines: []Line{
			{Family: "economic", Label: "Optimal Expansion", Level: "optimal_expansion", Color: "green", CompositeScore: 100, Recommendation: "Increase equity exposure."},
			{Family: "real_estate", Label: "Contraction", Level: "contraction", Color: "blue", CompositeScore: 35, Summary: "rate 3.50%, sale -1.00% -> Contraction"},
		},
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/bottoken/sendMessage") {
			t.Errorf("路径应包含 sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	if !strings.Contains(received["text"], "Optimal Expansion (score 100)") {
		t.Fatalf("text 内容不正确: %q", received["text"])
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), sampleDigest()); err == nil {
		t.Fatal("ok=false 应报错")
	}
}

func TestTelegramNotifierHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), sampleDigest()); err == nil {
		t.Fatal("非 2xx 应报错")
	}
}

func TestRenderDigest(t *testing.T) {
	text := RenderDigest(sampleDigest())
	for _, want := range []string{
		"Period: 1y, as of 202403",
		"🟢 economic: Optimal Expansion (score 100)",
		"→ Increase equity exposure.",
		"🔵 real_estate: Contraction (score 35)",
		"rate 3.50%, sale -1.00% -> Contraction",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("摘要缺少 %q:\n%s", want, text)
		}
	}
}

func TestLogNotifier(t *testing.T) {
	var buf strings.Builder
	n := NewLogNotifier(zerolog.New(&buf))
	if err := n.Notify(context.Background(), sampleDigest()); err != nil {
		t.Fatalf("LogNotifier 应成功: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 2 || !strings.Contains(buf.String(), `"level":"info"`) {
		t.Fatalf("日志输出不正确: %q", buf.String())
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
