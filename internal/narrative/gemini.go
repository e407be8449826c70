package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// Narrator turns a prompt into a narrative outcome. Implementations never
// return nil and never panic.
type Narrator interface {
	Narrate(ctx context.Context, prompt string) Outcome
}

// GeminiOptions parameterise the Gemini generateContent client.
type GeminiOptions struct {
	URL             string
	APIKey          string
	Temperature     float64
	Timeout         time.Duration
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Gemini calls the Google generative language API.
type Gemini struct {
	opts   GeminiOptions
	logger zerolog.Logger
	client *http.Client
}

// NewGemini constructs a Gemini narrator.
func NewGemini(opts GeminiOptions, logger zerolog.Logger) *Gemini {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.URL == "" {
		opts.URL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash-preview-09-2025:generateContent"
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	if opts.MaxInterval <= 0 {
		opts.MaxInterval = 5 * time.Second
	}

	return &Gemini{
		opts:   opts,
		logger: logger.With().Str("component", "gemini").Logger(),
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// Narrate sends the prompt and parses the reply.
func (g *Gemini) Narrate(ctx context.Context, prompt string) Outcome {
	if strings.TrimSpace(g.opts.APIKey) == "" {
		g.logger.Warn().Msg("narrative api key not configured; using static text")
		return Degraded{Reason: ReasonNoAPIKey}
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: g.opts.Temperature, ResponseMimeType: "text/plain"},
	})
	if err != nil {
		return Degraded{Reason: ReasonUnparseable}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.opts.InitialInterval
	bo.MaxInterval = g.opts.MaxInterval

	attempt := 0
	text, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		return g.call(ctx, body)
	}, backoff.WithBackOff(bo), backoff.WithMaxTries(g.opts.MaxAttempts))
	if err != nil {
		reason := ReasonTransport
		var statusErr *statusError
		switch {
		case errors.As(err, &statusErr):
			reason = ReasonHTTPStatus
		case ctx.Err() != nil:
			reason = ReasonCancelled
		}
		g.logger.Warn().Err(err).Int("attempts", attempt).Str("reason", reason).Msg("narrative request failed")
		return Degraded{Reason: reason}
	}

	out := Parse(text)
	if d, ok := out.(Degraded); ok {
		g.logger.Warn().Str("reason", d.Reason).Int("chars", len(text)).Msg("narrative reply could not be parsed")
	}
	return out
}

func (g *Gemini) call(ctx context.Context, body []byte) (string, error) {
	endpoint := g.opts.URL + "?key=" + g.opts.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &statusError{status: resp.StatusCode}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return "", statusErr
		}
		return "", backoff.Permanent(statusErr)
	}

	var res generateResponse
	if err := json.Unmarshal(payload, &res); err != nil {
		// A 200 with an undecodable envelope is handed to Parse as-is.
		return string(payload), nil
	}
	return res.text(), nil
}

type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("gemini http status %d", e.status)
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	Data string `json:"data"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 || len(r.Candidates[0].Content.Parts) == 0 {
		return ""
	}
	p := r.Candidates[0].Content.Parts[0]
	if p.Text != "" {
		return p.Text
	}
	if p.InlineData != nil {
		return p.InlineData.Data
	}
	return ""
}

// Static always degrades; used when narration is disabled.
type Static struct{}

// Narrate implements Narrator.
func (Static) Narrate(context.Context, string) Outcome {
	return Degraded{Reason: ReasonDisabled}
}

var (
	_ Narrator = (*Gemini)(nil)
	_ Narrator = Static{}
)
