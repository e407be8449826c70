package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"macro-signal/internal/indicator"
	"macro-signal/internal/series"
)

const (
	ecosSuccessCode = "INFO-000"
	ecosNoDataCode  = "INFO-200"
)

// EcosOptions parameterise the ECOS statistic search client.
type EcosOptions struct {
	BaseURL     string
	APIKey      string
	Format      string
	Lang        string
	PageStart   int
	PageEnd     int
	StartPeriod series.PeriodKey
	Timeout     time.Duration
	UserAgent   string
}

// Ecos fetches monthly statistics from the Bank of Korea ECOS API.
type Ecos struct {
	opts     EcosOptions
	logger   zerolog.Logger
	client   *http.Client
	recorder Recorder
}

// NewEcos constructs an ECOS fetcher. recorder may be nil.
func NewEcos(opts EcosOptions, logger zerolog.Logger, recorder Recorder) *Ecos {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.BaseURL == "" {
		opts.BaseURL = "https://ecos.bok.or.kr/api/StatisticSearch"
	}
	if opts.Format == "" {
		opts.Format = "json"
	}
	if opts.Lang == "" {
		opts.Lang = "kr"
	}
	if opts.PageStart <= 0 {
		opts.PageStart = 1
	}
	if opts.PageEnd < opts.PageStart {
		opts.PageEnd = 1000
	}
	if opts.StartPeriod == "" {
		opts.StartPeriod = "201001"
	}

	return &Ecos{
		opts:     opts,
		logger:   logger.With().Str("component", "ecos_fetcher").Logger(),
		client:   &http.Client{Timeout: opts.Timeout},
		recorder: recorder,
	}
}

// Fetch retrieves def from the configured start period up to end.
func (e *Ecos) Fetch(ctx context.Context, def indicator.Definition, end series.PeriodKey) series.Series {
	start := time.Now()
	out, outcome, err := e.fetch(ctx, def, end)
	elapsed := time.Since(start)

	if e.recorder != nil {
		e.recorder.ObserveFetch(def.StatCode, outcome, elapsed)
	}

	log := e.logger.With().
		Str("indicator", def.Name).
		Str("stat_code", def.StatCode).
		Str("item_code", strings.Join(def.ItemCodes, "/")).
		Str("outcome", outcome).
		Dur("elapsed", elapsed).
		Logger()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("statistic fetch degraded to empty series")
	case len(out) == 0:
		log.Warn().Msg("statistic returned no rows")
	default:
		log.Debug().Int("rows", len(out)).Msg("statistic fetched")
	}
	return out
}

func (e *Ecos) fetch(ctx context.Context, def indicator.Definition, end series.PeriodKey) (series.Series, string, error) {
	empty := series.Series{}
	if strings.TrimSpace(e.opts.APIKey) == "" {
		return empty, OutcomeNoKey, fmt.Errorf("ecos api key not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint(def, end), nil)
	if err != nil {
		return empty, OutcomeTransportError, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(e.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	} else {
		req.Header.Set("User-Agent", "macro-signal/1.0")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return empty, OutcomeTransportError, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, OutcomeTransportError, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return empty, OutcomeHTTPError, fmt.Errorf("ecos http status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.Unmarshal(payload, &body); err != nil {
		return empty, OutcomeDecodeError, fmt.Errorf("decode ecos response: %w", err)
	}

	if res := body.result(); res != nil && res.Code != ecosSuccessCode {
		if res.Code == ecosNoDataCode {
			return empty, OutcomeEmpty, nil
		}
		return empty, OutcomeProviderError, fmt.Errorf("ecos result %s: %s", res.Code, res.Message)
	}
	if body.StatisticSearch == nil || len(body.StatisticSearch.Rows) == 0 {
		return empty, OutcomeEmpty, nil
	}

	if total, got := body.StatisticSearch.ListTotalCount, len(body.StatisticSearch.Rows); total > got {
		e.logger.Warn().
			Str("stat_code", def.StatCode).
			Int("total", total).
			Int("returned", got).
			Msg("ecos page window truncated the series; raise ecos.page_end")
	}

	obs := make(series.Series, 0, len(body.StatisticSearch.Rows))
	dropped := 0
	for _, row := range body.StatisticSearch.Rows {
		v, ok := parseValue(row.DataValue)
		if !ok {
			dropped++
			continue
		}
		obs = append(obs, series.Observation{Time: series.PeriodKey(strings.TrimSpace(row.Time)), Value: v})
	}
	if dropped > 0 {
		e.logger.Debug().Str("stat_code", def.StatCode).Int("dropped", dropped).Msg("non-numeric rows dropped")
	}

	out := series.Normalize(obs)
	if len(out) == 0 {
		return out, OutcomeEmpty, nil
	}
	return out, OutcomeOK, nil
}

func (e *Ecos) endpoint(def indicator.Definition, end series.PeriodKey) string {
	cycle := def.Cycle
	if cycle == "" {
		cycle = "M"
	}
	parts := []string{
		e.opts.BaseURL,
		url.PathEscape(e.opts.APIKey),
		e.opts.Format,
		e.opts.Lang,
		strconv.Itoa(e.opts.PageStart),
		strconv.Itoa(e.opts.PageEnd),
		url.PathEscape(def.StatCode),
		cycle,
		string(e.opts.StartPeriod),
		string(end),
	}
	for _, item := range def.ItemCodes {
		parts = append(parts, url.PathEscape(item))
	}
	return strings.Join(parts, "/")
}

// parseValue accepts only finite decimal numbers; blanks, dashes and
// other placeholders are rejected rather than read as zero.
func parseValue(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

type searchResponse struct {
	StatisticSearch *struct {
		ListTotalCount int         `json:"list_total_count"`
		Rows           []searchRow `json:"row"`
		Result         *resultCode `json:"RESULT"`
	} `json:"StatisticSearch"`
	Result *resultCode `json:"RESULT"`
}

func (r searchResponse) result() *resultCode {
	if r.Result != nil {
		return r.Result
	}
	if r.StatisticSearch != nil {
		return r.StatisticSearch.Result
	}
	return nil
}

type searchRow struct {
	Time      string `json:"TIME"`
	DataValue string `json:"DATA_VALUE"`
}

type resultCode struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

var _ SeriesFetcher = (*Ecos)(nil)
