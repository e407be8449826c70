package fetcher

import (
	"context"
	"time"

	"macro-signal/internal/indicator"
	"macro-signal/internal/series"
)

// SeriesFetcher retrieves one monthly statistic up to and including end.
// Implementations fail soft: every failure yields an empty, non-nil Series.
type SeriesFetcher interface {
	Fetch(ctx context.Context, def indicator.Definition, end series.PeriodKey) series.Series
}

// Recorder receives one observation per fetch attempt.
type Recorder interface {
	ObserveFetch(statCode, outcome string, elapsed time.Duration)
}

// Fetch outcomes, also used as metric labels.
const (
	OutcomeOK             = "ok"
	OutcomeEmpty          = "empty"
	OutcomeNoKey          = "no_key"
	OutcomeTransportError = "transport_error"
	OutcomeHTTPError      = "http_error"
	OutcomeDecodeError    = "decode_error"
	OutcomeProviderError  = "provider_error"
)
