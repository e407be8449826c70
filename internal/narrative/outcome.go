package narrative

// Outcome is the result of one narrative request: either Success or Degraded.
type Outcome interface {
	outcome()
}

// Success carries the two extracted text fields, both non-empty.
type Success struct {
	Analysis       string
	Recommendation string
}

// Degraded records why no usable narrative was produced.
type Degraded struct {
	Reason string
}

func (Success) outcome()  {}
func (Degraded) outcome() {}

// Degradation reasons.
const (
	ReasonNoAPIKey    = "no_api_key"
	ReasonTransport   = "transport_error"
	ReasonHTTPStatus  = "http_status"
	ReasonEmptyReply  = "empty_reply"
	ReasonUnparseable = "unparseable"
	ReasonDisabled    = "disabled"
	ReasonCancelled   = "cancelled"
)

const (
	fallbackAnalysis = "AI commentary is unavailable; showing the rule-based assessment only."
	noKeyAnalysis    = "No narrative API key is configured; showing the rule-based assessment only."
)

// Label returns "success" or "degraded" for logs and metrics.
func Label(o Outcome) string {
	if _, ok := o.(Success); ok {
		return "success"
	}
	return "degraded"
}

// Resolve turns an outcome into the analysis and recommendation strings
// shown to clients. Degraded outcomes fall back to staticRecommendation.
func Resolve(o Outcome, staticRecommendation string) (analysis, recommendation string) {
	switch v := o.(type) {
	case Success:
		return v.Analysis, v.Recommendation
	case Degraded:
		if v.Reason == ReasonNoAPIKey {
			return noKeyAnalysis, staticRecommendation
		}
		return fallbackAnalysis, staticRecommendation
	default:
		return fallbackAnalysis, staticRecommendation
	}
}
