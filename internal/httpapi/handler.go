package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"macro-signal/internal/indicator"
	"macro-signal/internal/service"
)

// Pipeline is the part of the service the HTTP layer calls.
type Pipeline interface {
	Signal(ctx context.Context, period indicator.Period) (*service.SignalReport, error)
	RealEstate(ctx context.Context, period indicator.Period) (*service.RealEstateReport, error)
}

type periodQuery struct {
	Period string `query:"period"`
}

// Handler serves the classification endpoints.
type Handler struct {
	pipeline      Pipeline
	defaultPeriod indicator.Period
	logger        zerolog.Logger
}

// NewHandler wires the pipeline into HTTP handlers. Requests without a
// usable period get defaultPeriod, or 1y when that is not a known window.
func NewHandler(p Pipeline, defaultPeriod indicator.Period, logger zerolog.Logger) *Handler {
	return &Handler{
		pipeline:      p,
		defaultPeriod: indicator.ParsePeriod(string(defaultPeriod)),
		logger:        logger.With().Str("component", "http_handler").Logger(),
	}
}

// RegisterRoutes mounts the endpoints both at the root and under /api.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	for _, g := range []*echo.Group{e.Group(""), e.Group("/api")} {
		g.GET("/signal", h.Signal)
		g.GET("/realestate", h.RealEstate)
	}
}

// Health reports liveness.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Signal handles GET /signal.
func (h *Handler) Signal(c echo.Context) error {
	period := h.period(c)
	rep, err := h.pipeline.Signal(c.Request().Context(), period)
	if err != nil {
		return h.fail(c, "signal", err)
	}
	return c.JSON(http.StatusOK, rep)
}

// RealEstate handles GET /realestate.
func (h *Handler) RealEstate(c echo.Context) error {
	period := h.period(c)
	rep, err := h.pipeline.RealEstate(c.Request().Context(), period)
	if err != nil {
		return h.fail(c, "realestate", err)
	}
	return c.JSON(http.StatusOK, rep)
}

// period never rejects a request: anything unparseable becomes the default.
func (h *Handler) period(c echo.Context) indicator.Period {
	q := &periodQuery{}
	if err := c.Bind(q); err != nil {
		h.logger.Debug().Err(err).Msg("query bind failed; using default period")
		return h.defaultPeriod
	}
	if p, ok := indicator.LookupPeriod(q.Period); ok {
		return p
	}
	return h.defaultPeriod
}

func (h *Handler) fail(c echo.Context, endpoint string, err error) error {
	h.logger.Error().Err(err).Str("endpoint", endpoint).Str("request_id", requestIDOf(c)).Msg("pipeline failed")
	return c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
}
