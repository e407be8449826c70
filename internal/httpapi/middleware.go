package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const requestIDKey = "request_id"

// requestRecorder is satisfied by *metrics.Recorder.
type requestRecorder interface {
	ObserveRequest(route, method, status string, elapsed time.Duration)
}

// requestID reuses an inbound X-Request-ID or mints a new one.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(requestIDKey, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

// recoverJSON turns a handler panic into a 500 with an {error} body.
func recoverJSON(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					perr, ok := r.(error)
					if !ok {
						perr = fmt.Errorf("%v", r)
					}
					logger.Error().
						Err(perr).
						Str("request_id", requestIDOf(c)).
						Bytes("stack", debug.Stack()).
						Msg("handler panic")
					err = c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
				}
			}()
			return next(c)
		}
	}
}

// requestLogging logs one line per request and feeds the request metrics.
func requestLogging(logger zerolog.Logger, rec requestRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			elapsed := time.Since(start)

			req := c.Request()
			status := c.Response().Status
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			if rec != nil {
				rec.ObserveRequest(route, req.Method, strconv.Itoa(status), elapsed)
			}

			evt := logger.Info()
			if status >= http.StatusInternalServerError {
				evt = logger.Error()
			}
			evt.Str("request_id", requestIDOf(c)).
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("route", route).
				Int("status", status).
				Dur("latency", elapsed).
				Msg("http request")
			return nil
		}
	}
}

func requestIDOf(c echo.Context) string {
	if id, ok := c.Get(requestIDKey).(string); ok {
		return id
	}
	return ""
}

type errorBody struct {
	Error string `json:"error"`
}

// errorHandler renders every error as {error} JSON.
func errorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			msg = fmt.Sprint(he.Message)
		}
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("request_id", requestIDOf(c)).Msg("request failed")
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, errorBody{Error: msg})
	}
}
