package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medrec/medrec/internal/platform/auth"
)

// Logger writes one structured line per request. Health probes are not
// logged. When the request carried a verified token, the actor's type and
// id are attached so log lines can be correlated with audit_log rows
// without repeating emails or names.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Path() == "/health" {
				return next(c)
			}

			start := time.Now()

			err := next(c)

			evt := logger.Info()
			if err != nil {
				evt = logger.Warn().Err(err)
			}

			// Re-read the request after the handler ran: auth middleware
			// swaps in a context carrying the caller identity.
			req := c.Request()
			res := c.Response()

			evt = evt.
				Str("request_id", res.Header().Get(requestIDHeader)).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP())

			if id := auth.IdentityFromContext(req.Context()); id != nil {
				evt = evt.Str("actor_type", string(id.UserType)).Str("actor_id", id.ID)
			}

			evt.Msg("request")
			return err
		}
	}
}
