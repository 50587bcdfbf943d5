package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UnmatchedRoute labels requests that hit no registered route, so unknown
// paths cannot grow the label set.
const UnmatchedRoute = "unmatched"

// quietRoutes are polled by monitors and only logged at trace.
var quietRoutes = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// HTTPObserver logs every request and records it in the http collectors.
// 5xx log at error, 4xx at warn, the rest at debug.
func HTTPObserver(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		route := routeLabel(c)
		RecordHTTPRequest(c.Request.Method, route, status, elapsed)

		requestEvent(logger, route, status).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", elapsed).
			Str("client_ip", c.ClientIP()).
			Msg("status_http_request")
	}
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return UnmatchedRoute
}

func requestEvent(logger zerolog.Logger, route string, status int) *zerolog.Event {
	switch {
	case status >= 500:
		return logger.Error()
	case status >= 400:
		return logger.Warn()
	}
	if _, ok := quietRoutes[route]; ok {
		return logger.Trace()
	}
	return logger.Debug()
}
