package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/evlctl/internal/auth"
	"github.com/danmuck/evlctl/internal/tpi"
)

const version = "0.1.0"

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": "evlctl",
			"version": version,
		})
	})

	// Everything but /health needs the token when one is configured.
	routes := s.router.Group("/")
	if s.cfg.Token != "" {
		routes.Use(auth.Require(auth.StaticToken{Token: s.cfg.Token}))
	}

	routes.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.tracker.Snapshot())
	})

	routes.GET("/events", func(c *gin.Context) {
		limit := 0
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			limit = n
		}
		c.JSON(http.StatusOK, gin.H{"events": s.tracker.Events(limit)})
	})

	routes.GET("/commands/:command", func(c *gin.Context) {
		cmd := tpi.Command(c.Param("command"))
		ev, ok := s.tracker.LastSeen(cmd)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "command not seen recently", "command": cmd})
			return
		}
		c.JSON(http.StatusOK, ev)
	})

	routes.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
