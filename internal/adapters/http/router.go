package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Mailbox accepts peer connections on the mailbox route.
type Mailbox interface {
	HandleUpgrade(c *gin.Context)
}

const snapshotTimeout = 2 * time.Second

// SetupRouter wires the HTTP routes of a process.
// - the mailbox WebSocket lives at transport.MailboxPath
// - GET /healthz is a liveness check
// - GET /api/directory is mounted only when dir is not nil
func SetupRouter(mode string, mailbox Mailbox, dir core.DirectoryReader) *gin.Engine {
	if mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET(transport.MailboxPath, mailbox.HandleUpgrade)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if dir != nil {
		api := r.Group("/api")
		api.GET("/directory", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), snapshotTimeout)
			defer cancel()
			d, err := dir.Snapshot(ctx)
			if err != nil {
				log.Error().Err(err).Str("module", "adapters.http").Msg("directory snapshot")
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, d)
		})
	}

	log.Info().Str("module", "adapters.http").Str("mode", mode).Bool("directory", dir != nil).Msg("router setup")
	return r
}
