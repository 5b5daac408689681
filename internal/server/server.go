package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/catalystkit/docsession/pkg/sessionstore"
)

type ServerOptions struct {
	Port    int
	Store   *sessionstore.Store
	Backend sessionstore.Backend
}

// Server is the sweeper daemon's admin surface: a health check against
// the session backend and a manual sweep trigger.
type Server struct {
	Options    *ServerOptions
	Engine     *gin.Engine
	HttpServer *http.Server
}

func NewServer(options *ServerOptions) *Server {

	engine := gin.New()

	s := &Server{
		Options: options,
		Engine:  engine,
	}

	engine.GET("/health", func(c *gin.Context) {
		if err := options.Backend.Ping(c.Request.Context()); err != nil {
			log.Error().Err(err).Msg("session backend unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	engine.POST("/sweep", func(c *gin.Context) {
		log.Debug().Msg("manual sweep requested")
		if err := options.Store.SweepExpired(c.Request.Context()); err != nil {
			log.Error().Err(err).Msg("manual sweep failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"status": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "swept",
		})
	})

	s.HttpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.Options.Port),
		Handler: engine,
	}

	return s
}

func (s *Server) Run() error {
	return s.HttpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.HttpServer.Shutdown(ctx)
}
