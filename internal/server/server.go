// Package server exposes the codec over HTTP: schema listing, and decode or
// round-trip of posted wire payloads against a named schema.
package server

import (
	"time"

	"github.com/danmuck/docwire/internal/config"
	"github.com/danmuck/docwire/internal/docproto"
	"github.com/danmuck/docwire/internal/observability"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const Version = "0.1.0"

type Server struct {
	Addr     string
	Appeared time.Time
	Registry *schema.Registry

	opts            []docproto.Option
	maxPayloadBytes int64
	router          *gin.Engine
}

// Appear builds a server for cfg with its middleware stack installed. Routes
// are added by RegisterRoutes.
func Appear(cfg config.Config, registry *schema.Registry) *Server {
	observability.RegisterMetrics()
	if registry == nil {
		registry = schema.Builtin()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Logger))
	r.Use(RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.Server.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		Addr:            cfg.Server.Addr,
		Appeared:        time.Now(),
		Registry:        registry,
		opts:            cfg.CodecOptions(),
		maxPayloadBytes: int64(cfg.Frame.MaxPayloadBytes),
		router:          r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	s.RegisterRoutes()
	log.Info().Str("addr", s.Addr).Strs("schemas", s.Registry.Names()).Msg("docwire server listening")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
