// Package api provides the HTTP admin and invocation API of the mcpbridge server.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/mcpbridge/mcpbridge/internal/service/audit"
	"github.com/mcpbridge/mcpbridge/internal/service/executor"
	"github.com/mcpbridge/mcpbridge/internal/service/registry"
	"github.com/mcpbridge/mcpbridge/internal/telemetry"
	"github.com/mcpbridge/mcpbridge/pkg/types"
	"github.com/mcpbridge/mcpbridge/pkg/version"
)

const (
	V0PathPrefix    = "/v0"
	V0ApiPathPrefix = "/api" + V0PathPrefix
)

type ServerOptions struct {
	// Port is the HTTP port to bind the server to
	Port string

	Tools     *registry.ToolRegistry
	Providers *registry.ProviderRegistry
	Engine    *executor.Engine
	Audit     *audit.Service

	OtelProviders *telemetry.Providers
	Metrics       telemetry.CustomMetrics

	// SlackWebhook, when set, is mounted on POST /slack/events.
	SlackWebhook http.Handler

	Logger *zap.Logger
}

// Server is the mcpbridge HTTP server handling admin and invocation requests.
type Server struct {
	port   string
	router *gin.Engine

	tools     *registry.ToolRegistry
	providers *registry.ProviderRegistry
	engine    *executor.Engine
	audit     *audit.Service

	otelProviders *telemetry.Providers
	metrics       telemetry.CustomMetrics

	slackWebhook http.Handler

	logger *zap.Logger
}

// NewServer initializes a new Gin server for the mcpbridge API.
func NewServer(opts *ServerOptions) (*Server, error) {
	s := &Server{
		port:          opts.Port,
		tools:         opts.Tools,
		providers:     opts.Providers,
		engine:        opts.Engine,
		audit:         opts.Audit,
		otelProviders: opts.OtelProviders,
		metrics:       opts.Metrics,
		slackWebhook:  opts.SlackWebhook,
		logger:        opts.Logger,
	}
	if s.metrics == nil {
		s.metrics = telemetry.NewNoopCustomMetrics()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	// Set up the router after the server is fully initialized
	s.router = s.setupRouter()

	return s, nil
}

// Start runs the Gin server (blocking call)
func (s *Server) Start() error {
	if err := s.router.Run(":" + s.port); err != nil {
		return fmt.Errorf("failed to run the server: %w", err)
	}
	return nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// if otel is enabled, setup prometheus metrics endpoint
	if s.otelProviders != nil && s.otelProviders.IsEnabled() {
		r.Use(otelgin.Middleware(s.otelProviders.ServiceName()))
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET(
		"/health",
		func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		},
	)

	r.GET(
		"/metadata",
		func(c *gin.Context) {
			m := &types.ServerMetadata{
				Version: version.GetVersion(),
			}
			c.JSON(http.StatusOK, m)
		},
	)

	if s.slackWebhook != nil {
		r.POST("/slack/events", gin.WrapH(s.slackWebhook))
	}

	apiV0 := r.Group(V0ApiPathPrefix)
	{
		apiV0.POST("/providers", s.registerProviderHandler())
		apiV0.GET("/providers", s.listProvidersHandler())
		apiV0.GET("/providers/:id", s.getProviderHandler())
		apiV0.PATCH("/providers/:id", s.updateProviderHandler())
		apiV0.DELETE("/providers/:id", s.deregisterProviderHandler())
		apiV0.POST("/providers/:id/discover", s.discoverProviderHandler())

		apiV0.POST("/tools", s.registerToolHandler())
		apiV0.GET("/tools", s.listToolsHandler())
		apiV0.GET("/tools/:id", s.getToolHandler())
		apiV0.PATCH("/tools/:id", s.updateToolHandler())
		apiV0.DELETE("/tools/:id", s.deregisterToolHandler())
		apiV0.POST("/tools/:id/enable", s.setToolEnabledHandler(true))
		apiV0.POST("/tools/:id/disable", s.setToolEnabledHandler(false))
		apiV0.POST("/tools/invoke", s.invokeToolHandler())

		apiV0.GET("/channels/:id/tools", s.listChannelToolsHandler())

		apiV0.GET("/stats", s.usageStatsHandler())
	}

	return r
}
