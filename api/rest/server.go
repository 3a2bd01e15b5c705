package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/karasuno/gridfire/server/config"
	"github.com/karasuno/gridfire/server/game/world"
	"github.com/karasuno/gridfire/server/middleware"
	"github.com/karasuno/gridfire/server/resource"
)

// Server exposes the debug and tuning API over the running arena. The game
// itself talks to the engine in-process; this surface exists for level
// designers and integration tests.
type Server struct {
	cfg     *config.Config
	arena   *world.Arena
	spawner *world.Spawner
	loader  *resource.Loader
	logger  *zap.Logger
	started time.Time
}

// NewServer wires the debug API over an arena.
func NewServer(cfg *config.Config, arena *world.Arena, spawner *world.Spawner, loader *resource.Loader, logger *zap.Logger) *Server {
	return &Server{
		cfg:     cfg,
		arena:   arena,
		spawner: spawner,
		loader:  loader,
		logger:  logger,
		started: time.Now(),
	}
}

// Router builds the gin engine with the full middleware chain.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.TraceID(),
		middleware.RequestLog(s.logger),
		middleware.Recovery(s.logger),
		middleware.RateLimit(rate.Limit(s.cfg.Security.RateLimitRPS), s.cfg.Security.RateLimitBurst),
	)

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/status", s.handleStatus)
		api.GET("/agents", s.handleAgents)
		api.GET("/grid", s.handleGrid)
		api.GET("/fires", s.handleFires)
	}

	admin := api.Group("/admin", middleware.AdminAuth(s.cfg.Server.AdminKey))
	{
		admin.POST("/player/position", s.handleSetPlayer)
		admin.POST("/props/:id/destroy", s.handleDestroyProp)
		admin.DELETE("/agents/:id", s.handleKillAgent)
	}

	return r
}
