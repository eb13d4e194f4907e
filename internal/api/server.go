// Package api exposes the terminal's control surface: a JSON HTTP API
// plus a websocket event stream for passive observers.
package api

import (
	"context"
	"net/http"
	"time"

	"trading-terminal/internal/bot"
	"trading-terminal/internal/events"
	"trading-terminal/pkg/config"
	"trading-terminal/pkg/db"

	"github.com/gin-gonic/gin"
)

// Controller is the slice of the execution engine the API drives.
type Controller interface {
	Start(ctx context.Context) bool
	Stop() bool
	Status() bot.Status
	SetLeverage(ctx context.Context, leverage int) error
	SetQuantity(usd float64) error
	SetRiskMode(mode config.RiskMode, roiPercent float64) error
	SetStrategy(name config.StrategyName) error
	UpdateSymbol(ctx context.Context, mode, value string) (string, error)
	ManualTrade(ctx context.Context, side string) error
	EmergencyClose(ctx context.Context) error
}

// Server wires HTTP endpoints around the engine and the event bus.
type Server struct {
	Router *gin.Engine

	// baseCtx outlives any single request; trade commands accepted by
	// a handler keep running against it after the response is written.
	baseCtx context.Context

	bus   *events.Bus
	store *db.Database
	bot   Controller

	jwtSecret string
	username  string
	password  string
}

func NewServer(baseCtx context.Context, bus *events.Bus, store *db.Database, ctrl Controller, cfg *config.Config) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger())
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(CORSMiddleware())

	s := &Server{
		Router:    r,
		baseCtx:   baseCtx,
		bus:       bus,
		store:     store,
		bot:       ctrl,
		jwtSecret: cfg.JWTSecret,
		username:  cfg.AppUsername,
		password:  cfg.AppPassword,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.POST("/auth/login", s.login)

		protected := api.Group("")
		protected.Use(AuthMiddleware(s.jwtSecret))
		{
			protected.GET("/bot/status", s.getStatus)
			protected.POST("/bot/start", s.startBot)
			protected.POST("/bot/stop", s.stopBot)
			protected.POST("/bot/manual-trade/:side", s.manualTrade)
			protected.POST("/bot/emergency-close", s.emergencyClose)

			protected.POST("/settings/leverage", s.setLeverage)
			protected.POST("/settings/quantity", s.setQuantity)
			protected.POST("/settings/symbol", s.setSymbol)
			protected.POST("/settings/risk", s.setRiskMode)
			protected.POST("/settings/strategy", s.setStrategy)

			protected.GET("/history", s.getHistory)
			protected.GET("/stats", s.getStats)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
