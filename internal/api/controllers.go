package api

import (
	"log"
	"net/http"
	"strconv"

	"trading-terminal/pkg/config"

	"github.com/gin-gonic/gin"
)

type leverageRequest struct {
	Leverage int `json:"leverage" binding:"required"`
}

type quantityRequest struct {
	QuantityUSD float64 `json:"quantity_usd" binding:"required,gt=0"`
}

type symbolRequest struct {
	Mode   string `json:"mode" binding:"required,oneof=manual auto"`
	Symbol string `json:"symbol"`
}

type riskRequest struct {
	Mode       string  `json:"mode" binding:"required,oneof=atr fixed_roi"`
	ROIPercent float64 `json:"roi_percent"`
}

type strategyRequest struct {
	Name string `json:"name" binding:"required,min=1"`
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.bot.Status())
}

func (s *Server) startBot(c *gin.Context) {
	started := s.bot.Start(s.baseCtx)
	c.JSON(http.StatusOK, gin.H{
		"started": started,
		"state":   s.bot.Status().State,
	})
}

func (s *Server) stopBot(c *gin.Context) {
	stopped := s.bot.Stop()
	c.JSON(http.StatusOK, gin.H{
		"stopping": stopped,
		"state":    s.bot.Status().State,
	})
}

// manualTrade accepts the command and runs the entry in the background:
// order placement takes several exchange round-trips and the outcome is
// broadcast on the event stream either way.
func (s *Server) manualTrade(c *gin.Context) {
	side := c.Param("side")

	go func() {
		if err := s.bot.ManualTrade(s.baseCtx, side); err != nil {
			log.Printf("[API] manual trade %s failed: %v", side, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"accepted": true, "side": side})
}

func (s *Server) emergencyClose(c *gin.Context) {
	go func() {
		if err := s.bot.EmergencyClose(s.baseCtx); err != nil {
			log.Printf("[API] emergency close failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

func (s *Server) setLeverage(c *gin.Context) {
	var req leverageRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	if err := s.bot.SetLeverage(c.Request.Context(), req.Leverage); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"leverage": req.Leverage})
}

func (s *Server) setQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	if err := s.bot.SetQuantity(req.QuantityUSD); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"quantity_usd": req.QuantityUSD})
}

func (s *Server) setSymbol(c *gin.Context) {
	var req symbolRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	symbol, err := s.bot.UpdateSymbol(c.Request.Context(), req.Mode, req.Symbol)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "mode": req.Mode})
}

func (s *Server) setRiskMode(c *gin.Context) {
	var req riskRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	if err := s.bot.SetRiskMode(config.RiskMode(req.Mode), req.ROIPercent); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": req.Mode, "roi_percent": req.ROIPercent})
}

func (s *Server) setStrategy(c *gin.Context) {
	var req strategyRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "invalid request payload")
		return
	}
	if err := s.bot.SetStrategy(config.StrategyName(req.Name)); err != nil {
		badRequest(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategy": req.Name})
}

func (s *Server) getHistory(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	trades, err := s.store.ListTrades(c.Request.Context(), limit)
	if err != nil {
		log.Printf("[API] list trades: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load trade history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

func (s *Server) getStats(c *gin.Context) {
	stats, err := s.store.AggregateStats(c.Request.Context())
	if err != nil {
		log.Printf("[API] aggregate stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not compute stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
