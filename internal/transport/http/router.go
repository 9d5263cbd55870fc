package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"paperdesk/internal/broadcast"
	"paperdesk/internal/engine"
	"paperdesk/internal/portfolio"
)

type Router struct {
	engine *engine.Engine
	hub    *broadcast.Hub
}

func NewRouter(eng *engine.Engine, hub *broadcast.Hub) *Router {
	return &Router{engine: eng, hub: hub}
}

func (r *Router) Register(g *gin.RouterGroup) {
	g.GET("/instruments", r.listInstruments)
	g.GET("/history/:symbol", r.getHistory)
	g.POST("/orders", r.submitOrder)
	g.GET("/portfolio", r.getPortfolio)
	g.POST("/tick", r.advanceTick)
	g.GET("/stream", r.streamEvents)
}

func (r *Router) listInstruments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instruments": r.engine.Instruments()})
}

func (r *Router) getHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	lookback := 0
	if raw := c.Query("lookback"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lookback must be a non-negative integer"})
			return
		}
		lookback = n
	}
	candles, err := r.engine.History(c.Request.Context(), symbol, lookback)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "candles": candles})
}

type orderRequest struct {
	Symbol   string  `json:"symbol" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

func (r *Router) submitOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	trade, err := r.engine.SubmitOrder(c.Request.Context(), req.Symbol, req.Quantity)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func (r *Router) getPortfolio(c *gin.Context) {
	c.JSON(http.StatusOK, r.engine.Snapshot())
}

func (r *Router) advanceTick(c *gin.Context) {
	if err := r.engine.Tick(c.Request.Context()); err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "advanced"})
}

func writeEngineError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, portfolio.ErrInsufficientFunds),
		errors.Is(err, portfolio.ErrInsufficientPosition),
		errors.Is(err, portfolio.ErrInvalidOrder):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
