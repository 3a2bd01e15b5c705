package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime_s":     time.Since(s.started).Seconds(),
		"logical_time": s.arena.Now(),
		"agents":       s.arena.AgentCount(),
		"tick_ms":      s.cfg.Game.TickMs,
	})
}

func (s *Server) handleAgents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"agents": s.arena.Snapshot()})
}

func (s *Server) handleGrid(c *gin.Context) {
	c.JSON(http.StatusOK, s.arena.GridSnapshot())
}

func (s *Server) handleFires(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fires": s.arena.Fires()})
}

type setPlayerReq struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// handleSetPlayer teleports the player, mainly to script perception and
// chase scenarios from tests.
func (s *Server) handleSetPlayer(c *gin.Context) {
	var req setPlayerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.arena.SetPlayerPosition(req.X, req.Z)
	c.JSON(http.StatusOK, gin.H{"x": req.X, "z": req.Z})
}

// handleDestroyProp queues destruction of a destructible prop. The grid and
// physics updates land between frames, so the response only acknowledges
// the request.
func (s *Server) handleDestroyProp(c *gin.Context) {
	id := c.Param("id")
	s.arena.DestroyProp(id)
	c.JSON(http.StatusAccepted, gin.H{"prop": id})
}

func (s *Server) handleKillAgent(c *gin.Context) {
	id := c.Param("id")
	s.arena.RemoveAgent(id)
	if s.spawner != nil {
		s.spawner.NotifyRemoved(id)
	}
	c.JSON(http.StatusOK, gin.H{"removed": id})
}
