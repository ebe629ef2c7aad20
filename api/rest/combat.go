// Package rest is the HTTP surface of the combat server.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tilecombat/cache"
	"github.com/kasuganosora/tilecombat/game/combat"
	"github.com/kasuganosora/tilecombat/game/sim"
	mw "github.com/kasuganosora/tilecombat/middleware"
	"github.com/kasuganosora/tilecombat/model"
	"go.uber.org/zap"
)

const commandTimeout = 5 * time.Second

// Commander is the simulation as the HTTP layer sees it.
type Commander interface {
	Submit(ctx context.Context, cmd sim.Command) (sim.Result, error)
	Latest() sim.Snapshot
}

// History reads the combat journal.
type History interface {
	Recent(ctx context.Context, limit int) ([]model.CombatRecord, error)
	Kills(ctx context.Context, session string) ([]model.CombatKill, error)
}

// CombatHandler serves the combat REST endpoints.
type CombatHandler struct {
	host    Commander
	cache   cache.Cache
	history History
	logger  *zap.Logger
}

// NewCombatHandler creates a CombatHandler. c and history may be nil.
func NewCombatHandler(host Commander, c cache.Cache, history History, logger *zap.Logger) *CombatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CombatHandler{host: host, cache: c, history: history, logger: logger}
}

// Health reports liveness and the last simulation tick.
// GET /health
func (h *CombatHandler) Health(c *gin.Context) {
	s := h.host.Latest()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tick": s.Tick, "in_progress": s.InProgress})
}

// Snapshot returns the last published snapshot, from the cache when it
// holds one.
// GET /api/combat
func (h *CombatHandler) Snapshot(c *gin.Context) {
	if h.cache != nil {
		raw, err := h.cache.Get(c.Request.Context(), cache.SnapshotKey)
		switch {
		case err == nil:
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(raw))
			return
		case !cache.IsNotFound(err):
			h.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, h.host.Latest())
}

// Visible lists what a character sees.
// GET /api/combat/visible/:id
func (h *CombatHandler) Visible(c *gin.Context) {
	h.submit(c, sim.Command{Kind: sim.CmdVisible, Character: c.Param("id")})
}

// Start begins combat on the current map.
// POST /api/combat/start
func (h *CombatHandler) Start(c *gin.Context) { h.submit(c, sim.Command{Kind: sim.CmdStartCombat}) }

// End leaves combat when no enemy is left to fight.
// POST /api/combat/end
func (h *CombatHandler) End(c *gin.Context) { h.submit(c, sim.Command{Kind: sim.CmdEndCombat}) }

// EndTurn hands the turn to the computer side.
// POST /api/combat/end-turn
func (h *CombatHandler) EndTurn(c *gin.Context) { h.submit(c, sim.Command{Kind: sim.CmdEndTurn}) }

type moveRequest struct {
	Character string `json:"character" binding:"required"`
	X         *int   `json:"x" binding:"required"`
	Y         *int   `json:"y" binding:"required"`
}

// Move walks a party member towards a tile, attacking whoever stands there.
// POST /api/combat/move {"character":"hero","x":3,"y":4}
func (h *CombatHandler) Move(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.submit(c, sim.Command{Kind: sim.CmdMove, Character: req.Character, X: *req.X, Y: *req.Y})
}

type selectRequest struct {
	Character string `json:"character" binding:"required"`
}

// Select makes one party member the only selected one.
// POST /api/combat/select {"character":"hero"}
func (h *CombatHandler) Select(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.submit(c, sim.Command{Kind: sim.CmdSelect, Character: req.Character})
}

// History lists recent journal records.
// GET /api/combat/history?limit=20
func (h *CombatHandler) History(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	recs, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("journal read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "journal read failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}

// Kills lists the kills credited in one combat.
// GET /api/combat/history/:session/kills
func (h *CombatHandler) Kills(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
		return
	}
	kills, err := h.history.Kills(c.Request.Context(), c.Param("session"))
	if err != nil {
		h.logger.Error("journal read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "journal read failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kills": kills})
}

func (h *CombatHandler) submit(c *gin.Context, cmd sim.Command) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), commandTimeout)
	defer cancel()
	cmd.ID = mw.GetTraceID(c)
	res, err := h.host.Submit(ctx, cmd)
	if err != nil {
		body := gin.H{"id": res.ID, "error": err.Error()}
		if res.Data != nil {
			body["data"] = res.Data
		}
		c.JSON(statusFor(err), body)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": res.ID, "data": res.Data})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, sim.ErrUnknownCharacter):
		return http.StatusNotFound
	case errors.Is(err, sim.ErrNotControllable):
		return http.StatusForbidden
	case errors.Is(err, combat.ErrNotInCombat),
		errors.Is(err, sim.ErrNotYourTurn),
		errors.Is(err, sim.ErrEnemiesRemain):
		return http.StatusConflict
	case errors.Is(err, sim.ErrNoPath), errors.Is(err, sim.ErrOutOfReach):
		return http.StatusUnprocessableEntity
	case errors.Is(err, sim.ErrHostStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, sim.ErrUnknownCommand):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
