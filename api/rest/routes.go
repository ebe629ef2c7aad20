package rest

import (
	"github.com/gin-gonic/gin"
)

// Register mounts the combat routes on r. Command routes go through
// limit; reads do not.
func (h *CombatHandler) Register(r gin.IRouter, limit gin.HandlerFunc) {
	r.GET("/health", h.Health)

	api := r.Group("/api/combat")
	api.GET("", h.Snapshot)
	api.GET("/visible/:id", h.Visible)
	api.GET("/history", h.History)
	api.GET("/history/:session/kills", h.Kills)

	cmds := api.Group("")
	if limit != nil {
		cmds.Use(limit)
	}
	cmds.POST("/start", h.Start)
	cmds.POST("/end", h.End)
	cmds.POST("/end-turn", h.EndTurn)
	cmds.POST("/move", h.Move)
	cmds.POST("/select", h.Select)
}
