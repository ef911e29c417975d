package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// getDashboard returns the engine snapshot for the user at "now" in their
// timezone: cycle, targets, weight stats, streak and today's consumption.
// GET /api/dashboard.
func (h *Handler) getDashboard(c *gin.Context) {
	userID := c.GetInt("user_id")

	snap, err := h.dashboard.Snapshot(c, userID, h.timeSource(c))
	if err != nil {
		log.Printf("[getDashboard] user %d: %v", userID, err)
		apiError(c, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, snap)
}
