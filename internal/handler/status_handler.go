package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusHandler answers the portal's plain status probe.
type StatusHandler struct{}

// NewStatusHandler constructs StatusHandler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{}
}

// Status godoc
// @Summary Service status
// @Tags Status
// @Produce plain
// @Success 200 {string} string "OK"
// @Router /status [get]
func (h *StatusHandler) Status(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
