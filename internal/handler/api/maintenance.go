package api

import (
	"net/http"

	"foodbridge/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type MaintenanceHandler struct {
	maintenanceCommands commands.MaintenanceCommands
}

func NewMaintenanceHandler(maintenanceCommands commands.MaintenanceCommands) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceCommands: maintenanceCommands}
}

// @Summary Reconcile claim flags
// @Description Realign the legacy claimed flag on lots with the reservations table
// @Tags maintenance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} commands.ReconcileReport
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/maintenance/cleanup-orphans [post]
func (h *MaintenanceHandler) CleanupOrphans(c *gin.Context) {
	report, err := h.maintenanceCommands.CleanupOrphans(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Deduplicate active claims
// @Description Cancel all but the newest active reservation on lots carrying more than one
// @Tags maintenance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} commands.DedupeReport
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /admin/maintenance/deduplicate-claims [post]
func (h *MaintenanceHandler) DeduplicateActiveClaims(c *gin.Context) {
	report, err := h.maintenanceCommands.DeduplicateActiveClaims(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, report)
}
