package api

import (
	"io"
	"net/http"
	"strings"

	resdto "foodbridge/internal/handler/dto/response"
	"foodbridge/internal/handler/middleware"
	"foodbridge/internal/infra/push"
	"foodbridge/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationQueries queries.NotificationQueries
	hub                 *push.Hub
}

func NewNotificationHandler(notificationQueries queries.NotificationQueries, hub *push.Hub) *NotificationHandler {
	return &NotificationHandler{
		notificationQueries: notificationQueries,
		hub:                 hub,
	}
}

// @Summary List notifications
// @Description List the caller's durable notifications, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param after query string false "Pagination cursor"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} resdto.NotificationListResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	after, limit := parsePagination(c)

	views, next, err := h.notificationQueries.ListByRecipient(c.Request.Context(), caller.ID, after, limit)
	if err != nil {
		if strings.Contains(err.Error(), "cursor") {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid cursor",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, resdto.FromNotificationViews(views, nextCursorString(next)))
}

// @Summary Stream notifications
// @Description Server-sent event stream of live pushes for the caller; delivery is best effort
// @Tags notifications
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "event stream"
// @Failure 401 {object} map[string]string
// @Router /notifications/stream [get]
func (h *NotificationHandler) StreamNotifications(c *gin.Context) {
	caller, ok := middleware.GetActor(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	events, cancel := h.hub.Subscribe(caller.ID)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("notification", string(payload))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
