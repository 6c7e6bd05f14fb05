package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-backend/internal/http/middleware"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
)

type NotificationHandler struct {
	Notifications repositories.NotificationRepository
	Svc           services.NotificationService
}

// GET /api/notifications
func (h NotificationHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	unreadOnly := c.Query("unread") == "true"

	list, err := h.Notifications.ListByUser(actor.UserID, unreadOnly, QueryInt(c, "limit", 50), QueryInt(c, "offset", 0))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

// POST /api/notifications/:id/read
func (h NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}
	if err := h.Notifications.MarkRead(id, middleware.GetActor(c).UserID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked as read"})
}

// POST /api/notifications/:id/dispatch
// Pushes a stored notification out over its channels. Already processed
// notifications are skipped unless force is set.
func (h NotificationHandler) Dispatch(c *gin.Context) {
	id, ok := IDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Force    bool     `json:"force"`
		Channels []string `json:"channels"`
	}
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid payload", err)
			return
		}
	}

	svc := h.Svc
	svc.RequestID = middleware.GetRequestID(c)
	result, err := svc.Dispatch(id, services.DispatchOptions{Force: req.Force, Channels: req.Channels})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}
