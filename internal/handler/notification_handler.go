package handler

import (
	"net/http"

	"bloodalert/internal/middleware"
	"bloodalert/internal/service"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List returns the caller's own and global notifications with the unread count.
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.svc.ListNotifications(c.Request.Context(), middleware.GetSession(c).UserID)
	if err != nil {
		fail(c, "list notifications", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type CreateNotificationRequest struct {
	UserID  string `json:"userId"`
	Title   string `json:"title" binding:"required,max=255"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type" binding:"required,oneof=urgent info success warning"`
}

// Create is admin-only; an empty userId addresses everyone.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req CreateNotificationRequest
	if !bind(c, &req) {
		return
	}
	n, err := h.svc.Notify(c.Request.Context(), req.UserID, req.Type, req.Title, req.Message)
	if err != nil {
		fail(c, "create notification", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkNotificationRead(c.Request.Context(), middleware.GetSession(c).UserID, c.Param("id")); err != nil {
		fail(c, "mark notification read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.svc.MarkAllNotificationsRead(c.Request.Context(), middleware.GetSession(c).UserID); err != nil {
		fail(c, "mark all notifications read", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteNotification(c.Request.Context(), middleware.GetSession(c).UserID, c.Param("id")); err != nil {
		fail(c, "delete notification", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
