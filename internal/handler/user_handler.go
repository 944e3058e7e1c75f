package handler

import (
	"net/http"

	"bloodalert/internal/middleware"
	"bloodalert/internal/models"
	"bloodalert/internal/repository"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users repository.Users
}

func NewUserHandler(users repository.Users) *UserHandler {
	return &UserHandler{users: users}
}

// List is admin-only. bloodGroup narrows the result.
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list []models.User
		err  error
	)
	if bg := c.Query("bloodGroup"); bg != "" {
		list, err = h.users.ListUsersByBloodGroup(ctx, bg)
	} else {
		list, err = h.users.ListUsers(ctx)
	}
	if err != nil {
		fail(c, "list users", err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

type FCMTokenRequest struct {
	Token string `json:"token" binding:"required,max=512"`
}

func (h *UserHandler) UpdateFCMToken(c *gin.Context) {
	var req FCMTokenRequest
	if !bind(c, &req) {
		return
	}
	if err := h.users.UpdateFCMToken(c.Request.Context(), middleware.GetSession(c).UserID, req.Token); err != nil {
		fail(c, "update fcm token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
