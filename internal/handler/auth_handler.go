package handler

import (
	"net/http"

	"bloodalert/internal/middleware"
	"bloodalert/internal/service"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type RegisterRequest struct {
	Name       string `json:"name" binding:"required,max=128"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role" binding:"omitempty,oneof=donor recipient hospital"`
	BloodGroup string `json:"bloodGroup" binding:"omitempty,bloodgroup"`
	Phone      string `json:"phone" binding:"omitempty,max=32"`
	Location   string `json:"location" binding:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bind(c, &req) {
		return
	}
	u, token, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		BloodGroup: req.BloodGroup,
		Phone:      req.Phone,
		Location:   req.Location,
	})
	if err != nil {
		fail(c, "registration", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "token": token, "user": u})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bind(c, &req) {
		return
	}
	u, token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, "login", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": u})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), middleware.GetSession(c))
	if err != nil {
		fail(c, "load profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": u, "role": u.ResolvedRole()})
}
