package handler

import (
	"log"
	"net/http"

	"bloodalert/internal/domain"
	"bloodalert/internal/middleware"
	"bloodalert/internal/models"
	"bloodalert/internal/repository"
	"bloodalert/internal/service"

	"github.com/gin-gonic/gin"
)

type DonationHandler struct {
	donations repository.Donations
	users     repository.Users
	alerts    *service.AlertService
}

func NewDonationHandler(donations repository.Donations, users repository.Users, alerts *service.AlertService) *DonationHandler {
	return &DonationHandler{donations: donations, users: users, alerts: alerts}
}

type CreateDonationRequest struct {
	DonorName         string `json:"donorName" binding:"omitempty,max=128"`
	Email             string `json:"email" binding:"omitempty,email"`
	Phone             string `json:"phone" binding:"omitempty,max=32"`
	Age               int    `json:"age" binding:"omitempty,min=17,max=70"`
	BloodGroup        string `json:"bloodGroup" binding:"required,bloodgroup"`
	Units             int    `json:"units" binding:"omitempty,min=1,max=4"`
	Location          string `json:"location" binding:"omitempty,max=255"`
	PreferredDate     string `json:"preferredDate" binding:"omitempty,max=32"`
	MedicalConditions string `json:"medicalConditions"`
	ConsentGiven      bool   `json:"consentGiven"`
}

// List returns every donation to admins and the caller's own donations otherwise.
func (h *DonationHandler) List(c *gin.Context) {
	sess := middleware.GetSession(c)
	list, err := h.donations.ListDonations(c.Request.Context())
	if err != nil {
		fail(c, "list donations", err)
		return
	}
	if !sess.IsAdmin() {
		own := make([]models.Donation, 0)
		for _, d := range list {
			if d.DonorID == sess.UserID {
				own = append(own, d)
			}
		}
		list = own
	}
	if list == nil {
		list = []models.Donation{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

func (h *DonationHandler) Create(c *gin.Context) {
	var req CreateDonationRequest
	if !bind(c, &req) {
		return
	}
	sess := middleware.GetSession(c)
	ctx := c.Request.Context()
	d := &models.Donation{
		DonorID:           sess.UserID,
		DonorName:         req.DonorName,
		Email:             req.Email,
		Phone:             req.Phone,
		Age:               req.Age,
		BloodGroup:        req.BloodGroup,
		Units:             max(req.Units, 1),
		Status:            domain.DonationStatusPending,
		Location:          req.Location,
		PreferredDate:     req.PreferredDate,
		MedicalConditions: req.MedicalConditions,
		ConsentGiven:      req.ConsentGiven,
	}
	if d.DonorName == "" || d.Email == "" {
		if u, err := h.users.GetUserByID(ctx, sess.UserID); err == nil {
			if d.DonorName == "" {
				d.DonorName = u.DisplayName()
			}
			if d.Email == "" {
				d.Email = u.Email
			}
		}
	}
	if err := h.donations.CreateDonation(ctx, d); err != nil {
		fail(c, "create donation", err)
		return
	}
	if h.alerts != nil {
		if err := h.alerts.DonationOffered(ctx, d); err != nil {
			log.Printf("[API] donation %s alert: %v", d.ID, err)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": d})
}
