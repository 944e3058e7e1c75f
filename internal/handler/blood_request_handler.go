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

type BloodRequestHandler struct {
	requests repository.BloodRequests
	alerts   *service.AlertService
}

func NewBloodRequestHandler(requests repository.BloodRequests, alerts *service.AlertService) *BloodRequestHandler {
	return &BloodRequestHandler{requests: requests, alerts: alerts}
}

type CreateBloodRequestRequest struct {
	PatientName   string `json:"patientName" binding:"required,max=128"`
	PatientAge    int    `json:"patientAge" binding:"omitempty,min=0,max=120"`
	BloodGroup    string `json:"bloodGroup" binding:"required,bloodgroup"`
	UnitsNeeded   int    `json:"unitsNeeded" binding:"required,min=1,max=50"`
	Urgency       string `json:"urgency" binding:"omitempty,oneof=urgent high normal"`
	Hospital      string `json:"hospital" binding:"required,max=255"`
	ContactPerson string `json:"contactPerson" binding:"omitempty,max=128"`
	ContactPhone  string `json:"contactPhone" binding:"omitempty,max=32"`
	Email         string `json:"email" binding:"omitempty,email"`
	Location      string `json:"location" binding:"omitempty,max=255"`
	MedicalReason string `json:"medicalReason"`
	RequiredBy    string `json:"requiredBy" binding:"omitempty,max=32"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active pending fulfilled cancelled"`
}

func (h *BloodRequestHandler) List(c *gin.Context) {
	list, err := h.requests.ListBloodRequests(c.Request.Context())
	if err != nil {
		fail(c, "list blood requests", err)
		return
	}
	if list == nil {
		list = []models.BloodRequest{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

func (h *BloodRequestHandler) Create(c *gin.Context) {
	var req CreateBloodRequestRequest
	if !bind(c, &req) {
		return
	}
	if req.RequiredBy != "" {
		if _, ok := domain.ParseTime(req.RequiredBy); !ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "validation failed",
				"fields": []FieldError{{Field: "requiredBy", Message: "must be a date"}}})
			return
		}
	}
	ctx := c.Request.Context()
	r := &models.BloodRequest{
		PatientName:   req.PatientName,
		PatientAge:    req.PatientAge,
		BloodGroup:    req.BloodGroup,
		UnitsNeeded:   req.UnitsNeeded,
		Urgency:       req.Urgency,
		Status:        domain.RequestStatusActive,
		Hospital:      req.Hospital,
		RequestedBy:   middleware.GetSession(c).UserID,
		ContactPerson: req.ContactPerson,
		ContactPhone:  req.ContactPhone,
		Email:         req.Email,
		Location:      req.Location,
		MedicalReason: req.MedicalReason,
		RequiredBy:    req.RequiredBy,
	}
	if r.Urgency == "" {
		r.Urgency = domain.RequestUrgencyNormal
	}
	if err := h.requests.CreateBloodRequest(ctx, r); err != nil {
		fail(c, "create blood request", err)
		return
	}
	if h.alerts != nil {
		if err := h.alerts.BloodRequested(ctx, r); err != nil {
			log.Printf("[API] blood request %s alert: %v", r.ID, err)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": r})
}

// UpdateStatus is admin-only. Fulfilled and cancelled requests notify the requester.
func (h *BloodRequestHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !bind(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.requests.UpdateBloodRequestStatus(ctx, id, req.Status); err != nil {
		fail(c, "update blood request", err)
		return
	}
	r, err := h.requests.GetBloodRequest(ctx, id)
	if err != nil {
		fail(c, "load blood request", err)
		return
	}
	if h.alerts != nil {
		if err := h.alerts.RequestStatusChanged(ctx, r); err != nil {
			log.Printf("[API] blood request %s status alert: %v", r.ID, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": r})
}
