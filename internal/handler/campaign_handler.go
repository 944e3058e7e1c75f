package handler

import (
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"bloodalert/internal/domain"
	"bloodalert/internal/models"
	"bloodalert/internal/repository"
	"bloodalert/internal/service"
	"bloodalert/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

const maxBannerSize = 5 << 20

type CampaignHandler struct {
	campaigns repository.Campaigns
	alerts    *service.AlertService
	cloud     cloudinary.Client
	folder    string
}

// NewCampaignHandler accepts a nil cloud client; banner uploads then answer 503.
func NewCampaignHandler(campaigns repository.Campaigns, alerts *service.AlertService, cloud cloudinary.Client, folder string) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, alerts: alerts, cloud: cloud, folder: folder}
}

type CreateCampaignRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Location    string `json:"location" binding:"required,max=255"`
	StartsAt    string `json:"startsAt" binding:"required"`
	EndsAt      string `json:"endsAt"`
	Active      *bool  `json:"active"`
}

func (h *CampaignHandler) List(c *gin.Context) {
	list, err := h.campaigns.ListCampaigns(c.Request.Context())
	if err != nil {
		fail(c, "list campaigns", err)
		return
	}
	if list == nil {
		list = []models.BloodCampaign{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

// Create is admin-only.
func (h *CampaignHandler) Create(c *gin.Context) {
	var req CreateCampaignRequest
	if !bind(c, &req) {
		return
	}
	var fields []FieldError
	starts, ok := domain.ParseTime(req.StartsAt)
	if !ok {
		fields = append(fields, FieldError{Field: "startsAt", Message: "must be a date"})
	}
	var ends time.Time
	if req.EndsAt != "" {
		if ends, ok = domain.ParseTime(req.EndsAt); !ok {
			fields = append(fields, FieldError{Field: "endsAt", Message: "must be a date"})
		} else if ends.Before(starts) {
			fields = append(fields, FieldError{Field: "endsAt", Message: "must not be before startsAt"})
		}
	}
	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "validation failed", "fields": fields})
		return
	}
	camp := &models.BloodCampaign{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    starts,
		EndsAt:      ends,
		Active:      req.Active == nil || *req.Active,
	}
	ctx := c.Request.Context()
	if err := h.campaigns.CreateCampaign(ctx, camp); err != nil {
		fail(c, "create campaign", err)
		return
	}
	if h.alerts != nil && camp.Active {
		if err := h.alerts.CampaignAnnounced(ctx, camp); err != nil {
			log.Printf("[API] campaign %s announcement: %v", camp.ID, err)
		}
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": camp})
}

// UploadBanner is admin-only. Expects multipart field "file".
func (h *CampaignHandler) UploadBanner(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "image uploads are not configured"})
		return
	}
	ctx := c.Request.Context()
	camp, err := h.campaigns.GetCampaign(ctx, c.Param("id"))
	if err != nil {
		fail(c, "load campaign", err)
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "validation failed",
			"fields": []FieldError{{Field: "file", Message: "is required"}}})
		return
	}
	if file.Size > maxBannerSize || !isImage(file.Filename) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "validation failed",
			"fields": []FieldError{{Field: "file", Message: "must be a jpg, png or webp image under 5MB"}}})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "error": "could not read file"})
		return
	}
	defer f.Close()

	url, err := h.cloud.UploadBanner(ctx, f, h.folder, "banner_"+camp.ID)
	if err != nil {
		log.Printf("[CLOUDINARY] campaign %s upload: %v", camp.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "upload failed"})
		return
	}
	if err := h.campaigns.UpdateCampaignBanner(ctx, camp.ID, url); err != nil {
		fail(c, "save banner", err)
		return
	}
	if old := camp.BannerURL; old != "" && cloudinary.PublicIDFromURL(old) != cloudinary.PublicIDFromURL(url) {
		if err := h.cloud.DeleteByURL(ctx, old); err != nil {
			log.Printf("[CLOUDINARY] campaign %s remove old banner: %v", camp.ID, err)
		}
	}
	camp.BannerURL = url
	c.JSON(http.StatusOK, gin.H{"success": true, "data": camp})
}

func isImage(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}
