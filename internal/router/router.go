package router

import (
	"log"
	"net/http"

	"bloodalert/config"
	"bloodalert/internal/handler"
	"bloodalert/internal/middleware"
	"bloodalert/internal/repository"
	"bloodalert/internal/service"
	"bloodalert/internal/ws"
	"bloodalert/pkg/cloudinary"

	"github.com/gin-gonic/gin"
)

// Deps are the long-lived collaborators the routes are built over.
// Cloud and Push may be nil.
type Deps struct {
	Store   repository.Store
	Hub     *ws.Hub
	Cloud   cloudinary.Client
	Push    service.Pusher
	Limiter *middleware.InMemoryRateLimiter
}

func Setup(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	}
	hub := deps.Hub
	if hub == nil {
		hub = ws.NewHub()
	}
	store := deps.Store

	// Services
	notifSvc := service.NewNotificationService(store, cfg.Notifications.ListLimit)
	if deps.Push == nil {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	alertSvc := service.NewAlertService(notifSvc, store, hub, deps.Push)
	authSvc := service.NewAuthService(&cfg.JWT, store)
	dashSvc := service.NewDashboardService(store, cfg.Dashboard.FetchTimeout)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc)
	donationHandler := handler.NewDonationHandler(store, store, alertSvc)
	requestHandler := handler.NewBloodRequestHandler(store, alertSvc)
	userHandler := handler.NewUserHandler(store)
	campaignHandler := handler.NewCampaignHandler(store, alertSvc, deps.Cloud, cfg.Cloudinary.Folder)
	dashboardHandler := handler.NewDashboardHandler(dashSvc, store)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sockets": hub.ClientCount()})
	})

	// Authenticated groups limit per user, so the limiter runs after authMw.
	// Public routes fall back to the client IP.
	limit := middleware.RateLimit(limiter)

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth", limit)
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", authMw, authHandler.Me)
		}

		notifications := api.Group("/notifications", authMw, limit)
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("", adminMw, notificationHandler.Create)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
		}

		donations := api.Group("/donations", authMw, limit)
		{
			donations.GET("", donationHandler.List)
			donations.POST("", donationHandler.Create)
		}

		requests := api.Group("/blood-requests", authMw, limit)
		{
			requests.GET("", requestHandler.List)
			requests.POST("", requestHandler.Create)
			requests.PATCH("/:id/status", adminMw, requestHandler.UpdateStatus)
		}

		users := api.Group("/users", authMw, limit)
		{
			users.GET("", adminMw, userHandler.List)
			users.PUT("/me/fcm-token", userHandler.UpdateFCMToken)
		}

		campaigns := api.Group("/campaigns")
		{
			campaigns.GET("", limit, campaignHandler.List)
			campaigns.POST("", authMw, limit, adminMw, campaignHandler.Create)
			campaigns.POST("/:id/banner", authMw, limit, adminMw, campaignHandler.UploadBanner)
		}

		admin := api.Group("/admin", authMw, limit, adminMw)
		{
			admin.GET("/summary", dashboardHandler.Summary)
			admin.GET("/dashboard", dashboardHandler.Dashboard)
		}
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, hub))

	return r
}
