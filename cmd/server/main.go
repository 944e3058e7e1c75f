package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodalert/config"
	"bloodalert/internal/database"
	"bloodalert/internal/middleware"
	"bloodalert/internal/router"
	"bloodalert/internal/service"
	"bloodalert/internal/ws"
	"bloodalert/pkg/cloudinary"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	app, err := database.NewFirebaseApp(ctx, &cfg.Firebase)
	if err != nil {
		log.Fatalf("firebase: %v", err)
	}
	store, err := database.Open(ctx, cfg, app)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer store.Close()

	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		auth := service.NewAuthService(&cfg.JWT, store)
		if err := auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}

	deps := router.Deps{
		Store:   store,
		Hub:     ws.NewHub(),
		Limiter: middleware.NewInMemoryRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow),
	}
	defer deps.Limiter.Stop()
	if fcm := service.NewFCMService(ctx, app); fcm != nil {
		deps.Push = fcm
	}
	if cfg.Cloudinary.CloudName != "" {
		cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
		deps.Cloud = cloud
	} else {
		log.Printf("[CLOUDINARY] Banner uploads disabled: set CLOUDINARY_CLOUD_NAME to enable")
	}

	engine := router.Setup(cfg, deps)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s (%s backend)", cfg.Server.Port, cfg.Database.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	fmt.Println("server stopped")
}
