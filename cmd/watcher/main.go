// Command watcher is an operator console for the Blood Alert API. It keeps a
// notification center and the admin live feed in sync and logs what changes.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bloodalert/config"
	"bloodalert/internal/realtime"
	"bloodalert/internal/service"
	"bloodalert/pkg/apiclient"
)

func main() {
	refresh := flag.Duration("refresh", 30*time.Second, "notification refresh interval")
	dashboard := flag.Bool("dashboard", false, "log dashboard stats on every refresh (admin accounts)")
	flag.Parse()

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.NewFromConfig(&cfg.API, os.Getenv("API_TOKEN"))
	client.OnUnauthorized = func() {
		log.Printf("[WATCH] session rejected by API, stopping")
		stop()
	}
	if client.Token() == "" {
		if _, err := client.Login(ctx, os.Getenv("WATCH_EMAIL"), os.Getenv("WATCH_PASSWORD")); err != nil {
			log.Fatalf("login: %v", err)
		}
	}

	center := service.NewNotificationCenter(client, "", service.WithDemoFallback(cfg.Notifications.DemoFallback))
	defer center.Close()

	feed := realtime.NewFeed(realtime.NewSource(&cfg.Realtime, client.Token()), realtime.LogToaster{})
	if err := feed.Start(ctx); err != nil {
		log.Fatalf("feed: %v", err)
	}
	defer feed.Close()

	var dash *service.DashboardService
	if *dashboard {
		dash = service.NewDashboardService(client, cfg.Dashboard.FetchTimeout)
	}

	lastUnread := -1
	tick := func() {
		if err := center.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logAPIError("notifications", err)
		}
		if n := center.UnreadCount(); n != lastUnread {
			log.Printf("[WATCH] %d unread notifications, %d live events unread", n, feed.UnreadCount())
			lastUnread = n
		}
		if dash == nil {
			return
		}
		stats, err := dash.Stats(ctx)
		if err != nil {
			logAPIError("dashboard", err)
			return
		}
		log.Printf("[DASH] users=%d donations=%d pending=%d emergencies=%d",
			stats.TotalUsers, stats.TotalDonations, stats.PendingRequests, stats.EmergencyRequests)
		for _, e := range stats.EmergencyDetails {
			log.Printf("[DASH]   %s %s x%d at %s (%s, %s left)", e.Urgency, e.BloodGroup, e.UnitsNeeded, e.Hospital, e.PatientName, e.TimeRemaining)
		}
	}

	tick()
	ticker := time.NewTicker(*refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("watcher stopped")
			return
		case <-ticker.C:
			tick()
		}
	}
}

func logAPIError(what string, err error) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		log.Printf("[WATCH] %s: %s", what, apiErr.Message)
		for _, f := range apiErr.Fields {
			log.Printf("[WATCH]   %s %s", f.Field, f.Message)
		}
		return
	}
	log.Printf("[WATCH] %s: %v", what, err)
}
