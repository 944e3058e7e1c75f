package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"bloodalert/internal/models"
)

var dashNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func TestCalculateTimeRemaining(t *testing.T) {
	tests := []struct {
		name     string
		required string
		want     string
	}{
		{"25 hours", dashNow.Add(25 * time.Hour).Format(time.RFC3339), "1 day(s)"},
		{"3 hours", dashNow.Add(3*time.Hour + 10*time.Minute).Format(time.RFC3339), "3 hour(s)"},
		{"overdue", dashNow.Add(-time.Hour).Format(time.RFC3339), "Overdue"},
		{"under an hour", dashNow.Add(20 * time.Minute).Format(time.RFC3339), "Less than 1 hour"},
		{"several days", dashNow.Add(72*time.Hour + time.Minute).Format(time.RFC3339), "3 day(s)"},
		{"date only", "2026-05-13", "2 day(s)"},
		{"missing", "", "Unknown"},
		{"garbage", "next tuesday", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateTimeRemaining(tt.required, dashNow); got != tt.want {
				t.Errorf("CalculateTimeRemaining(%q) = %q, want %q", tt.required, got, tt.want)
			}
		})
	}
}

func dashboardFixture() *fakeDashboardSource {
	src := &fakeDashboardSource{summary: &models.Summary{TotalUsers: 4, TotalDonations: 5, TotalRequests: 3}}
	for i := 0; i < 5; i++ {
		src.donations = append(src.donations, models.Donation{
			ID:         fmt.Sprintf("d%d", i),
			DonorName:  fmt.Sprintf("Donor %d", i),
			BloodGroup: "A+",
			CreatedAt:  dashNow.Add(-time.Duration(i+1) * time.Hour),
		})
	}
	for i := 0; i < 3; i++ {
		src.users = append(src.users, models.User{
			ID:        fmt.Sprintf("u%d", i),
			Name:      fmt.Sprintf("User %d", i),
			Role:      "donor",
			CreatedAt: dashNow.Add(-time.Duration(i*2+1) * 30 * time.Minute),
		})
	}
	src.users = append(src.users, models.User{ID: "admin", Role: "donor", AdminType: "admin", CreatedAt: dashNow})
	src.requests = []models.BloodRequest{
		{ID: "r1", PatientName: "Kofi", BloodGroup: "O-", Urgency: "urgent", Status: "active",
			RequiredBy: dashNow.Add(5 * time.Hour).Format(time.RFC3339), CreatedAt: dashNow.Add(-10 * time.Minute)},
		{ID: "r2", PatientName: "Esi", BloodGroup: "B+", Urgency: "urgent", Status: "active",
			RequiredBy: dashNow.Add(72 * time.Hour).Format(time.RFC3339), CreatedAt: dashNow.Add(-5 * time.Hour)},
		{ID: "r3", Urgency: "normal", Status: "pending", CreatedAt: dashNow.Add(-6 * time.Hour)},
		{ID: "r4", Urgency: "urgent", Status: "fulfilled", CreatedAt: dashNow.Add(-7 * time.Hour)},
	}
	return src
}

func TestDashboardStats_Aggregates(t *testing.T) {
	svc := NewDashboardService(dashboardFixture(), time.Second)
	svc.now = func() time.Time { return dashNow }

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.TotalUsers != 4 || stats.TotalDonations != 5 {
		t.Errorf("unexpected totals %+v", stats)
	}
	if stats.EmergencyRequests != 2 || stats.PendingRequests != 3 {
		t.Errorf("expected 2 emergency and 3 pending, got %d and %d", stats.EmergencyRequests, stats.PendingRequests)
	}
	if len(stats.EmergencyDetails) != 2 {
		t.Fatalf("expected 2 emergency details, got %d", len(stats.EmergencyDetails))
	}
	if d := stats.EmergencyDetails[0]; d.ID != "r1" || d.Urgency != "Critical" || d.TimeRemaining != "5 hour(s)" {
		t.Errorf("unexpected first emergency %+v", d)
	}
	if d := stats.EmergencyDetails[1]; d.Urgency != "High" || d.TimeRemaining != "3 day(s)" {
		t.Errorf("unexpected second emergency %+v", d)
	}

	if len(stats.RecentActivity) != 5 {
		t.Fatalf("expected 5 activity items, got %d", len(stats.RecentActivity))
	}
	for i := 1; i < len(stats.RecentActivity); i++ {
		if stats.RecentActivity[i].Time.After(stats.RecentActivity[i-1].Time) {
			t.Fatalf("activity not sorted descending: %+v", stats.RecentActivity)
		}
	}
	for _, item := range stats.RecentActivity {
		if item.ID == "admin" {
			t.Error("admin users must not appear in recent activity")
		}
		if item.Type == ActivityEmergency && item.Urgency == "" {
			t.Error("emergency activity must carry urgency")
		}
		if item.TimeLabel == "" {
			t.Error("expected a time label")
		}
	}
}

func TestDashboardStats_FailureResetsEverything(t *testing.T) {
	for _, failOn := range []string{"summary", "requests", "donations", "users"} {
		t.Run(failOn, func(t *testing.T) {
			src := dashboardFixture()
			src.failOn = failOn
			stats, err := NewDashboardService(src, time.Second).Stats(context.Background())
			if !errors.Is(err, errBoom) {
				t.Fatalf("expected wrapped error, got %v", err)
			}
			if stats.TotalUsers != 0 || stats.TotalDonations != 0 || stats.PendingRequests != 0 || stats.EmergencyRequests != 0 {
				t.Errorf("expected zero counters, got %+v", stats)
			}
			if len(stats.EmergencyDetails) != 0 || len(stats.RecentActivity) != 0 {
				t.Errorf("expected empty lists, got %+v", stats)
			}
		})
	}
}

func TestDashboardStats_EmptySources(t *testing.T) {
	stats, err := NewDashboardService(&fakeDashboardSource{}, 0).Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.EmergencyDetails == nil || stats.RecentActivity == nil {
		t.Error("expected non-nil empty lists so JSON renders []")
	}
}
