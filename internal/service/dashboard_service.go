package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"bloodalert/internal/domain"
	"bloodalert/internal/models"

	"golang.org/x/sync/errgroup"
)

const (
	recentDonations   = 3
	recentUsers       = 2
	recentEmergencies = 2
	recentActivityMax = 5

	activityTimeLayout = "Jan 2, 2006 3:04 PM"
)

// Activity types
const (
	ActivityDonation     = "donation"
	ActivityRegistration = "registration"
	ActivityEmergency    = "emergency"
)

// DashboardSource supplies the four collections the admin dashboard merges.
type DashboardSource interface {
	Summary(ctx context.Context) (*models.Summary, error)
	ListBloodRequests(ctx context.Context) ([]models.BloodRequest, error)
	ListDonations(ctx context.Context) ([]models.Donation, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type DashboardStats struct {
	TotalUsers        int64             `json:"totalUsers"`
	TotalDonations    int64             `json:"totalDonations"`
	PendingRequests   int               `json:"pendingRequests"`
	EmergencyRequests int               `json:"emergencyRequests"`
	EmergencyDetails  []EmergencyDetail `json:"emergencyDetails"`
	RecentActivity    []ActivityItem    `json:"recentActivity"`
}

type EmergencyDetail struct {
	ID            string `json:"id"`
	PatientName   string `json:"patientName"`
	BloodGroup    string `json:"bloodGroup"`
	UnitsNeeded   int    `json:"unitsNeeded"`
	Urgency       string `json:"urgency"` // Critical | High
	TimeRemaining string `json:"timeRemaining"`
	Hospital      string `json:"hospital"`
	RequestedBy   string `json:"requestedBy"`
}

type ActivityItem struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	User      string    `json:"user"`
	Time      time.Time `json:"time"`
	TimeLabel string    `json:"timeLabel"`
	Urgency   string    `json:"urgency,omitempty"`
}

func emptyStats() *DashboardStats {
	return &DashboardStats{
		EmergencyDetails: []EmergencyDetail{},
		RecentActivity:   []ActivityItem{},
	}
}

type DashboardService struct {
	src     DashboardSource
	timeout time.Duration
	now     func() time.Time
}

func NewDashboardService(src DashboardSource, timeout time.Duration) *DashboardService {
	return &DashboardService{src: src, timeout: timeout, now: time.Now}
}

// Stats fetches every collection concurrently. If any fetch fails the result
// is the zero value with empty lists, never a partial merge.
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		summary   *models.Summary
		requests  []models.BloodRequest
		donations []models.Donation
		users     []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	g.Go(func() (err error) {
		summary, err = s.src.Summary(gctx)
		return wrap("summary", err)
	})
	g.Go(func() (err error) {
		requests, err = s.src.ListBloodRequests(gctx)
		return wrap("blood requests", err)
	})
	g.Go(func() (err error) {
		donations, err = s.src.ListDonations(gctx)
		return wrap("donations", err)
	})
	g.Go(func() (err error) {
		users, err = s.src.ListUsers(gctx)
		return wrap("users", err)
	})
	if err := g.Wait(); err != nil {
		log.Printf("[DASH] fetch failed, resetting stats: %v", err)
		return emptyStats(), err
	}
	if summary == nil {
		summary = &models.Summary{}
	}
	return s.aggregate(summary, requests, donations, users), nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("fetch %s: %w", what, err)
	}
	return nil
}

func (s *DashboardService) aggregate(summary *models.Summary, requests []models.BloodRequest, donations []models.Donation, users []models.User) *DashboardStats {
	now := s.now()
	stats := emptyStats()
	stats.TotalUsers = summary.TotalUsers
	stats.TotalDonations = summary.TotalDonations

	var emergencies []models.BloodRequest
	for i := range requests {
		r := &requests[i]
		if r.IsPending() {
			stats.PendingRequests++
		}
		if r.IsEmergency() {
			emergencies = append(emergencies, *r)
		}
	}
	sort.SliceStable(emergencies, func(i, j int) bool { return emergencies[i].CreatedAt.After(emergencies[j].CreatedAt) })
	stats.EmergencyRequests = len(emergencies)
	for _, r := range emergencies {
		stats.EmergencyDetails = append(stats.EmergencyDetails, emergencyDetail(r, now))
	}

	stats.RecentActivity = recentActivity(donations, users, emergencies)
	return stats
}

func emergencyDetail(r models.BloodRequest, now time.Time) EmergencyDetail {
	urgency := domain.EmergencyHigh
	if t, ok := domain.ParseTime(r.RequiredBy); ok && t.Sub(now) <= 24*time.Hour {
		urgency = domain.EmergencyCritical
	}
	return EmergencyDetail{
		ID:            r.ID,
		PatientName:   r.PatientName,
		BloodGroup:    r.BloodGroup,
		UnitsNeeded:   r.UnitsNeeded,
		Urgency:       urgency,
		TimeRemaining: CalculateTimeRemaining(r.RequiredBy, now),
		Hospital:      r.Hospital,
		RequestedBy:   r.RequestedBy,
	}
}

func recentActivity(donations []models.Donation, users []models.User, emergencies []models.BloodRequest) []ActivityItem {
	donations = append([]models.Donation(nil), donations...)
	sort.SliceStable(donations, func(i, j int) bool { return donations[i].CreatedAt.After(donations[j].CreatedAt) })

	var members []models.User
	for _, u := range users {
		if !u.IsAdmin() {
			members = append(members, u)
		}
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].CreatedAt.After(members[j].CreatedAt) })

	items := make([]ActivityItem, 0, recentDonations+recentUsers+recentEmergencies)
	for _, d := range donations[:min(recentDonations, len(donations))] {
		items = append(items, newActivity(d.ID, ActivityDonation,
			fmt.Sprintf("%s donated %s blood", orUnknown(d.DonorName), orUnknown(d.BloodGroup)), d.CreatedAt))
	}
	for _, u := range members[:min(recentUsers, len(members))] {
		items = append(items, newActivity(u.ID, ActivityRegistration,
			fmt.Sprintf("%s registered as a %s", u.DisplayName(), u.ResolvedRole()), u.CreatedAt))
	}
	for _, r := range emergencies[:min(recentEmergencies, len(emergencies))] {
		item := newActivity(r.ID, ActivityEmergency,
			fmt.Sprintf("Emergency request for %s blood at %s", orUnknown(r.BloodGroup), orUnknown(r.Hospital)), r.CreatedAt)
		item.Urgency = domain.RequestUrgencyUrgent
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Time.After(items[j].Time) })
	if len(items) > recentActivityMax {
		items = items[:recentActivityMax]
	}
	return items
}

func newActivity(id, typ, user string, t time.Time) ActivityItem {
	return ActivityItem{ID: id, Type: typ, User: user, Time: t, TimeLabel: t.Local().Format(activityTimeLayout)}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// CalculateTimeRemaining renders the time left until required. It returns
// "Unknown" for a missing or unparsable date.
func CalculateTimeRemaining(required string, now time.Time) string {
	t, ok := domain.ParseTime(required)
	if !ok {
		return "Unknown"
	}
	diff := t.Sub(now)
	if diff < 0 {
		return "Overdue"
	}
	if days := int(diff / (24 * time.Hour)); days >= 1 {
		return fmt.Sprintf("%d day(s)", days)
	}
	if hours := int(diff / time.Hour); hours >= 1 {
		return fmt.Sprintf("%d hour(s)", hours)
	}
	return "Less than 1 hour"
}
