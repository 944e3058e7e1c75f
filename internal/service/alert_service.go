package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"bloodalert/internal/domain"
	"bloodalert/internal/models"
	"bloodalert/internal/repository"
)

// Broadcaster delivers frames over the push channel. *ws.Hub satisfies it.
type Broadcaster interface {
	BroadcastRoom(room string, payload interface{})
	BroadcastToUser(userID string, payload interface{})
	BroadcastAll(payload interface{})
}

// Pusher sends mobile pushes. *FCMService satisfies it.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error)
}

// AlertService fans out donation offers, blood requests and campaigns to
// admins, donors and requesters.
type AlertService struct {
	notifications *NotificationService
	users         repository.Users
	hub           Broadcaster
	push          Pusher
	now           func() time.Time
}

func NewAlertService(notifications *NotificationService, users repository.Users, hub Broadcaster, push Pusher) *AlertService {
	return &AlertService{notifications: notifications, users: users, hub: hub, push: push, now: time.Now}
}

// DonationOffered records the offer for admins and tells the admin room.
func (s *AlertService) DonationOffered(ctx context.Context, d *models.Donation) error {
	title := "New Donation Offer"
	msg := fmt.Sprintf("%s offered to donate %s blood", orUnknown(d.DonorName), orUnknown(d.BloodGroup))
	if _, err := s.notifications.Notify(ctx, "", domain.NotificationInfo, title, msg); err != nil {
		return fmt.Errorf("notify donation: %w", err)
	}
	s.broadcast(domain.ChannelNewDonationRequest, models.NewDonationOffer(d), "")
	return nil
}

// BloodRequested records the request and, for urgent or high requests,
// alerts the admin room. Donors with a matching blood group are pushed.
func (s *AlertService) BloodRequested(ctx context.Context, r *models.BloodRequest) error {
	notifType := domain.NotificationWarning
	title := "Blood Request"
	if r.IsHighPriority() {
		notifType = domain.NotificationUrgent
		title = fmt.Sprintf("Urgent: %s Blood Needed", orUnknown(r.BloodGroup))
	}
	msg := fmt.Sprintf("%s needs %d unit(s) of %s blood", orUnknown(r.Hospital), r.UnitsNeeded, orUnknown(r.BloodGroup))
	if _, err := s.notifications.Notify(ctx, "", notifType, title, msg); err != nil {
		return fmt.Errorf("notify blood request: %w", err)
	}
	if r.IsHighPriority() {
		s.broadcast(domain.ChannelUrgentBloodRequest, models.NewBloodRequestAlert(r), domain.UrgencyHigh)
	}
	s.pushDonors(ctx, r, title, msg)
	return nil
}

// RequestStatusChanged tells the requester that their request was fulfilled
// or cancelled, in the inbox, on their open sockets and by push.
func (s *AlertService) RequestStatusChanged(ctx context.Context, r *models.BloodRequest) error {
	if r.RequestedBy == "" {
		return nil
	}
	var notifType, title, msg string
	switch r.Status {
	case domain.RequestStatusFulfilled:
		notifType = domain.NotificationSuccess
		title = "Blood Request Fulfilled"
		msg = fmt.Sprintf("Your request for %d unit(s) of %s blood at %s has been fulfilled", r.UnitsNeeded, orUnknown(r.BloodGroup), orUnknown(r.Hospital))
	case domain.RequestStatusCancelled:
		notifType = domain.NotificationWarning
		title = "Blood Request Cancelled"
		msg = fmt.Sprintf("Your request for %s blood at %s has been cancelled", orUnknown(r.BloodGroup), orUnknown(r.Hospital))
	default:
		return nil
	}
	if _, err := s.notifications.Notify(ctx, r.RequestedBy, notifType, title, msg); err != nil {
		return fmt.Errorf("notify request status: %w", err)
	}
	if s.hub != nil {
		if f, ok := s.frame(domain.ChannelRequestStatus, models.NewBloodRequestAlert(r), ""); ok {
			s.hub.BroadcastToUser(r.RequestedBy, f)
		}
	}
	if s.push == nil {
		return nil
	}
	u, err := s.users.GetUserByID(ctx, r.RequestedBy)
	if err != nil {
		log.Printf("[FCM] load requester %s: %v", r.RequestedBy, err)
		return nil
	}
	data := map[string]string{"type": domain.ChannelRequestStatus, "request_id": r.ID, "status": r.Status}
	if err := s.push.Send(ctx, u.FCMToken, title, msg, data); err != nil {
		log.Printf("[FCM] request %s status push: %v", r.ID, err)
	}
	return nil
}

// CampaignAnnounced posts a global notification and tells every open socket.
func (s *AlertService) CampaignAnnounced(ctx context.Context, c *models.BloodCampaign) error {
	msg := fmt.Sprintf("%s at %s", orUnknown(c.Title), orUnknown(c.Location))
	if !c.StartsAt.IsZero() {
		msg += " from " + c.StartsAt.Format("Jan 2, 2006")
	}
	if _, err := s.notifications.Notify(ctx, "", domain.NotificationInfo, "New Blood Drive", msg); err != nil {
		return fmt.Errorf("notify campaign: %w", err)
	}
	if s.hub != nil {
		if f, ok := s.frame(domain.ChannelNewCampaign, c, ""); ok {
			s.hub.BroadcastAll(f)
		}
	}
	return nil
}

func (s *AlertService) frame(event string, payload any, urgency string) (models.Frame, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] encode %s: %v", event, err)
		return models.Frame{}, false
	}
	return models.Frame{Event: event, Data: data, Timestamp: s.now(), Urgency: urgency}, true
}

func (s *AlertService) broadcast(event string, payload models.EventPayload, urgency string) {
	if s.hub == nil {
		return
	}
	if f, ok := s.frame(event, payload, urgency); ok {
		s.hub.BroadcastRoom(domain.RoomAdmin, f)
	}
}

// pushDonors never fails the caller; push problems are only logged.
func (s *AlertService) pushDonors(ctx context.Context, r *models.BloodRequest, title, body string) {
	if s.push == nil || r.BloodGroup == "" {
		return
	}
	donors, err := s.users.ListUsersByBloodGroup(ctx, r.BloodGroup)
	if err != nil {
		log.Printf("[FCM] list donors for %s: %v", r.BloodGroup, err)
		return
	}
	var tokens []string
	for _, u := range donors {
		if u.FCMToken != "" && u.ResolvedRole() == domain.RoleDonor {
			tokens = append(tokens, u.FCMToken)
		}
	}
	if len(tokens) == 0 {
		return
	}
	data := map[string]string{
		"type":       string(domain.EventBloodRequest),
		"request_id": r.ID,
		"bloodGroup": r.BloodGroup,
		"urgency":    r.Urgency,
	}
	failed, err := s.push.SendMulticast(ctx, tokens, title, body, data)
	if err != nil || failed > 0 {
		log.Printf("[FCM] blood request %s: %d of %d pushes failed (%v)", r.ID, failed, len(tokens), err)
	}
}
