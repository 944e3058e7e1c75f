package service

import (
	"context"
	"encoding/json"
	"testing"

	"bloodalert/internal/domain"
	"bloodalert/internal/models"
	"bloodalert/internal/repository/memory"
)

func newAlertFixture(t *testing.T) (*AlertService, *memory.Store, *fakeHub, *fakePusher) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	users := []models.User{
		{Email: "a@x", Role: "donor", BloodGroup: "O-", FCMToken: "tok-a"},
		{Email: "b@x", Role: "donor", BloodGroup: "O-"},
		{Email: "c@x", Role: "donor", BloodGroup: "A+", FCMToken: "tok-c"},
		{Email: "d@x", Role: "admin", BloodGroup: "O-", FCMToken: "tok-d"},
	}
	for i := range users {
		if err := store.CreateUser(ctx, &users[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	hub, push := &fakeHub{}, &fakePusher{}
	svc := NewAlertService(NewNotificationService(store, 50), store, hub, push)
	return svc, store, hub, push
}

func TestAlertService_UrgentRequestBroadcastsAndPushes(t *testing.T) {
	ctx := context.Background()
	svc, store, hub, push := newAlertFixture(t)

	req := &models.BloodRequest{ID: "r1", PatientName: "Kofi", BloodGroup: "O-", UnitsNeeded: 2, Urgency: "urgent", Hospital: "Ridge"}
	if err := svc.BloodRequested(ctx, req); err != nil {
		t.Fatalf("blood requested: %v", err)
	}

	if len(hub.sent) != 1 || hub.sent[0].room != domain.RoomAdmin {
		t.Fatalf("expected one admin broadcast, got %+v", hub.sent)
	}
	frame, ok := hub.sent[0].payload.(models.Frame)
	if !ok || frame.Event != domain.ChannelUrgentBloodRequest {
		t.Fatalf("unexpected frame %+v", hub.sent[0].payload)
	}
	alert, ok := models.DecodePayload(frame.Data).(models.BloodRequestAlert)
	if !ok || alert.ID != "r1" || alert.HospitalName != "Ridge" {
		t.Errorf("unexpected payload %s", frame.Data)
	}

	if len(push.tokens) != 1 || push.tokens[0] != "tok-a" {
		t.Errorf("expected only matching donor with a token pushed, got %v", push.tokens)
	}

	list, _ := store.ListNotifications(ctx, "anyone", 0)
	if len(list) != 1 || list[0].Type != domain.NotificationUrgent || !list[0].IsGlobal {
		t.Errorf("expected one global urgent notification, got %+v", list)
	}
}

func TestAlertService_NormalRequestSkipsAdminRoom(t *testing.T) {
	svc, store, hub, _ := newAlertFixture(t)
	if err := svc.BloodRequested(context.Background(), &models.BloodRequest{BloodGroup: "A+", Urgency: "normal"}); err != nil {
		t.Fatalf("blood requested: %v", err)
	}
	if len(hub.sent) != 0 {
		t.Errorf("expected no broadcast, got %d", len(hub.sent))
	}
	list, _ := store.ListNotifications(context.Background(), "x", 0)
	if len(list) != 1 || list[0].Type != domain.NotificationWarning {
		t.Errorf("expected warning notification, got %+v", list)
	}
}

func TestAlertService_PushFailureDoesNotFail(t *testing.T) {
	svc, _, _, push := newAlertFixture(t)
	push.err = errBoom
	if err := svc.BloodRequested(context.Background(), &models.BloodRequest{BloodGroup: "O-", Urgency: "high"}); err != nil {
		t.Fatalf("expected push failure to be swallowed, got %v", err)
	}
}

func TestAlertService_DonationOffered(t *testing.T) {
	svc, _, hub, _ := newAlertFixture(t)
	d := &models.Donation{ID: "d1", DonorName: "Ama", BloodGroup: "B+", PreferredDate: "2026-06-01"}
	if err := svc.DonationOffered(context.Background(), d); err != nil {
		t.Fatalf("donation offered: %v", err)
	}
	if len(hub.sent) != 1 {
		t.Fatalf("expected one broadcast, got %d", len(hub.sent))
	}
	frame := hub.sent[0].payload.(models.Frame)
	var raw map[string]any
	if err := json.Unmarshal(frame.Data, &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Event != domain.ChannelNewDonationRequest || raw["_id"] != "d1" || raw["type"] != "donation_request" {
		t.Errorf("unexpected frame %s %s", frame.Event, frame.Data)
	}
}

func TestAlertService_RequestStatusChanged(t *testing.T) {
	ctx := context.Background()
	svc, store, hub, push := newAlertFixture(t)
	requester, _ := store.GetUserByEmail(ctx, "a@x")

	r := &models.BloodRequest{ID: "r1", BloodGroup: "O-", UnitsNeeded: 2, Hospital: "Ridge", RequestedBy: requester.ID, Status: domain.RequestStatusFulfilled}
	if err := svc.RequestStatusChanged(ctx, r); err != nil {
		t.Fatalf("status changed: %v", err)
	}

	list, _ := store.ListNotifications(ctx, requester.ID, 0)
	if len(list) != 1 || list[0].UserID != requester.ID || list[0].IsGlobal || list[0].Type != domain.NotificationSuccess {
		t.Errorf("expected one personal success notification, got %+v", list)
	}
	if others, _ := store.ListNotifications(ctx, "someone-else", 0); len(others) != 0 {
		t.Errorf("status notification leaked to another user: %+v", others)
	}
	if len(hub.sent) != 1 || hub.sent[0].room != "user:"+requester.ID {
		t.Fatalf("expected one frame to the requester, got %+v", hub.sent)
	}
	if f := hub.sent[0].payload.(models.Frame); f.Event != domain.ChannelRequestStatus {
		t.Errorf("unexpected event %q", f.Event)
	}
	if len(push.single) != 1 || push.single[0] != "tok-a" {
		t.Errorf("expected a push to the requester's token, got %v", push.single)
	}
}

func TestAlertService_RequestStatusChangedIgnoresOtherStatuses(t *testing.T) {
	ctx := context.Background()
	svc, store, hub, push := newAlertFixture(t)
	for _, r := range []*models.BloodRequest{
		{ID: "r1", RequestedBy: "u1", Status: domain.RequestStatusPending},
		{ID: "r2", Status: domain.RequestStatusCancelled},
	} {
		if err := svc.RequestStatusChanged(ctx, r); err != nil {
			t.Fatalf("status changed: %v", err)
		}
	}
	if n, _ := store.CountUnread(ctx, "u1"); n != 0 || len(hub.sent) != 0 || len(push.single) != 0 {
		t.Errorf("expected no fan-out, got unread=%d frames=%d pushes=%d", n, len(hub.sent), len(push.single))
	}
}

func TestAlertService_CampaignAnnounced(t *testing.T) {
	ctx := context.Background()
	svc, store, hub, _ := newAlertFixture(t)
	c := &models.BloodCampaign{ID: "c1", Title: "Weekend Drive", Location: "Accra Mall"}
	if err := svc.CampaignAnnounced(ctx, c); err != nil {
		t.Fatalf("campaign announced: %v", err)
	}
	list, _ := store.ListNotifications(ctx, "anyone", 0)
	if len(list) != 1 || !list[0].IsGlobal {
		t.Errorf("expected a global notification, got %+v", list)
	}
	if len(hub.sent) != 1 || hub.sent[0].room != "*" {
		t.Fatalf("expected one broadcast to everyone, got %+v", hub.sent)
	}
	if f := hub.sent[0].payload.(models.Frame); f.Event != domain.ChannelNewCampaign {
		t.Errorf("unexpected event %q", f.Event)
	}
}
