package domain

import "strings"

// Role is resolved once when a session is authenticated.
type Role string

const (
	RoleDonor     Role = "donor"
	RoleRecipient Role = "recipient"
	RoleAdmin     Role = "admin"
)

// ResolveRole folds the stored role and the legacy adminType flag into one Role.
func ResolveRole(role, adminType string) Role {
	r := strings.ToLower(strings.TrimSpace(role))
	if r == string(RoleAdmin) || strings.EqualFold(strings.TrimSpace(adminType), string(RoleAdmin)) {
		return RoleAdmin
	}
	if r == string(RoleRecipient) || r == "hospital" {
		return RoleRecipient
	}
	return RoleDonor
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Notification types
const (
	NotificationUrgent  = "urgent"
	NotificationInfo    = "info"
	NotificationSuccess = "success"
	NotificationWarning = "warning"
)

// Blood request statuses
const (
	RequestStatusActive    = "active"
	RequestStatusPending   = "pending"
	RequestStatusFulfilled = "fulfilled"
	RequestStatusCancelled = "cancelled"
)

// Stored blood request urgency
const (
	RequestUrgencyUrgent = "urgent"
	RequestUrgencyHigh   = "high"
	RequestUrgencyNormal = "normal"
)

// Display urgency levels
const (
	UrgencyCritical = "critical"
	UrgencyHigh     = "high"
	UrgencyMedium   = "medium"
	UrgencyLow      = "low"
	UrgencyNormal   = "Normal"
)

// Emergency detail urgency labels
const (
	EmergencyCritical = "Critical"
	EmergencyHigh     = "High"
)

const (
	DonationStatusPending   = "pending"
	DonationStatusCompleted = "completed"
)

// EventType discriminates realtime payloads.
type EventType string

const (
	EventDonationRequest EventType = "donation_request"
	EventBloodRequest    EventType = "blood_request"
)

// Push channel event names
const (
	ChannelConnect            = "connect"
	ChannelDisconnect         = "disconnect"
	ChannelJoinAdmin          = "join-admin"
	ChannelNewDonationRequest = "new_donation_request"
	ChannelUrgentBloodRequest = "urgent_blood_request"
	ChannelRequestStatus      = "blood_request_status"
	ChannelNewCampaign        = "new_campaign"
)

// RoomAdmin is the broadcast group every admin socket joins.
const RoomAdmin = "admin"

// BloodGroups accepted on donations and requests.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}
