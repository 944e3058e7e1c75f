// Package formatter normalises push channel payloads into display records.
package formatter

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"bloodalert/internal/domain"
	"bloodalert/internal/models"
)

const (
	notSpecified   = "Not specified"
	unknown        = "Unknown"
	donationOffer  = "Donation Offer"
	donationReason = "Blood Donation"
	urgentWindow   = 24 * time.Hour
)

// Units is either a count of units or a literal label such as "Donation Offer".
type Units struct {
	Count int
	Label string
}

func (u Units) MarshalJSON() ([]byte, error) {
	if u.Label != "" {
		return json.Marshal(u.Label)
	}
	return json.Marshal(u.Count)
}

func (u Units) String() string {
	if u.Label != "" {
		return u.Label
	}
	return strconv.Itoa(u.Count)
}

type Details struct {
	Name           string         `json:"name"`
	BloodType      string         `json:"bloodType"`
	Age            string         `json:"age"`
	UnitsNeeded    Units          `json:"unitsNeeded"`
	UrgencyLevel   string         `json:"urgencyLevel"`
	Phone          string         `json:"phone"`
	Hospital       string         `json:"hospital"`
	Doctor         string         `json:"doctor,omitempty"`
	Reason         string         `json:"reason"`
	TimeRequired   time.Time      `json:"timeRequired"`
	AdditionalInfo map[string]any `json:"additionalInfo"`
	Variant        string         `json:"variant"`
	Icon           string         `json:"icon"`
	Emphasized     bool           `json:"emphasized"`
}

// FormatEvent formats the payload carried by e. A high frame urgency
// emphasises anything that is not a donation offer.
func FormatEvent(e models.RealtimeEvent, now time.Time) Details {
	d := FormatDetails(e.Data, now)
	if e.Type != domain.EventDonationRequest && !d.Emphasized {
		d.Emphasized = IsEmphasized(e.Urgency, time.Time{}, now)
	}
	return d
}

// FormatDetails maps a payload to its display record. It never panics; nil
// and unknown payloads produce the Unknown placeholder.
func FormatDetails(p models.EventPayload, now time.Time) Details {
	d := formatPayload(p, now)
	d.Variant = UrgencyVariant(d.UrgencyLevel)
	d.Icon = UrgencyIcon(d.UrgencyLevel)
	return d
}

func formatPayload(p models.EventPayload, now time.Time) Details {
	switch v := p.(type) {
	case models.DonationOffer:
		return formatDonation(v, now)
	case *models.DonationOffer:
		if v == nil {
			return placeholder(now)
		}
		return formatDonation(*v, now)
	case models.BloodRequestAlert:
		return formatBloodRequest(v, now)
	case *models.BloodRequestAlert:
		if v == nil {
			return placeholder(now)
		}
		return formatBloodRequest(*v, now)
	default:
		return placeholder(now)
	}
}

func formatDonation(d models.DonationOffer, now time.Time) Details {
	return Details{
		Name:         orNotSpecified(d.DonorName),
		BloodType:    orNotSpecified(d.BloodType),
		Age:          ageString(d.Age.Int()),
		UnitsNeeded:  Units{Label: donationOffer},
		UrgencyLevel: domain.UrgencyNormal,
		Phone:        orNotSpecified(d.Phone),
		Hospital:     orNotSpecified(d.Location),
		Reason:       donationReason,
		TimeRequired: timeOr(d.PreferredDate, now),
		AdditionalInfo: map[string]any{
			"email":             orNotSpecified(d.Email),
			"location":          orNotSpecified(d.Location),
			"preferredDate":     orNotSpecified(d.PreferredDate),
			"medicalConditions": orNotSpecified(d.MedicalConditions),
			"consentGiven":      d.ConsentGiven,
		},
	}
}

func formatBloodRequest(r models.BloodRequestAlert, now time.Time) Details {
	age := r.PatientAge.Int()
	if age == 0 {
		age = r.Age.Int()
	}
	phone := r.ContactPhone
	if phone == "" {
		phone = r.Phone
	}
	deadline, _ := domain.ParseTime(r.RequiredBy)
	return Details{
		Name:         orNotSpecified(firstNonEmpty(r.PatientName, r.ContactPerson)),
		BloodType:    orNotSpecified(r.BloodType),
		Age:          ageString(age),
		UnitsNeeded:  Units{Count: r.UnitsNeeded.Int()},
		UrgencyLevel: urgencyLevel(r),
		Phone:        orNotSpecified(phone),
		Hospital:     orNotSpecified(r.HospitalName),
		Doctor:       orNotSpecified(r.ContactPerson),
		Reason:       orNotSpecified(r.MedicalReason),
		TimeRequired: timeOr(r.RequiredBy, now),
		Emphasized:   IsEmphasized(r.Urgency, deadline, now),
		AdditionalInfo: map[string]any{
			"email":         orNotSpecified(r.Email),
			"hospitalName":  orNotSpecified(r.HospitalName),
			"contactPerson": orNotSpecified(r.ContactPerson),
			"requiredBy":    orNotSpecified(r.RequiredBy),
			"medicalReason": orNotSpecified(r.MedicalReason),
			"location":      orNotSpecified(r.Location),
		},
	}
}

func urgencyLevel(r models.BloodRequestAlert) string {
	if r.UrgencyLevel != "" {
		return r.UrgencyLevel
	}
	if r.Urgency == domain.UrgencyHigh {
		return domain.UrgencyCritical
	}
	return domain.UrgencyMedium
}

func placeholder(now time.Time) Details {
	return Details{
		Name:           unknown,
		BloodType:      unknown,
		Age:            unknown,
		UnitsNeeded:    Units{Label: unknown},
		UrgencyLevel:   unknown,
		Phone:          unknown,
		Hospital:       unknown,
		Reason:         unknown,
		TimeRequired:   now,
		AdditionalInfo: map[string]any{},
	}
}

// UrgencyVariant maps an urgency level onto a visual variant.
func UrgencyVariant(level string) string {
	switch strings.ToLower(level) {
	case domain.UrgencyCritical:
		return "danger"
	case domain.UrgencyHigh:
		return "warning"
	case domain.UrgencyMedium:
		return "info"
	case domain.UrgencyLow, strings.ToLower(domain.UrgencyNormal):
		return "success"
	default:
		return "secondary"
	}
}

// UrgencyIcon uses the same keys as UrgencyVariant.
func UrgencyIcon(level string) string {
	switch strings.ToLower(level) {
	case domain.UrgencyCritical:
		return "exclamation-triangle"
	case domain.UrgencyHigh:
		return "exclamation-circle"
	case domain.UrgencyMedium:
		return "info-circle"
	case domain.UrgencyLow, strings.ToLower(domain.UrgencyNormal):
		return "check-circle"
	default:
		return "bell"
	}
}

// TypeIcon is the icon stored on a Notification of the given type.
func TypeIcon(notificationType string) string {
	switch notificationType {
	case domain.NotificationUrgent:
		return "exclamation-triangle"
	case domain.NotificationWarning:
		return "exclamation-circle"
	case domain.NotificationInfo:
		return "info-circle"
	case domain.NotificationSuccess:
		return "check-circle"
	default:
		return "bell"
	}
}

// IsUrgent reports whether timeRequired falls within 24 hours of now. A zero
// time is never urgent.
func IsUrgent(timeRequired, now time.Time) bool {
	if timeRequired.IsZero() {
		return false
	}
	return timeRequired.Sub(now) <= urgentWindow
}

// IsEmphasized combines the explicit high flag with the deadline signal.
func IsEmphasized(urgency string, timeRequired, now time.Time) bool {
	return strings.EqualFold(urgency, domain.UrgencyHigh) || IsUrgent(timeRequired, now)
}

func timeOr(s string, now time.Time) time.Time {
	if t, ok := domain.ParseTime(s); ok {
		return t
	}
	return now
}

func ageString(age int) string {
	if age <= 0 {
		return notSpecified
	}
	return strconv.Itoa(age)
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
