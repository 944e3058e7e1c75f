package formatter

import (
	"encoding/json"
	"testing"
	"time"

	"bloodalert/internal/models"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFormatDetails_BloodRequestHighBecomesCritical(t *testing.T) {
	d := FormatDetails(models.BloodRequestAlert{
		PatientName: "Kofi",
		BloodType:   "O-",
		UnitsNeeded: 4,
		Urgency:     "high",
	}, now)
	if d.UrgencyLevel != "critical" {
		t.Errorf("expected critical, got %q", d.UrgencyLevel)
	}
	if d.UnitsNeeded.Count != 4 || d.UnitsNeeded.Label != "" {
		t.Errorf("expected numeric 4 units, got %+v", d.UnitsNeeded)
	}
}

func TestFormatDetails_BloodRequestFallbacks(t *testing.T) {
	d := FormatDetails(models.BloodRequestAlert{
		ContactPerson: "Dr. Mensah",
		Age:           40,
		Phone:         "0200000000",
		Urgency:       "normal",
		RequiredBy:    "2026-03-02T08:00:00Z",
	}, now)
	if d.Name != "Dr. Mensah" {
		t.Errorf("expected contact person as name, got %q", d.Name)
	}
	if d.Doctor != "Dr. Mensah" {
		t.Errorf("expected contact person as doctor, got %q", d.Doctor)
	}
	if d.Age != "40" || d.Phone != "0200000000" {
		t.Errorf("expected age/phone fallbacks, got %q/%q", d.Age, d.Phone)
	}
	if d.UrgencyLevel != "medium" {
		t.Errorf("expected medium, got %q", d.UrgencyLevel)
	}
	if d.Hospital != notSpecified {
		t.Errorf("expected hospital %q, got %q", notSpecified, d.Hospital)
	}
	want := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	if !d.TimeRequired.Equal(want) {
		t.Errorf("expected time required %v, got %v", want, d.TimeRequired)
	}
}

func TestFormatDetails_ExplicitUrgencyLevelWins(t *testing.T) {
	d := FormatDetails(models.BloodRequestAlert{Urgency: "high", UrgencyLevel: "low"}, now)
	if d.UrgencyLevel != "low" {
		t.Errorf("expected explicit level to win, got %q", d.UrgencyLevel)
	}
}

func TestFormatDetails_DonationOfferLiteralUnits(t *testing.T) {
	offers := []models.DonationOffer{
		{},
		{DonorName: "Ama", BloodType: "A+", Age: 29, Location: "Accra", PreferredDate: "2026-03-05"},
	}
	for _, o := range offers {
		d := FormatDetails(o, now)
		if d.UnitsNeeded.Label != "Donation Offer" {
			t.Errorf("expected literal Donation Offer, got %+v", d.UnitsNeeded)
		}
		b, err := json.Marshal(d.UnitsNeeded)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(b) != `"Donation Offer"` {
			t.Errorf("expected JSON string, got %s", b)
		}
		if d.UrgencyLevel != "Normal" || d.Reason != "Blood Donation" {
			t.Errorf("unexpected urgency/reason %q/%q", d.UrgencyLevel, d.Reason)
		}
	}

	d := FormatDetails(offers[1], now)
	if d.Hospital != "Accra" {
		t.Errorf("expected location as hospital, got %q", d.Hospital)
	}
	if d.TimeRequired.Format("2006-01-02") != "2026-03-05" {
		t.Errorf("expected preferred date, got %v", d.TimeRequired)
	}
	if !FormatDetails(offers[0], now).TimeRequired.Equal(now) {
		t.Error("expected missing preferred date to default to now")
	}
}

func TestFormatDetails_UnknownNeverPanics(t *testing.T) {
	inputs := []models.EventPayload{
		nil,
		models.UnknownPayload{Type: "mystery"},
		(*models.DonationOffer)(nil),
		(*models.BloodRequestAlert)(nil),
	}
	for _, in := range inputs {
		d := FormatDetails(in, now)
		if d.Name != "Unknown" || d.UnitsNeeded.String() != "Unknown" {
			t.Errorf("input %T: expected Unknown placeholder, got %+v", in, d)
		}
	}
}

func TestUrgencyVariantAndIcon(t *testing.T) {
	tests := []struct{ level, variant, icon string }{
		{"critical", "danger", "exclamation-triangle"},
		{"high", "warning", "exclamation-circle"},
		{"medium", "info", "info-circle"},
		{"low", "success", "check-circle"},
		{"Normal", "success", "check-circle"},
		{"", "secondary", "bell"},
		{"whatever", "secondary", "bell"},
	}
	for _, tt := range tests {
		if got := UrgencyVariant(tt.level); got != tt.variant {
			t.Errorf("UrgencyVariant(%q) = %q, want %q", tt.level, got, tt.variant)
		}
		if got := UrgencyIcon(tt.level); got != tt.icon {
			t.Errorf("UrgencyIcon(%q) = %q, want %q", tt.level, got, tt.icon)
		}
	}
}

func TestIsUrgentAndEmphasized(t *testing.T) {
	if !IsUrgent(now.Add(23*time.Hour), now) {
		t.Error("23h away should be urgent")
	}
	if !IsUrgent(now.Add(24*time.Hour), now) {
		t.Error("exactly 24h away should be urgent")
	}
	if IsUrgent(now.Add(25*time.Hour), now) {
		t.Error("25h away should not be urgent")
	}
	if !IsUrgent(now.Add(-time.Hour), now) {
		t.Error("past deadline should be urgent")
	}
	if IsUrgent(time.Time{}, now) {
		t.Error("zero time should not be urgent")
	}

	if !IsEmphasized("high", now.Add(72*time.Hour), now) {
		t.Error("explicit high should be emphasised")
	}
	if !IsEmphasized("", now.Add(time.Hour), now) {
		t.Error("near deadline should be emphasised")
	}
	if IsEmphasized("normal", now.Add(72*time.Hour), now) {
		t.Error("normal far deadline should not be emphasised")
	}
}

func TestFormatDetails_StringNumbers(t *testing.T) {
	p := models.DecodePayload(json.RawMessage(`{"type":"blood_request","_id":"r1","patientName":"Kofi","unitsNeeded":"2","patientAge":"30","urgency":"high"}`))
	d := FormatDetails(p, now)
	if d.Name != "Kofi" || d.Age != "30" || d.UnitsNeeded.String() != "2" {
		t.Errorf("expected numeric strings to survive, got %+v", d)
	}
	if d.UrgencyLevel != "critical" || d.Variant != "danger" || d.Icon != "exclamation-triangle" || !d.Emphasized {
		t.Errorf("unexpected presentation %q/%q/%q/%v", d.UrgencyLevel, d.Variant, d.Icon, d.Emphasized)
	}
}

func TestFormatDetails_PresentationFields(t *testing.T) {
	tests := []struct {
		name       string
		in         models.EventPayload
		variant    string
		icon       string
		emphasized bool
	}{
		{"donation", models.DonationOffer{DonorName: "Ama"}, "success", "check-circle", false},
		{"normal far request", models.BloodRequestAlert{Urgency: "normal", RequiredBy: "2026-03-10"}, "info", "info-circle", false},
		{"normal near request", models.BloodRequestAlert{Urgency: "normal", RequiredBy: "2026-03-01T20:00:00Z"}, "info", "info-circle", true},
		{"no deadline", models.BloodRequestAlert{Urgency: "normal"}, "info", "info-circle", false},
		{"unknown", nil, "secondary", "bell", false},
	}
	for _, tt := range tests {
		d := FormatDetails(tt.in, now)
		if d.Variant != tt.variant || d.Icon != tt.icon || d.Emphasized != tt.emphasized {
			t.Errorf("%s: got %q/%q/%v, want %q/%q/%v", tt.name, d.Variant, d.Icon, d.Emphasized, tt.variant, tt.icon, tt.emphasized)
		}
	}
}

func TestFormatEvent_FrameUrgency(t *testing.T) {
	ev := models.RealtimeEvent{Type: "blood_request", Urgency: "high", Data: models.BloodRequestAlert{Urgency: "normal"}}
	if !FormatEvent(ev, now).Emphasized {
		t.Error("high frame urgency should emphasise a blood request")
	}
	ev = models.RealtimeEvent{Type: "donation_request", Urgency: "high", Data: models.DonationOffer{}}
	if FormatEvent(ev, now).Emphasized {
		t.Error("donation offers are never emphasised")
	}
}
