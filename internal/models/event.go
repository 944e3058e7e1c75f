package models

import (
	"encoding/json"
	"time"

	"bloodalert/internal/domain"
)

// EventPayload is one of DonationOffer, BloodRequestAlert or UnknownPayload.
type EventPayload interface {
	EventType() domain.EventType
	PayloadID() string
}

type DonationOffer struct {
	Type              domain.EventType `json:"type"`
	ID                string           `json:"_id"`
	DonorName         string           `json:"donorName"`
	BloodType         string           `json:"bloodType"`
	Age               Number           `json:"age,omitempty"`
	Phone             string           `json:"phone,omitempty"`
	Email             string           `json:"email,omitempty"`
	Location          string           `json:"location,omitempty"`
	PreferredDate     string           `json:"preferredDate,omitempty"`
	MedicalConditions string           `json:"medicalConditions,omitempty"`
	ConsentGiven      bool             `json:"consentGiven"`
}

func (DonationOffer) EventType() domain.EventType { return domain.EventDonationRequest }
func (p DonationOffer) PayloadID() string         { return p.ID }

type BloodRequestAlert struct {
	Type          domain.EventType `json:"type"`
	ID            string           `json:"_id"`
	PatientName   string           `json:"patientName,omitempty"`
	ContactPerson string           `json:"contactPerson,omitempty"`
	BloodType     string           `json:"bloodType"`
	PatientAge    Number           `json:"patientAge,omitempty"`
	Age           Number           `json:"age,omitempty"`
	UnitsNeeded   Number           `json:"unitsNeeded"`
	UrgencyLevel  string           `json:"urgencyLevel,omitempty"`
	Urgency       string           `json:"urgency,omitempty"`
	ContactPhone  string           `json:"contactPhone,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	HospitalName  string           `json:"hospitalName,omitempty"`
	MedicalReason string           `json:"medicalReason,omitempty"`
	RequiredBy    string           `json:"requiredBy,omitempty"`
	Email         string           `json:"email,omitempty"`
	Location      string           `json:"location,omitempty"`
}

func (BloodRequestAlert) EventType() domain.EventType { return domain.EventBloodRequest }
func (p BloodRequestAlert) PayloadID() string         { return p.ID }

// UnknownPayload carries whatever type tag and id arrived, possibly empty.
type UnknownPayload struct {
	Type string `json:"type"`
	ID   string `json:"_id,omitempty"`
}

func (UnknownPayload) EventType() domain.EventType { return "" }
func (p UnknownPayload) PayloadID() string         { return p.ID }

func NewDonationOffer(d *Donation) DonationOffer {
	return DonationOffer{
		Type:              domain.EventDonationRequest,
		ID:                d.ID,
		DonorName:         d.DonorName,
		BloodType:         d.BloodGroup,
		Age:               Number(d.Age),
		Phone:             d.Phone,
		Email:             d.Email,
		Location:          d.Location,
		PreferredDate:     d.PreferredDate,
		MedicalConditions: d.MedicalConditions,
		ConsentGiven:      d.ConsentGiven,
	}
}

func NewBloodRequestAlert(r *BloodRequest) BloodRequestAlert {
	return BloodRequestAlert{
		Type:          domain.EventBloodRequest,
		ID:            r.ID,
		PatientName:   r.PatientName,
		ContactPerson: r.ContactPerson,
		BloodType:     r.BloodGroup,
		PatientAge:    Number(r.PatientAge),
		UnitsNeeded:   Number(r.UnitsNeeded),
		UrgencyLevel:  r.UrgencyLevel,
		Urgency:       r.Urgency,
		ContactPhone:  r.ContactPhone,
		HospitalName:  r.Hospital,
		MedicalReason: r.MedicalReason,
		RequiredBy:    r.RequiredBy,
		Email:         r.Email,
		Location:      r.Location,
	}
}

// DecodePayload picks the variant from the embedded "type" tag. Malformed
// input decodes to UnknownPayload rather than failing.
func DecodePayload(raw json.RawMessage) EventPayload {
	var tag UnknownPayload
	if len(raw) == 0 || json.Unmarshal(raw, &tag) != nil {
		return UnknownPayload{}
	}
	switch domain.EventType(tag.Type) {
	case domain.EventDonationRequest:
		var p DonationOffer
		if json.Unmarshal(raw, &p) != nil {
			return tag
		}
		return p
	case domain.EventBloodRequest:
		var p BloodRequestAlert
		if json.Unmarshal(raw, &p) != nil {
			return tag
		}
		return p
	default:
		return tag
	}
}

// Frame is the push channel wire envelope.
type Frame struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
	Urgency   string          `json:"urgency,omitempty"`
}

// RealtimeEvent is a push channel event after ingestion.
type RealtimeEvent struct {
	ID        string           `json:"id"`
	Type      domain.EventType `json:"type"`
	Data      EventPayload     `json:"data"`
	Timestamp time.Time        `json:"timestamp"`
	Urgency   string           `json:"urgency,omitempty"`
	Read      bool             `json:"read"`
}
