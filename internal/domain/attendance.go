package domain

import "time"

// Attendance categories. The display translates these for presentation;
// the API stores the raw value.
const (
	CategoryGuest              = "guest"
	CategoryOfficialInvitation = "official_invitation"
	CategorySponsor            = "sponsor"
	CategorySpeaker            = "speaker"
	CategoryMedia              = "media"
	CategoryOther              = "other"
)

var AttendanceCategories = []string{
	CategoryGuest,
	CategoryOfficialInvitation,
	CategorySponsor,
	CategorySpeaker,
	CategoryMedia,
	CategoryOther,
}

// AttendanceRecord is one guest check-in. Records are immutable once
// written; operators may only delete them.
type AttendanceRecord struct {
	ID                  uint      `json:"id"`
	EventID             uint      `json:"event_id"`
	GuestName           string    `json:"guest_name"`
	Institution         string    `json:"institution"`
	InstitutionID       *uint     `json:"institution_id,omitempty"`
	Position            string    `json:"position,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	Email               string    `json:"email,omitempty"`
	RepresentativeCount int       `json:"representative_count"`
	Category            string    `json:"category"`
	ArrivalTime         time.Time `json:"arrival_time"`
	EventName           string    `json:"event_name,omitempty"`
	EventSlug           string    `json:"event_slug,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// AttendanceSubmission carries the guest-provided fields of a check-in,
// before defaults are applied.
type AttendanceSubmission struct {
	GuestName           string
	Institution         string
	Position            string
	Phone               string
	Email               string
	RepresentativeCount int
	Category            string
}

// AttendanceStats summarizes check-ins for one event.
type AttendanceStats struct {
	TotalAttendees   int64      `json:"total_attendees"`
	TotalInstitution int64      `json:"total_institutions"`
	TotalRepresented int64      `json:"total_represented"`
	AvgRepresented   float64    `json:"avg_represented"`
	FirstArrival     *time.Time `json:"first_arrival"`
	LastArrival      *time.Time `json:"last_arrival"`
}

type InstitutionBreakdown struct {
	Institution      string `json:"institution"`
	AttendeeCount    int64  `json:"attendee_count"`
	TotalRepresented int64  `json:"total_represented"`
}

type CategoryBreakdown struct {
	Category         string `json:"category"`
	AttendeeCount    int64  `json:"attendee_count"`
	TotalRepresented int64  `json:"total_represented"`
}
