package domain

import "time"

type Event struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EventStats is the aggregate view shown on the event detail page.
type EventStats struct {
	TotalAttendees    int64 `json:"total_attendees"`
	TotalInstitutions int64 `json:"total_institutions"`
	TotalRepresented  int64 `json:"total_represented"`
}

type EventWithStats struct {
	Event
	EventStats
}

// SystemStats aggregates across the whole deployment.
type SystemStats struct {
	TotalEvents       int64 `json:"total_events"`
	TotalAttendees    int64 `json:"total_attendees"`
	TotalInstitutions int64 `json:"total_institutions"`
}
