package response

import "github.com/opencampus-id/guestbook-api/internal/domain"

type EventAttendanceResponse struct {
	Event       domain.Event              `json:"event"`
	Attendances []domain.AttendanceRecord `json:"attendances"`
	Pagination  Pagination                `json:"pagination"`
}

type AttendanceStatsResponse struct {
	Event         domain.Event                  `json:"event"`
	Stats         domain.AttendanceStats        `json:"stats"`
	ByInstitution []domain.InstitutionBreakdown `json:"by_institution"`
	ByCategory    []domain.CategoryBreakdown    `json:"by_category"`
}

type SearchAttendanceResponse struct {
	Attendances []domain.AttendanceRecord `json:"attendances"`
	Pagination  Pagination                `json:"pagination"`
}
