package domain

import "time"

const (
	InstitutionUniversity = "university"
	InstitutionSchool     = "school"
	InstitutionGovernment = "government"
	InstitutionCompany    = "company"
	InstitutionOther      = "other"
)

var InstitutionTypes = []string{
	InstitutionUniversity,
	InstitutionSchool,
	InstitutionGovernment,
	InstitutionCompany,
	InstitutionOther,
}

type Institution struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
