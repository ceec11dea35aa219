package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var slugExp = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CreateEventRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Date        string `json:"date" format:"RFC3339"`
	Location    string `json:"location"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Slug, validation.Required, validation.Length(2, 100), validation.Match(slugExp)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.Date, validation.Required, validation.Date("2006-01-02T15:04:05Z07:00")),
		validation.Field(&req.Location, validation.Required, validation.Length(2, 200)),
	)
}

type UpdateEventRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Date        string `json:"date" format:"RFC3339"`
	Location    string `json:"location"`
}

func (req *UpdateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Slug, validation.Required, validation.Length(2, 100), validation.Match(slugExp)),
		validation.Field(&req.Description, validation.Length(0, 1000)),
		validation.Field(&req.Date, validation.Required, validation.Date("2006-01-02T15:04:05Z07:00")),
		validation.Field(&req.Location, validation.Required, validation.Length(2, 200)),
	)
}
