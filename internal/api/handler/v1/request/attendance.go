package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/opencampus-id/guestbook-api/internal/domain"
)

type SubmitAttendanceRequest struct {
	GuestName           string `json:"guest_name"`
	Institution         string `json:"institution"`
	Position            string `json:"position"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	RepresentativeCount int    `json:"representative_count"`
	Category            string `json:"category"`
}

func (req *SubmitAttendanceRequest) Validate() error {
	categories := make([]interface{}, 0, len(domain.AttendanceCategories))
	for _, c := range domain.AttendanceCategories {
		categories = append(categories, c)
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.GuestName, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Institution, validation.Required, validation.Length(2, 150)),
		validation.Field(&req.Position, validation.Length(0, 100)),
		validation.Field(&req.Phone, validation.Length(0, 30)),
		validation.Field(&req.Email, is.Email),
		validation.Field(&req.RepresentativeCount, validation.Min(0), validation.Max(100)),
		validation.Field(&req.Category, validation.In(categories...)),
	)
}
