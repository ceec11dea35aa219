package request

import (
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/opencampus-id/guestbook-api/internal/domain"
)

type CreateInstitutionRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (req *CreateInstitutionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 150)),
		validation.Field(&req.Type, validation.Required, validation.In(institutionTypes()...)),
	)
}

type UpdateInstitutionRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (req *UpdateInstitutionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 150)),
		validation.Field(&req.Type, validation.Required, validation.In(institutionTypes()...)),
	)
}

func institutionTypes() []interface{} {
	types := make([]interface{}, 0, len(domain.InstitutionTypes))
	for _, t := range domain.InstitutionTypes {
		types = append(types, t)
	}

	return types
}
