package response

import "github.com/opencampus-id/guestbook-api/internal/domain"

type ListEventsResponse struct {
	Events     []domain.Event `json:"events"`
	Pagination Pagination     `json:"pagination"`
}
