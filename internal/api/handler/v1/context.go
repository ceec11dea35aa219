package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/opencampus-id/guestbook-api/internal/api/handler/v1/response"
	"github.com/opencampus-id/guestbook-api/internal/api/middleware"
	"github.com/opencampus-id/guestbook-api/internal/domain"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
}

func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return domain.User{}, response.ErrUnauthorized(errors.New("user ID not found in context"))
	}

	userID, ok := value.(uint)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(fmt.Errorf("invalid user ID in context (%v)", value))
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		return domain.User{}, response.ErrUnauthorized(fmt.Errorf("uSvc.GetUser -> %w", err))
	}

	return user, nil
}
