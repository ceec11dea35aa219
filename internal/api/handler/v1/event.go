package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/opencampus-id/guestbook-api/internal/api/handler/v1/request"
	"github.com/opencampus-id/guestbook-api/internal/api/handler/v1/response"
	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/service"
)

type EventService interface {
	GetEvents(ctx context.Context, page, pageSize int) ([]domain.Event, int64, error)
	GetUpcomingEvents(ctx context.Context, limit int) ([]domain.Event, error)
	GetPastEvents(ctx context.Context, limit int) ([]domain.Event, error)
	GetEvent(ctx context.Context, id uint) (domain.EventWithStats, error)
	GetEventBySlug(ctx context.Context, slug string) (domain.Event, error)
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	DeleteEvent(ctx context.Context, id uint) error
	GetSystemStats(ctx context.Context) (domain.SystemStats, error)
}

type EventHandler struct {
	svc  EventService
	uSvc UserService
}

func NewEventHandler(svc EventService, uSvc UserService) *EventHandler {
	return &EventHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListEvents godoc
// @Summary      List events
// @Tags         events
// @Produce      json
// @Param        page      query     int  false  "page number (default 1)"
// @Param        per_page  query     int  false  "page size (default 20, max 100)"
// @Success      200  {object}  response.ListEventsResponse
// @Failure      500  {object}  response.Err
// @Router       /events [get]
func (h *EventHandler) HandleListEvents(ctx *gin.Context) {
	page, perPage := getPagination(ctx)

	events, total, err := h.svc.GetEvents(ctx.Request.Context(), page, perPage)
	if err != nil {
		err = fmt.Errorf("v1.HandleListEvents -> h.svc.GetEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ListEventsResponse{
		Events:     events,
		Pagination: response.NewPagination(page, perPage, total),
	})
}

// HandleGetUpcomingEvents godoc
// @Summary      List upcoming events
// @Tags         events
// @Produce      json
// @Param        limit  query     int  false  "max events to return (default 10)"
// @Success      200  {array}   domain.Event
// @Failure      500  {object}  response.Err
// @Router       /events/upcoming [get]
func (h *EventHandler) HandleGetUpcomingEvents(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	events, err := h.svc.GetUpcomingEvents(ctx.Request.Context(), limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetUpcomingEvents -> h.svc.GetUpcomingEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetPastEvents godoc
// @Summary      List past events
// @Tags         events
// @Produce      json
// @Param        limit  query     int  false  "max events to return (default 10)"
// @Success      200  {array}   domain.Event
// @Failure      500  {object}  response.Err
// @Router       /events/past [get]
func (h *EventHandler) HandleGetPastEvents(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	events, err := h.svc.GetPastEvents(ctx.Request.Context(), limit)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetPastEvents -> h.svc.GetPastEvents -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// HandleGetEvent godoc
// @Summary      Get an event with attendance aggregates
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {object}  domain.EventWithStats
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [get]
func (h *EventHandler) HandleGetEvent(ctx *gin.Context) {
	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	event, err := h.svc.GetEvent(ctx.Request.Context(), uint(eventID))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEvent -> h.svc.GetEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleGetEventBySlug godoc
// @Summary      Get an event by slug
// @Description  The public lookup used by check-in kiosks and displays.
// @Tags         events
// @Produce      json
// @Param        slug  path      string  true  "Event slug"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/slug/{slug} [get]
func (h *EventHandler) HandleGetEventBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")

	event, err := h.svc.GetEventBySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "slug", slug))
			return
		}

		err = fmt.Errorf("v1.HandleGetEventBySlug -> h.svc.GetEventBySlug -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// HandleCreateEvent godoc
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateEventRequest  true  "request body"
// @Success      201  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events [post]
// @Security     BearerAuth
func (h *EventHandler) HandleCreateEvent(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid date format: %w", err)))
		return
	}

	created, err := h.svc.CreateEvent(ctx.Request.Context(), domain.Event{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
	})
	if err != nil {
		if errors.Is(err, service.ErrEventSlugExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrEventSlugExists))
			return
		}

		err = fmt.Errorf("v1.HandleCreateEvent -> h.svc.CreateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateEvent godoc
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Param        eventID  path      int                          true  "Event ID"
// @Param        request  body      request.UpdateEventRequest  true  "request body"
// @Success      200  {object}  domain.Event
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [put]
// @Security     BearerAuth
func (h *EventHandler) HandleUpdateEvent(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	var req request.UpdateEventRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid date format: %w", err)))
		return
	}

	updated, err := h.svc.UpdateEvent(ctx.Request.Context(), domain.Event{
		ID:          uint(eventID),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
	})
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}
		if errors.Is(err, service.ErrEventSlugExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrEventSlugExists))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateEvent -> h.svc.UpdateEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteEvent godoc
// @Summary      Delete an event and its attendance records
// @Tags         events
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID} [delete]
// @Security     BearerAuth
func (h *EventHandler) HandleDeleteEvent(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	if err = h.svc.DeleteEvent(ctx.Request.Context(), uint(eventID)); err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteEvent -> h.svc.DeleteEvent -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetSystemStats godoc
// @Summary      Deployment-wide totals
// @Tags         events
// @Produce      json
// @Success      200  {object}  domain.SystemStats
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /stats [get]
// @Security     BearerAuth
func (h *EventHandler) HandleGetSystemStats(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stats, err := h.svc.GetSystemStats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetSystemStats -> h.svc.GetSystemStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func getPagination(ctx *gin.Context) (page, perPage int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err = strconv.Atoi(ctx.DefaultQuery("per_page", "20"))
	if err != nil || perPage < 1 || perPage > 100 {
		perPage = 20
	}

	return page, perPage
}
