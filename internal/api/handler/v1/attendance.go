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
	"github.com/opencampus-id/guestbook-api/internal/repository"
	"github.com/opencampus-id/guestbook-api/internal/service"
)

type AttendanceService interface {
	SubmitAttendance(ctx context.Context, eventSlug string, submission domain.AttendanceSubmission) (domain.AttendanceRecord, error)
	GetEventAttendance(ctx context.Context, eventID uint, filter repository.AttendanceFilter, page, pageSize int) (domain.Event, []domain.AttendanceRecord, int64, error)
	GetEventAttendanceBySlug(ctx context.Context, slug string, filter repository.AttendanceFilter, page, pageSize int) (domain.Event, []domain.AttendanceRecord, int64, error)
	GetEventAttendanceStats(ctx context.Context, eventID uint) (domain.Event, domain.AttendanceStats, []domain.InstitutionBreakdown, []domain.CategoryBreakdown, error)
	ExportEventAttendanceCSV(ctx context.Context, eventID uint, filter repository.AttendanceFilter) ([]byte, string, error)
	SearchAttendance(ctx context.Context, filter repository.AttendanceSearchFilter, page, pageSize int) ([]domain.AttendanceRecord, int64, error)
	DeleteAttendance(ctx context.Context, id uint) error
}

type AttendanceHandler struct {
	svc  AttendanceService
	uSvc UserService
}

func NewAttendanceHandler(svc AttendanceService, uSvc UserService) *AttendanceHandler {
	return &AttendanceHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleSubmitAttendance godoc
// @Summary      Check in a guest
// @Description  Records a guest arrival for the event identified by slug and notifies the event's live displays. No authentication; this is the kiosk endpoint.
// @Tags         attendances
// @Accept       json
// @Produce      json
// @Param        slug     path      string                           true  "Event slug"
// @Param        request  body      request.SubmitAttendanceRequest  true  "request body"
// @Success      201  {object}  domain.AttendanceRecord
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/slug/{slug}/attendance [post]
func (h *AttendanceHandler) HandleSubmitAttendance(ctx *gin.Context) {
	slug := ctx.Param("slug")

	var req request.SubmitAttendanceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	record, err := h.svc.SubmitAttendance(ctx.Request.Context(), slug, domain.AttendanceSubmission{
		GuestName:           req.GuestName,
		Institution:         req.Institution,
		Position:            req.Position,
		Phone:               req.Phone,
		Email:               req.Email,
		RepresentativeCount: req.RepresentativeCount,
		Category:            req.Category,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			response.RenderErr(ctx, response.ErrNotFound("event", "slug", slug))
		case errors.Is(err, service.ErrDuplicateAttendance):
			response.RenderErr(ctx, response.ErrConflict(service.ErrDuplicateAttendance))
		case errors.Is(err, service.ErrInvalidSubmission):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidSubmission))
		default:
			err = fmt.Errorf("v1.HandleSubmitAttendance -> h.svc.SubmitAttendance -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, record)
}

// HandleListEventAttendanceBySlug godoc
// @Summary      List check-ins for an event by slug
// @Description  The backlog endpoint live displays call on connect. No authentication.
// @Tags         attendances
// @Produce      json
// @Param        slug      path      string  true   "Event slug"
// @Param        page      query     int     false  "page number (default 1)"
// @Param        per_page  query     int     false  "page size (default 20, max 1000)"
// @Success      200  {object}  response.EventAttendanceResponse
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/slug/{slug}/attendances [get]
func (h *AttendanceHandler) HandleListEventAttendanceBySlug(ctx *gin.Context) {
	slug := ctx.Param("slug")

	page, perPage := getBacklogPagination(ctx)

	event, records, total, err := h.svc.GetEventAttendanceBySlug(ctx.Request.Context(), slug, repository.AttendanceFilter{}, page, perPage)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "slug", slug))
			return
		}

		err = fmt.Errorf("v1.HandleListEventAttendanceBySlug -> h.svc.GetEventAttendanceBySlug -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.EventAttendanceResponse{
		Event:       event,
		Attendances: records,
		Pagination:  response.NewPagination(page, perPage, total),
	})
}

// HandleListEventAttendance godoc
// @Summary      List check-ins for an event
// @Tags         attendances
// @Produce      json
// @Param        eventID      path      int     true   "Event ID"
// @Param        page         query     int     false  "page number (default 1)"
// @Param        per_page     query     int     false  "page size (default 20, max 100)"
// @Param        institution  query     string  false  "filter by institution"
// @Param        search       query     string  false  "match guest name or institution"
// @Success      200  {object}  response.EventAttendanceResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/attendances [get]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleListEventAttendance(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	page, perPage := getPagination(ctx)
	filter := repository.AttendanceFilter{
		Institution: ctx.Query("institution"),
		Search:      ctx.Query("search"),
	}

	event, records, total, err := h.svc.GetEventAttendance(ctx.Request.Context(), uint(eventID), filter, page, perPage)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleListEventAttendance -> h.svc.GetEventAttendance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.EventAttendanceResponse{
		Event:       event,
		Attendances: records,
		Pagination:  response.NewPagination(page, perPage, total),
	})
}

// HandleGetEventAttendanceStats godoc
// @Summary      Attendance aggregates for an event
// @Tags         attendances
// @Produce      json
// @Param        eventID  path      int  true  "Event ID"
// @Success      200  {object}  response.AttendanceStatsResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/attendances/stats [get]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleGetEventAttendanceStats(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	event, stats, byInstitution, byCategory, err := h.svc.GetEventAttendanceStats(ctx.Request.Context(), uint(eventID))
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleGetEventAttendanceStats -> h.svc.GetEventAttendanceStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.AttendanceStatsResponse{
		Event:         event,
		Stats:         stats,
		ByInstitution: byInstitution,
		ByCategory:    byCategory,
	})
}

// HandleExportEventAttendance godoc
// @Summary      Export an event's check-ins as CSV
// @Tags         attendances
// @Produce      text/csv
// @Param        eventID      path      int     true   "Event ID"
// @Param        institution  query     string  false  "filter by institution"
// @Param        search       query     string  false  "match guest name or institution"
// @Success      200  {string}  string  "CSV file"
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /events/{eventID}/attendances/export [get]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleExportEventAttendance(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	eventID, err := strconv.ParseUint(ctx.Param("eventID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event ID: %w", err)))
		return
	}

	filter := repository.AttendanceFilter{
		Institution: ctx.Query("institution"),
		Search:      ctx.Query("search"),
	}

	data, filename, err := h.svc.ExportEventAttendanceCSV(ctx.Request.Context(), uint(eventID), filter)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("event", "ID", eventID))
			return
		}

		err = fmt.Errorf("v1.HandleExportEventAttendance -> h.svc.ExportEventAttendanceCSV -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Data(http.StatusOK, "text/csv", data)
}

// HandleSearchAttendance godoc
// @Summary      Search check-ins across all events
// @Tags         attendances
// @Produce      json
// @Param        q            query     string  false  "match guest name, institution or position"
// @Param        event_id     query     int     false  "restrict to one event"
// @Param        institution  query     string  false  "filter by institution"
// @Param        category     query     string  false  "filter by category"
// @Param        start_date   query     string  false  "RFC3339 lower bound on arrival time"
// @Param        end_date     query     string  false  "RFC3339 upper bound on arrival time"
// @Param        page         query     int     false  "page number (default 1)"
// @Param        per_page     query     int     false  "page size (default 20, max 100)"
// @Success      200  {object}  response.SearchAttendanceResponse
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /attendances/search [get]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleSearchAttendance(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := repository.AttendanceSearchFilter{
		Query:       ctx.Query("q"),
		Institution: ctx.Query("institution"),
		Category:    ctx.Query("category"),
	}

	if raw := ctx.Query("event_id"); raw != "" {
		eventID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid event_id: %w", err)))
			return
		}
		filter.EventID = uint(eventID)
	}

	if raw := ctx.Query("start_date"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid start_date: %w", err)))
			return
		}
		filter.StartDate = &start
	}

	if raw := ctx.Query("end_date"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid end_date: %w", err)))
			return
		}
		filter.EndDate = &end
	}

	page, perPage := getPagination(ctx)

	records, total, err := h.svc.SearchAttendance(ctx.Request.Context(), filter, page, perPage)
	if err != nil {
		err = fmt.Errorf("v1.HandleSearchAttendance -> h.svc.SearchAttendance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.SearchAttendanceResponse{
		Attendances: records,
		Pagination:  response.NewPagination(page, perPage, total),
	})
}

// HandleDeleteAttendance godoc
// @Summary      Delete a check-in
// @Description  Records are append-only otherwise; deletion is the only correction operators have.
// @Tags         attendances
// @Produce      json
// @Param        attendanceID  path      int  true  "Attendance ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /attendances/{attendanceID} [delete]
// @Security     BearerAuth
func (h *AttendanceHandler) HandleDeleteAttendance(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	attendanceID, err := strconv.ParseUint(ctx.Param("attendanceID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid attendance ID: %w", err)))
		return
	}

	if err = h.svc.DeleteAttendance(ctx.Request.Context(), uint(attendanceID)); err != nil {
		if errors.Is(err, service.ErrAttendanceNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("attendance", "ID", attendanceID))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteAttendance -> h.svc.DeleteAttendance -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Displays load their whole backlog in one page, so the cap is higher
// than the operator listing default.
func getBacklogPagination(ctx *gin.Context) (page, perPage int) {
	page, err := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err = strconv.Atoi(ctx.DefaultQuery("per_page", "1000"))
	if err != nil || perPage < 1 || perPage > 1000 {
		perPage = 1000
	}

	return page, perPage
}
