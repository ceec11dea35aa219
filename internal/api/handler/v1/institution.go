package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opencampus-id/guestbook-api/internal/api/handler/v1/request"
	"github.com/opencampus-id/guestbook-api/internal/api/handler/v1/response"
	"github.com/opencampus-id/guestbook-api/internal/domain"
	"github.com/opencampus-id/guestbook-api/internal/service"
)

type InstitutionService interface {
	GetInstitutions(ctx context.Context) ([]domain.Institution, error)
	GetInstitution(ctx context.Context, id uint) (domain.Institution, error)
	CreateInstitution(ctx context.Context, institution domain.Institution) (domain.Institution, error)
	UpdateInstitution(ctx context.Context, institution domain.Institution) (domain.Institution, error)
	DeleteInstitution(ctx context.Context, id uint) error
}

type InstitutionHandler struct {
	svc  InstitutionService
	uSvc UserService
}

func NewInstitutionHandler(svc InstitutionService, uSvc UserService) *InstitutionHandler {
	return &InstitutionHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListInstitutions godoc
// @Summary      List managed institutions
// @Description  The suggestion list shown on the check-in form. Public.
// @Tags         institutions
// @Produce      json
// @Success      200  {array}   domain.Institution
// @Failure      500  {object}  response.Err
// @Router       /institutions [get]
func (h *InstitutionHandler) HandleListInstitutions(ctx *gin.Context) {
	institutions, err := h.svc.GetInstitutions(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListInstitutions -> h.svc.GetInstitutions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, institutions)
}

// HandleGetInstitution godoc
// @Summary      Get an institution
// @Tags         institutions
// @Produce      json
// @Param        institutionID  path      int  true  "Institution ID"
// @Success      200  {object}  domain.Institution
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /institutions/{institutionID} [get]
// @Security     BearerAuth
func (h *InstitutionHandler) HandleGetInstitution(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	institutionID, err := strconv.ParseUint(ctx.Param("institutionID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid institution ID: %w", err)))
		return
	}

	institution, err := h.svc.GetInstitution(ctx.Request.Context(), uint(institutionID))
	if err != nil {
		if errors.Is(err, service.ErrInstitutionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("institution", "ID", institutionID))
			return
		}

		err = fmt.Errorf("v1.HandleGetInstitution -> h.svc.GetInstitution -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, institution)
}

// HandleCreateInstitution godoc
// @Summary      Create an institution
// @Tags         institutions
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateInstitutionRequest  true  "request body"
// @Success      201  {object}  domain.Institution
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /institutions [post]
// @Security     BearerAuth
func (h *InstitutionHandler) HandleCreateInstitution(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateInstitutionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateInstitution(ctx.Request.Context(), domain.Institution{
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		if errors.Is(err, service.ErrInstitutionNameExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrInstitutionNameExists))
			return
		}

		err = fmt.Errorf("v1.HandleCreateInstitution -> h.svc.CreateInstitution -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

// HandleUpdateInstitution godoc
// @Summary      Update an institution
// @Tags         institutions
// @Accept       json
// @Produce      json
// @Param        institutionID  path      int                                true  "Institution ID"
// @Param        request        body      request.UpdateInstitutionRequest  true  "request body"
// @Success      200  {object}  domain.Institution
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /institutions/{institutionID} [put]
// @Security     BearerAuth
func (h *InstitutionHandler) HandleUpdateInstitution(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	institutionID, err := strconv.ParseUint(ctx.Param("institutionID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid institution ID: %w", err)))
		return
	}

	var req request.UpdateInstitutionRequest
	if err = ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.UpdateInstitution(ctx.Request.Context(), domain.Institution{
		ID:   uint(institutionID),
		Name: req.Name,
		Type: req.Type,
	})
	if err != nil {
		if errors.Is(err, service.ErrInstitutionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("institution", "ID", institutionID))
			return
		}
		if errors.Is(err, service.ErrInstitutionNameExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrInstitutionNameExists))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateInstitution -> h.svc.UpdateInstitution -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// HandleDeleteInstitution godoc
// @Summary      Delete an institution
// @Description  Refused while attendance records still reference the institution.
// @Tags         institutions
// @Produce      json
// @Param        institutionID  path      int  true  "Institution ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /institutions/{institutionID} [delete]
// @Security     BearerAuth
func (h *InstitutionHandler) HandleDeleteInstitution(ctx *gin.Context) {
	if _, respErr := getUserFromContext(ctx, h.uSvc); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	institutionID, err := strconv.ParseUint(ctx.Param("institutionID"), 10, 64)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid institution ID: %w", err)))
		return
	}

	if err = h.svc.DeleteInstitution(ctx.Request.Context(), uint(institutionID)); err != nil {
		switch {
		case errors.Is(err, service.ErrInstitutionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("institution", "ID", institutionID))
		case errors.Is(err, service.ErrInstitutionInUse):
			response.RenderErr(ctx, response.ErrConflict(service.ErrInstitutionInUse))
		default:
			err = fmt.Errorf("v1.HandleDeleteInstitution -> h.svc.DeleteInstitution -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
