package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON body rendered for every non-2xx response.
// The wrapped cause is logged, never sent to the client.
type Err struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"error"`

	cause error
}

func (e *Err) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}

	return e.Msg
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Msg:        err.Error(),
		cause:      err,
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "unauthorized",
		cause:      err,
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "wrong credentials",
		cause:      err,
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Msg:        "permission denied",
		cause:      err,
	}
}

func ErrNotFound(resource, key string, value interface{}) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Msg:        fmt.Sprintf("%v with %v (%v) is not found", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		Msg:        err.Error(),
		cause:      err,
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		StatusCode: http.StatusInternalServerError,
		Msg:        "internal server error",
		cause:      err,
	}
}

func RenderErr(ctx *gin.Context, err *Err) {
	logErr(err)

	ctx.JSON(err.StatusCode, err)
}

// AbortWithErr is RenderErr for middlewares, where the rest of the
// chain must not run.
func AbortWithErr(ctx *gin.Context, err *Err) {
	logErr(err)

	ctx.AbortWithStatusJSON(err.StatusCode, err)
}

func logErr(err *Err) {
	if err.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("server error", zap.Error(err.cause))

		return
	}

	zap.L().Info("client error", zap.Int("status_code", err.StatusCode), zap.Error(err.cause))
}
