package handler

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tokencrypt-go/internal/errors"
	"github.com/tokencrypt-go/internal/trace"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// RespondError writes a JSON error response with logging and aborts the chain
func RespondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.NewInternalWithCause("Internal server error", err)
	}

	prefix := trace.LogPrefix(c.Request.Context(), "error")
	evt := log.Warn()
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		evt = log.Error()
	}
	if appErr.Cause != nil {
		evt = evt.Err(appErr.Cause)
	}
	evt.Int("code", int(appErr.Code)).Msg(prefix + " " + appErr.Message)

	// causes of server-side failures stay in the log
	msg := appErr.Error()
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		msg = appErr.Message
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, APIResponse{
		Code: int(appErr.Code),
		Msg:  msg,
	})
}

// RespondSuccess writes a JSON success response
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Code: 0,
		Data: data,
	})
}

// RespondSuccessMsg writes a JSON success response with a message
func RespondSuccessMsg(c *gin.Context, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Code: 0,
		Msg:  message,
	})
}
