package handler

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/vocabnote/internal/middleware"
	"github.com/xxxsen/vocabnote/internal/pkg/errcode"
	appErr "github.com/xxxsen/vocabnote/internal/pkg/errors"
	"github.com/xxxsen/vocabnote/internal/pkg/response"
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
			return handlePattern.MatchString(fl.Field().String())
		})
		if err != nil {
			panic(fmt.Sprintf("register handle validation: %v", err))
		}
	}
}

func getUserID(c *gin.Context) string {
	return middleware.UserID(c)
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get(middleware.ContextRequestIDKey)
	logutil.GetLogger(c.Request.Context()).Warn("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("user_id", getUserID(c)),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, appErr.ErrDuplicateHandle):
		response.Error(c, errcode.ErrDuplicateHandle, "user id already registered")
	case errors.Is(err, appErr.ErrInvalidCredentials):
		response.Error(c, errcode.ErrInvalidCredentials, "user id or password mismatch")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, errcode.ErrUnauthorized, "unauthorized")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, errcode.ErrForbidden, err.Error())
	case errors.Is(err, appErr.ErrNotFound):
		response.ErrorStatus(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.ErrorStatus(c, http.StatusBadRequest, errcode.ErrInvalid, err.Error())
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, errcode.ErrConflict, "conflict")
	case errors.Is(err, appErr.ErrUpstream):
		response.ErrorStatus(c, http.StatusBadGateway, errcode.ErrUpstream, "upstream unavailable")
	default:
		response.ErrorStatus(c, http.StatusInternalServerError, errcode.ErrInternal, "internal error")
	}
}
