package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/feral-file/ff-balance/internal/api/shared/errors"
	"github.com/feral-file/ff-balance/internal/domain"
	"github.com/feral-file/ff-balance/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(message))
}

// respondConflict responds with a conflict error
func respondConflict(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusConflict, apierrors.NewConflictError(message, details...))
}

// respondInternalError logs err and responds with an internal server error
func respondInternalError(c *gin.Context, err error, message string) {
	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}

// respondServiceError maps a service error to its API error
func respondServiceError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		respondNotFound(c, "Account not found", err.Error())
	case errors.Is(err, domain.ErrInitialBalanceExists):
		respondConflict(c, "Initial balance already exists", "set overwrite to replace it")
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedBlockchain):
		respondValidationError(c, err.Error())
	default:
		respondInternalError(c, err, message)
	}
}
