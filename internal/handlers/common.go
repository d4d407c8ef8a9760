// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/licensestack/ls-backend/internal/services"
	"github.com/licensestack/ls-backend/internal/utils"
)

// serviceErrorResponse maps the service error taxonomy to API error
// codes. Policy blocks (BUYER_LIMIT_EXCEEDED, QUOTA_EXCEEDED) are
// deliberate refusals the caller should not retry; INTERNAL_ERROR marks
// system failure where a retry may help.
func serviceErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSoftwareNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "SOFTWARE_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrSoftwareInactive):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "SOFTWARE_INACTIVE", err.Error(), nil)
	case errors.Is(err, services.ErrBuyerLimitExceeded):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "BUYER_LIMIT_EXCEEDED", err.Error(), nil)
	case errors.Is(err, services.ErrQuotaExceeded):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "QUOTA_EXCEEDED", err.Error(), nil)
	case errors.Is(err, services.ErrInvalidQuota):
		utils.ErrorResponse(c, http.StatusUnprocessableEntity, "INVALID_QUOTA", err.Error(), nil)
	case errors.Is(err, services.ErrKeyGenerationExhausted):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "KEY_GENERATION_EXHAUSTED", err.Error(), nil)
	case errors.Is(err, services.ErrUserNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, services.ErrLicenseNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "LICENSE_NOT_FOUND", err.Error(), nil)
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}

// principalID parses the authenticated user id set by AuthRequired.
func principalID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(userIDStr)
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return uuid.Nil, false
	}

	return id, true
}
