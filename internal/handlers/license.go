// internal/handlers/license.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/licensestack/ls-backend/internal/services"
	"github.com/licensestack/ls-backend/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /licenses
func (h *LicenseHandler) IssueLicense(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}

	var req services.IssueLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	license, err := h.licenseService.IssueLicense(c.Request.Context(), id, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"license":     license,
		"license_key": license.LicenseKey,
	})
}

// GET /licenses/recent
func (h *LicenseHandler) GetRecentLicenses(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	allIssuers := c.Query("all") == "true"

	licenses, err := h.licenseService.ListRecentLicenses(c.Request.Context(), id, limit, allIssuers)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"licenses": licenses,
	})
}
