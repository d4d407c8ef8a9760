// internal/handlers/verification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/licensestack/ls-backend/internal/services"
	"github.com/licensestack/ls-backend/internal/utils"
)

type VerificationHandler struct {
	licenseService *services.LicenseService
}

func NewVerificationHandler(licenseService *services.LicenseService) *VerificationHandler {
	return &VerificationHandler{
		licenseService: licenseService,
	}
}

// GET /verify/:key
func (h *VerificationHandler) VerifyLicenseKey(c *gin.Context) {
	key := c.Param("key")

	license, err := h.licenseService.GetLicenseByKey(c.Request.Context(), key)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"valid": true,
		"license": gin.H{
			"license_key": license.LicenseKey,
			"software": gin.H{
				"name":    license.Software.Name,
				"type":    license.Software.Type,
				"version": license.Software.Version,
			},
			"buyer_name":  license.BuyerName,
			"buyer_email": license.BuyerEmail,
			"issued_at":   license.CreatedAt,
		},
	})
}
