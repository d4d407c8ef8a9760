// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/licensestack/ls-backend/internal/services"
	"github.com/licensestack/ls-backend/internal/utils"
)

type AdminHandler struct {
	adminService  *services.AdminService
	apiKeyService *services.APIKeyService
}

func NewAdminHandler(adminService *services.AdminService, apiKeyService *services.APIKeyService) *AdminHandler {
	return &AdminHandler{
		adminService:  adminService,
		apiKeyService: apiKeyService,
	}
}

// GET /admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, recent, err := h.adminService.GetDashboardStats(c.Request.Context())
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats":           stats,
		"recent_licenses": recent,
	})
}

// POST /admin/resellers
func (h *AdminHandler) CreateReseller(c *gin.Context) {
	var req services.CreateResellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	reseller, err := h.adminService.CreateReseller(c.Request.Context(), &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"reseller": reseller,
	})
}

// GET /admin/resellers
func (h *AdminHandler) GetResellers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	resellers, total, err := h.adminService.ListResellers(c.Request.Context(), params)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(resellers, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /admin/api-keys
func (h *AdminHandler) CreateAPIKey(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}

	var req services.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	created, err := h.apiKeyService.Create(c.Request.Context(), id, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"api_key": created.Key,
		"secret":  created.Secret,
	})
}

// GET /admin/api-keys
func (h *AdminHandler) GetAPIKeys(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	keys, total, err := h.apiKeyService.List(c.Request.Context(), params)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(keys, total, params)
	utils.PaginatedResponse(c, result)
}

// DELETE /admin/api-keys/:id
func (h *AdminHandler) RevokeAPIKey(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid API key ID", nil)
		return
	}

	if err := h.apiKeyService.Revoke(c.Request.Context(), id); err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"revoked": true,
	})
}
