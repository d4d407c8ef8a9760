// internal/handlers/allocation.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/licensestack/ls-backend/internal/models"
	"github.com/licensestack/ls-backend/internal/services"
	"github.com/licensestack/ls-backend/internal/utils"
)

type AllocationHandler struct {
	allocationService *services.AllocationService
}

func NewAllocationHandler(allocationService *services.AllocationService) *AllocationHandler {
	return &AllocationHandler{
		allocationService: allocationService,
	}
}

// GET /allocations/remaining
func (h *AllocationHandler) GetRemainingQuota(c *gin.Context) {
	id, ok := principalID(c)
	if !ok {
		return
	}

	softwareID, err := uuid.Parse(c.Query("software_id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid software ID", nil)
		return
	}

	// Admins may inspect any reseller's quota
	targetID := id
	if resellerIDStr := c.Query("reseller_id"); resellerIDStr != "" {
		role, _ := utils.GetUserRoleFromContext(c)
		if role != string(models.RoleAdmin) {
			utils.ForbiddenResponse(c, "Only admins may query other resellers")
			return
		}
		targetID, err = uuid.Parse(resellerIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid reseller ID", nil)
			return
		}
	}

	quota, err := h.allocationService.GetRemainingQuota(c.Request.Context(), targetID, softwareID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"quota": quota,
	})
}

// POST /admin/allocations
func (h *AllocationHandler) GrantAllocation(c *gin.Context) {
	var req services.GrantAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	allocation, err := h.allocationService.Grant(c.Request.Context(), &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"allocation": allocation,
	})
}

// PUT /admin/allocations/quota
func (h *AllocationHandler) SetQuota(c *gin.Context) {
	var req services.SetQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	allocation, err := h.allocationService.SetQuota(c.Request.Context(), &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"allocation": allocation,
	})
}

// GET /admin/allocations
func (h *AllocationHandler) GetAllocations(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.AllocationFilter{
		PaginationParams: params,
	}

	if resellerIDStr := c.Query("reseller_id"); resellerIDStr != "" {
		if resellerID, err := uuid.Parse(resellerIDStr); err == nil {
			filter.ResellerID = &resellerID
		}
	}

	if softwareIDStr := c.Query("software_id"); softwareIDStr != "" {
		if softwareID, err := uuid.Parse(softwareIDStr); err == nil {
			filter.SoftwareID = &softwareID
		}
	}

	allocations, total, err := h.allocationService.List(c.Request.Context(), filter)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(allocations, total, params)
	utils.PaginatedResponse(c, result)
}
