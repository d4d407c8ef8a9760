// internal/handlers/software.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/licensestack/ls-backend/internal/services"
	"github.com/licensestack/ls-backend/internal/utils"
)

type SoftwareHandler struct {
	softwareService *services.SoftwareService
}

func NewSoftwareHandler(softwareService *services.SoftwareService) *SoftwareHandler {
	return &SoftwareHandler{
		softwareService: softwareService,
	}
}

// GET /software
func (h *SoftwareHandler) GetSoftware(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.SoftwareFilter{
		PaginationParams: params,
		ActiveOnly:       c.DefaultQuery("active", "true") == "true",
	}

	software, total, err := h.softwareService.List(c.Request.Context(), filter)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	result := utils.CreatePaginationResult(software, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /software/:id
func (h *SoftwareHandler) GetSoftwareByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid software ID", nil)
		return
	}

	software, err := h.softwareService.Get(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"software": software,
	})
}

// POST /admin/software
func (h *SoftwareHandler) CreateSoftware(c *gin.Context) {
	var req services.CreateSoftwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	software, err := h.softwareService.Create(c.Request.Context(), &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"software": software,
	})
}

// PUT /admin/software/:id
func (h *SoftwareHandler) UpdateSoftware(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid software ID", nil)
		return
	}

	var req services.UpdateSoftwareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	software, err := h.softwareService.Update(c.Request.Context(), id, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"software": software,
	})
}

// DELETE /admin/software/:id
func (h *SoftwareHandler) DeactivateSoftware(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid software ID", nil)
		return
	}

	software, err := h.softwareService.Deactivate(c.Request.Context(), id)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"software": software,
	})
}
