// internal/api/program_handler.go
package api

import (
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/service"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

type CreateProgramRequest struct {
	Name         string            `json:"name" binding:"required"`
	Description  string            `json:"description"`
	DurationDays int               `json:"durationDays" binding:"required,min=1"`
	Objective    domain.Objective  `json:"objective" binding:"required,oneof=weight-loss mass-gain maintenance endurance"`
	MenuItems    []domain.MenuItem `json:"menuItems"`
	Activities   []domain.Activity `json:"activities"`
	Advice       []string          `json:"advice"`
}

type ImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ImageUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ObjectKey string    `json:"objectKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type EnrollRequest struct {
	StartDate string `json:"startDate"` // YYYY-MM-DD, defaults to today
}

// ListPrograms godoc
// @Summary List the program catalog
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Program
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /programs [get]
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programService.ListPrograms(c.Request.Context())
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve programs.")
		return
	}
	c.JSON(http.StatusOK, programs)
}

// ListProgramsByObjective godoc
// @Summary List programs with one objective
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param objective path string true "weight-loss, mass-gain, maintenance or endurance"
// @Success 200 {array} domain.Program
// @Failure 400 {object} gin.H "Unknown objective"
// @Router /programs/objective/{objective} [get]
func (h *ProgramHandler) ListProgramsByObjective(c *gin.Context) {
	programs, err := h.programService.ListProgramsByObjective(c.Request.Context(), domain.Objective(c.Param("objective")))
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve programs.")
		return
	}
	c.JSON(http.StatusOK, programs)
}

// GetProgram godoc
// @Summary Get one program
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ObjectID Hex"
// @Success 200 {object} domain.Program
// @Failure 400 {object} gin.H "Invalid id format"
// @Failure 404 {object} gin.H "Program not found"
// @Router /programs/{id} [get]
func (h *ProgramHandler) GetProgram(c *gin.Context) {
	programID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	program, err := h.programService.GetProgram(c.Request.Context(), programID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve program.")
		return
	}
	c.JSON(http.StatusOK, program)
}

// CreateProgram godoc
// @Summary Add a program to the catalog
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param program body CreateProgramRequest true "Program"
// @Success 201 {object} domain.Program
// @Failure 400 {object} gin.H "Validation error"
// @Failure 403 {object} gin.H "Admins only"
// @Router /programs [post]
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	program, err := h.programService.CreateProgram(c.Request.Context(), &domain.Program{
		Name:         req.Name,
		Description:  req.Description,
		DurationDays: req.DurationDays,
		Objective:    req.Objective,
		MenuItems:    req.MenuItems,
		Activities:   req.Activities,
		Advice:       req.Advice,
	})
	if err != nil {
		abortWithServiceError(c, err, "Failed to create program.")
		return
	}
	c.JSON(http.StatusCreated, program)
}

// CreateImageUploadURL godoc
// @Summary Get a presigned URL to upload a program image
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ObjectID Hex"
// @Param body body ImageUploadRequest true "Image content type"
// @Success 200 {object} ImageUploadResponse
// @Failure 400 {object} gin.H "Unsupported content type"
// @Failure 404 {object} gin.H "Program not found"
// @Failure 503 {object} gin.H "Storage not configured"
// @Router /programs/{id}/image-upload-url [post]
func (h *ProgramHandler) CreateImageUploadURL(c *gin.Context) {
	programID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	upload, err := h.programService.CreateImageUpload(c.Request.Context(), programID, req.ContentType)
	if err != nil {
		abortWithServiceError(c, err, "Failed to prepare image upload.")
		return
	}
	c.JSON(http.StatusOK, ImageUploadResponse{
		UploadURL: upload.UploadURL,
		ObjectKey: upload.ObjectKey,
		ExpiresAt: upload.ExpiresAt,
	})
}

// Enroll godoc
// @Summary Enroll the current user in a program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ObjectID Hex"
// @Param body body EnrollRequest false "Start date"
// @Success 201 {object} domain.Enrollment
// @Failure 404 {object} gin.H "Program not found"
// @Failure 409 {object} gin.H "Already enrolled in an active program"
// @Router /programs/{id}/enroll [post]
func (h *ProgramHandler) Enroll(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	programID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req EnrollRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
			return
		}
	}
	enrollment, err := h.programService.Enroll(c.Request.Context(), userID, programID, req.StartDate)
	if err != nil {
		abortWithServiceError(c, err, "Failed to enroll.")
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}
