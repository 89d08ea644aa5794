// internal/api/enrollment_handler.go
package api

import (
	"alcyxob/healthera/internal/domain"
	"alcyxob/healthera/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EnrollmentHandler struct {
	trackingService service.TrackingService
}

func NewEnrollmentHandler(trackingService service.TrackingService) *EnrollmentHandler {
	return &EnrollmentHandler{trackingService: trackingService}
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SubmitDayRequest replaces the record of one date. Omitted lists mean nothing recorded for that facet.
type SubmitDayRequest struct {
	MealIDs     []int    `json:"mealIds"`
	ActivityIDs []int    `json:"activityIds"`
	Weight      *float64 `json:"weight"`
	Notes       *string  `json:"notes"`
}

// ListMyEnrollments godoc
// @Summary List my enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Enrollment
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	enrollments, err := h.trackingService.ListEnrollments(c.Request.Context(), userID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve enrollments.")
		return
	}
	c.JSON(http.StatusOK, enrollments)
}

// GetEnrollment godoc
// @Summary Get one of my enrollments, program embedded
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ObjectID Hex"
// @Success 200 {object} domain.Enrollment
// @Failure 403 {object} gin.H "Not your enrollment"
// @Failure 404 {object} gin.H "Enrollment not found"
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	userID, enrollmentID, ok := h.ids(c)
	if !ok {
		return
	}
	enrollment, err := h.trackingService.GetEnrollment(c.Request.Context(), userID, enrollmentID)
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve enrollment.")
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// ChangeStatus godoc
// @Summary Pause, resume, complete or abandon an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ObjectID Hex"
// @Param body body ChangeStatusRequest true "Target status"
// @Success 200 {object} domain.Enrollment
// @Failure 400 {object} gin.H "Unknown status"
// @Failure 409 {object} gin.H "Transition not allowed"
// @Router /enrollments/{id}/status [patch]
func (h *EnrollmentHandler) ChangeStatus(c *gin.Context) {
	userID, enrollmentID, ok := h.ids(c)
	if !ok {
		return
	}
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	to := domain.ParseEnrollmentStatus(req.Status)
	if to == domain.EnrollmentUnknown {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Unknown status %q.", req.Status))
		return
	}
	enrollment, err := h.trackingService.ChangeStatus(c.Request.Context(), userID, enrollmentID, to)
	if err != nil {
		abortWithServiceError(c, err, "Failed to change status.")
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// UpdateProgression godoc
// @Summary Override the progression of an active enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ObjectID Hex"
// @Param progression query int true "0-100, clamped"
// @Success 200 {object} domain.Enrollment
// @Failure 400 {object} gin.H "Missing or non-numeric progression"
// @Failure 409 {object} gin.H "Enrollment not active"
// @Router /enrollments/{id}/progression [put]
func (h *EnrollmentHandler) UpdateProgression(c *gin.Context) {
	userID, enrollmentID, ok := h.ids(c)
	if !ok {
		return
	}
	progression, err := strconv.Atoi(c.Query("progression"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Query parameter 'progression' must be an integer.")
		return
	}
	enrollment, err := h.trackingService.UpdateProgression(c.Request.Context(), userID, enrollmentID, progression)
	if err != nil {
		abortWithServiceError(c, err, "Failed to update progression.")
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

// GetStatistics godoc
// @Summary Aggregated statistics of an enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ObjectID Hex"
// @Success 200 {object} domain.Statistics
// @Success 204 "Nothing recorded yet"
// @Router /enrollments/{id}/statistics [get]
func (h *EnrollmentHandler) GetStatistics(c *gin.Context) {
	userID, enrollmentID, ok := h.ids(c)
	if !ok {
		return
	}
	stats, err := h.trackingService.GetStatistics(c.Request.Context(), userID, enrollmentID)
	if errors.Is(err, service.ErrStatisticsUnavailable) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		abortWithServiceError(c, err, "Failed to compute statistics.")
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetDay godoc
// @Summary Day record of one date
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ObjectID Hex"
// @Param date path string true "YYYY-MM-DD"
// @Success 200 {object} domain.DayRecord
// @Success 204 "No record for this date"
// @Failure 400 {object} gin.H "Invalid date"
// @Router /enrollments/{id}/days/{date} [get]
func (h *EnrollmentHandler) GetDay(c *gin.Context) {
	userID, enrollmentID, ok := h.ids(c)
	if !ok {
		return
	}
	record, err := h.trackingService.GetDay(c.Request.Context(), userID, enrollmentID, c.Param("date"))
	if errors.Is(err, service.ErrDayRecordNotFound) {
		c.Status(http.StatusNoContent)
		return
	}
	if err != nil {
		abortWithServiceError(c, err, "Failed to retrieve day record.")
		return
	}
	c.JSON(http.StatusOK, record)
}

// SubmitDay godoc
// @Summary Replace the day record of one date
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ObjectID Hex"
// @Param date path string true "YYYY-MM-DD"
// @Param body body SubmitDayRequest true "Selection"
// @Success 200 {object} domain.DayRecord
// @Failure 400 {object} gin.H "Invalid date or unknown item"
// @Failure 409 {object} gin.H "Enrollment not active"
// @Router /enrollments/{id}/days/{date} [put]
func (h *EnrollmentHandler) SubmitDay(c *gin.Context) {
	userID, enrollmentID, ok := h.ids(c)
	if !ok {
		return
	}
	var req SubmitDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	record, err := h.trackingService.SubmitDay(c.Request.Context(), userID, enrollmentID, domain.DaySubmission{
		EnrollmentID: enrollmentID.Hex(),
		Date:         c.Param("date"),
		MealIDs:      req.MealIDs,
		ActivityIDs:  req.ActivityIDs,
		Weight:       req.Weight,
		Notes:        req.Notes,
	})
	if err != nil {
		abortWithServiceError(c, err, "Failed to record day.")
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *EnrollmentHandler) ids(c *gin.Context) (userID, enrollmentID primitive.ObjectID, ok bool) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	eid, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	return uid, eid, true
}
