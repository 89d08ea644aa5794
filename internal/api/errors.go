package api

import (
	"alcyxob/healthera/internal/service"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// serviceErrorStatus maps service sentinels to HTTP status codes.
var serviceErrorStatus = []struct {
	err  error
	code int
}{
	{service.ErrProgramNotFound, http.StatusNotFound},
	{service.ErrDishNotFound, http.StatusNotFound},
	{service.ErrEnrollmentNotFound, http.StatusNotFound},
	{service.ErrEnrollmentAccessDenied, http.StatusForbidden},
	{service.ErrActiveEnrollmentExists, http.StatusConflict},
	{service.ErrInvalidTransition, http.StatusConflict},
	{service.ErrEnrollmentNotActive, http.StatusConflict},
	{service.ErrProgramHasNoContent, http.StatusConflict},
	{service.ErrValidationFailed, http.StatusBadRequest},
	{service.ErrInvalidDate, http.StatusBadRequest},
	{service.ErrUnknownItem, http.StatusBadRequest},
	{service.ErrImageStorageDisabled, http.StatusServiceUnavailable},
}

// abortWithServiceError writes the mapped status for known service errors,
// and logs anything else as a 500 with a generic message.
func abortWithServiceError(c *gin.Context, err error, fallback string) {
	for _, m := range serviceErrorStatus {
		if errors.Is(err, m.err) {
			abortWithError(c, m.code, err.Error())
			return
		}
	}
	log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
	abortWithError(c, http.StatusInternalServerError, fallback)
}
