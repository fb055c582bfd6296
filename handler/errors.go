package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankitupadhyayx/medicollab-backend/model"
)

// writeError maps service errors to HTTP responses. Authorization
// failures on a specific record come back as 404 so callers cannot
// probe which record IDs exist.
func writeError(c *gin.Context, err error) {
	var authz *model.AuthorizationError
	if errors.As(err, &authz) {
		if authz.RecordID != "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Operation not allowed"})
		return
	}

	var transition *model.InvalidStateTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusConflict, gin.H{
			"error": transition.Error(),
			"kind":  "invalid_state_transition",
		})
		return
	}

	var frozen *model.RecordFrozenError
	if errors.As(err, &frozen) {
		c.JSON(http.StatusConflict, gin.H{
			"error": frozen.Error(),
			"kind":  "record_frozen",
		})
		return
	}

	var validation *model.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validation.Error(),
			"field": validation.Field,
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, model.ErrUnknownPatient), errors.Is(err, model.ErrUnknownHospital):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrAnnotationUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI annotation unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
