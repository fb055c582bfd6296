package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankitupadhyayx/medicollab-backend/middleware"
)

// Stats returns status counts and the approval rate for the caller's
// visible records.
func (h *RecordHandler) Stats(c *gin.Context) {
	actor := middleware.GetActor(c)
	stats, err := h.aggregator.StatsFor(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Timeline returns the caller's visible records grouped by month,
// newest month first.
func (h *RecordHandler) Timeline(c *gin.Context) {
	actor := middleware.GetActor(c)
	groups, err := h.aggregator.TimelineFor(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"total":  len(groups),
	})
}
