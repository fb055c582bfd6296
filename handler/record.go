package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ankitupadhyayx/medicollab-backend/middleware"
	"github.com/ankitupadhyayx/medicollab-backend/model"
	"github.com/ankitupadhyayx/medicollab-backend/service"
)

type RecordHandler struct {
	lifecycle  *service.Lifecycle
	ledger     *service.Ledger
	aggregator *service.Aggregator
	annotator  *service.Annotator
	blobs      BlobStore
}

func NewRecordHandler(lc *service.Lifecycle, lg *service.Ledger, ag *service.Aggregator, an *service.Annotator, blobs BlobStore) *RecordHandler {
	return &RecordHandler{
		lifecycle:  lc,
		ledger:     lg,
		aggregator: ag,
		annotator:  an,
		blobs:      blobs,
	}
}

type CreateRecordRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	RecordType  string `json:"record_type"`
	PatientID   string `json:"patient_id"`
}

// Create registers a new medical record for a patient.
func (h *RecordHandler) Create(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	actor := middleware.GetActor(c)
	rec, err := h.lifecycle.Create(c.Request.Context(), actor, service.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		RecordType:  req.RecordType,
		PatientID:   req.PatientID,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// List returns the records visible to the caller, newest first.
func (h *RecordHandler) List(c *gin.Context) {
	actor := middleware.GetActor(c)
	records, err := h.aggregator.RecordsFor(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   len(records),
	})
}

// Get returns a single record by ID.
func (h *RecordHandler) Get(c *gin.Context) {
	actor := middleware.GetActor(c)
	rec, err := h.lifecycle.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Approve marks a pending record approved.
func (h *RecordHandler) Approve(c *gin.Context) {
	actor := middleware.GetActor(c)
	rec, err := h.lifecycle.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// Reject marks a pending record rejected with a mandatory reason.
func (h *RecordHandler) Reject(c *gin.Context) {
	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	actor := middleware.GetActor(c)
	rec, err := h.lifecycle.Reject(c.Request.Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

type ResolveRequest struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason"`
}

// Resolve is the admin dispute override for a stuck record.
func (h *RecordHandler) Resolve(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	actor := middleware.GetActor(c)
	rec, err := h.lifecycle.ForceResolve(c.Request.Context(), actor, c.Param("id"), model.RecordStatus(req.Outcome), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// Audit returns the event log for a record. Admin only.
func (h *RecordHandler) Audit(c *gin.Context) {
	actor := middleware.GetActor(c)
	events, err := h.lifecycle.AuditFor(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

// Annotate queues background AI enrichment for a record the caller can
// read. The annotation lands asynchronously; failures never affect the
// record itself.
func (h *RecordHandler) Annotate(c *gin.Context) {
	actor := middleware.GetActor(c)
	rec, err := h.lifecycle.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	h.annotator.EnrichAsync(rec.ID)
	c.JSON(http.StatusAccepted, gin.H{
		"record_id": rec.ID,
		"status":    "queued",
	})
}
