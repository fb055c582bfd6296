package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ankitupadhyayx/medicollab-backend/middleware"
	"github.com/ankitupadhyayx/medicollab-backend/model"
	"github.com/ankitupadhyayx/medicollab-backend/pkg/logger"
)

// BlobStore is the slice of the object storage service the attachment
// handlers need.
type BlobStore interface {
	UploadAttachment(ctx context.Context, recordID, originalName, mimeType string, size int64, reader io.Reader) (model.Attachment, error)
	GetPresignedURL(ctx context.Context, objectName string) (string, error)
	DeleteFile(ctx context.Context, objectName string) error
}

var allowedAttachmentExts = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".dcm":  "application/dicom",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// UploadAttachment stores an uploaded file in object storage and
// appends it to the record's attachment list. The append is refused
// once the record has left PENDING; a refused append also removes the
// just-uploaded object.
func (h *RecordHandler) UploadAttachment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mimeType, ok := allowedAttachmentExts[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported file type, expected pdf, png, jpg, dcm or docx"})
		return
	}

	actor := middleware.GetActor(c)
	ctx := c.Request.Context()
	recordID := c.Param("id")

	// Cheap precheck so an obviously refused append does not round-trip
	// through object storage first. The ledger re-checks under the
	// record lock.
	if _, err := h.lifecycle.Get(ctx, actor, recordID); err != nil {
		writeError(c, err)
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer src.Close()

	att, err := h.blobs.UploadAttachment(ctx, recordID, file.Filename, mimeType, file.Size, src)
	if err != nil {
		logger.Error(ctx, "attachment upload failed", "record_id", recordID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store attachment"})
		return
	}

	rec, err := h.ledger.AddAttachment(ctx, actor, recordID, att)
	if err != nil {
		if delErr := h.blobs.DeleteFile(ctx, att.FileRef); delErr != nil {
			logger.Warn(ctx, "failed to remove orphaned attachment object",
				"file_ref", att.FileRef,
				"error", delErr,
			)
		}
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"record":     rec,
		"attachment": att,
	})
}

// DownloadAttachment returns a presigned URL for one attachment,
// addressed by its position in the record's attachment list.
func (h *RecordHandler) DownloadAttachment(c *gin.Context) {
	actor := middleware.GetActor(c)
	rec, err := h.lifecycle.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil || idx < 0 || idx >= len(rec.Attachments) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}
	att := rec.Attachments[idx]

	url, err := h.blobs.GetPresignedURL(c.Request.Context(), att.FileRef)
	if err != nil {
		logger.Error(c.Request.Context(), "presign failed", "file_ref", att.FileRef, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate download link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":           url,
		"original_name": att.OriginalName,
		"mime_type":     att.MimeType,
		"size_bytes":    att.SizeBytes,
	})
}
