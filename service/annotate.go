package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ankitupadhyayx/medicollab-backend/model"
	"github.com/ankitupadhyayx/medicollab-backend/pkg/logger"
	"github.com/ankitupadhyayx/medicollab-backend/store"
)

// Annotator attaches best-effort AI enrichment to records. Annotation is
// an idempotent upsert keyed by record id, last write wins, and valid in
// any status. It never blocks a transition and never bumps UpdatedAt:
// that field tracks the lifecycle, not enrichment.
type Annotator struct {
	store  store.RecordStore
	client AIClient
}

func NewAnnotator(st store.RecordStore, client AIClient) *Annotator {
	return &Annotator{store: st, client: client}
}

// Annotate upserts the annotation onto the record.
func (a *Annotator) Annotate(ctx context.Context, id string, ann model.AIAnnotation) (*model.Record, error) {
	switch ann.Severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh:
	default:
		return nil, &model.ValidationError{Field: "severity", Reason: "must be low, medium or high"}
	}

	return a.store.Mutate(ctx, id, func(r *model.Record) error {
		cp := ann.Clone()
		r.Annotation = &cp
		return nil
	})
}

// Enrich asks the AI collaborator to summarize the record and stores the
// result. Collaborator failure comes back as ErrAnnotationUnavailable,
// which well-behaved callers swallow.
func (a *Annotator) Enrich(ctx context.Context, id string) (*model.Record, error) {
	rec, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	ann, err := a.client.Summarize(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrAnnotationUnavailable, err)
	}
	return a.Annotate(ctx, id, *ann)
}

// EnrichAsync runs Enrich in the background with its own deadline. The
// caller can abandon it freely: annotation is not part of the record's
// status, so an interrupted enrichment leaves nothing inconsistent.
func (a *Annotator) EnrichAsync(id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := a.Enrich(ctx, id); err != nil {
			logger.Warn(ctx, "annotation unavailable", "record_id", id, "error", err)
			return
		}
		logger.Info(ctx, "record annotated", "record_id", id)
	}()
}
