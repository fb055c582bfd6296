package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ankitupadhyayx/medicollab-backend/model"
	"github.com/ankitupadhyayx/medicollab-backend/pkg/logger"
	"github.com/ankitupadhyayx/medicollab-backend/store"
)

// Ledger tracks per-record file references. Appends preserve insertion
// order; that order is chronology for downstream consumers and is never
// rearranged. Once a record leaves PENDING the ledger refuses further
// mutation with RecordFrozen, on top of the append guard the Record
// model itself enforces.
type Ledger struct {
	store  store.RecordStore
	policy *Policy
}

func NewLedger(st store.RecordStore, policy *Policy) *Ledger {
	return &Ledger{store: st, policy: policy}
}

// AddAttachment appends att to the record's attachment list. Only the
// owning hospital may attach, and only while the record is PENDING.
func (lg *Ledger) AddAttachment(ctx context.Context, actor model.Actor, id string, att model.Attachment) (*model.Record, error) {
	if att.FileRef == "" {
		return nil, &model.ValidationError{Field: "file_ref", Reason: "must not be empty"}
	}

	rec, err := lg.store.Mutate(ctx, id, func(r *model.Record) error {
		if err := lg.gate(actor, r); err != nil {
			return err
		}
		if r.Status != model.StatusPending {
			return &model.RecordFrozenError{RecordID: r.ID, Status: r.Status}
		}
		return r.AppendAttachment(att, time.Now())
	})
	if err != nil {
		return nil, err
	}
	lg.appendAudit(ctx, id, actor, att.OriginalName)

	logger.Info(ctx, "attachment added",
		"record_id", id,
		"file_ref", att.FileRef,
		"size_bytes", att.SizeBytes,
	)
	return rec, nil
}

// gate checks ownership separately from state so that the owning
// hospital of a decided record sees RecordFrozen rather than access
// denied.
func (lg *Ledger) gate(actor model.Actor, rec *model.Record) error {
	if lg.policy.CanPerform(actor, model.OpAddAttachment, rec) {
		return nil
	}
	asPending := rec.Clone()
	asPending.Status = model.StatusPending
	if lg.policy.CanPerform(actor, model.OpAddAttachment, asPending) {
		return &model.RecordFrozenError{RecordID: rec.ID, Status: rec.Status}
	}
	return &model.AuthorizationError{Actor: actor, Operation: model.OpAddAttachment, RecordID: rec.ID}
}

func (lg *Ledger) appendAudit(ctx context.Context, recordID string, actor model.Actor, detail string) {
	ev := model.AuditEvent{
		ID:         uuid.New().String(),
		RecordID:   recordID,
		Operation:  model.OpAddAttachment,
		ActorRole:  actor.Role,
		ActorID:    actor.ID,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
	if err := lg.store.AppendAudit(ctx, ev); err != nil {
		logger.Error(ctx, "failed to append audit event",
			"record_id", recordID,
			"operation", model.OpAddAttachment,
			"error", err,
		)
	}
}
