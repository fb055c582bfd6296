package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ankitupadhyayx/medicollab-backend/model"
	"github.com/ankitupadhyayx/medicollab-backend/pkg/logger"
	"github.com/ankitupadhyayx/medicollab-backend/store"
)

// Lifecycle validates and applies record state transitions. States are
// PENDING (initial), APPROVED and REJECTED (terminal, no way out). All
// precondition checks run inside store.Mutate, so two concurrent
// transitions on the same record serialize and exactly one wins.
type Lifecycle struct {
	store     store.RecordStore
	directory Directory
	policy    *Policy
}

func NewLifecycle(st store.RecordStore, dir Directory, policy *Policy) *Lifecycle {
	return &Lifecycle{store: st, directory: dir, policy: policy}
}

// CreateInput carries the fields a hospital supplies for a new record.
type CreateInput struct {
	Title       string
	Description string
	RecordType  string
	PatientID   string
}

// Create registers a new PENDING record owned by the calling hospital.
// The patient must resolve in the identity directory; otherwise nothing
// is persisted.
func (l *Lifecycle) Create(ctx context.Context, actor model.Actor, in CreateInput) (*model.Record, error) {
	if err := l.policy.Authorize(actor, model.OpCreate, nil); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, &model.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	recordType, err := model.ParseRecordType(in.RecordType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PatientID) == "" {
		return nil, &model.ValidationError{Field: "patient_id", Reason: "must not be empty"}
	}
	if err := l.directory.ResolvePatient(in.PatientID); err != nil {
		return nil, err
	}

	now := time.Now()
	rec := &model.Record{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		RecordType:  recordType,
		PatientID:   in.PatientID,
		HospitalID:  actor.ID,
		Status:      model.StatusPending,
		Attachments: []model.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := l.store.Insert(ctx, rec); err != nil {
		return nil, err
	}
	l.appendAudit(ctx, rec.ID, model.OpCreate, actor, "", string(recordType))

	logger.Info(ctx, "record created",
		"record_id", rec.ID,
		"patient_id", rec.PatientID,
		"hospital_id", rec.HospitalID,
		"record_type", rec.RecordType,
	)
	return rec, nil
}

// Get returns a single record after a read-permission check.
func (l *Lifecycle) Get(ctx context.Context, actor model.Actor, id string) (*model.Record, error) {
	rec, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := l.policy.Authorize(actor, model.OpRead, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Approve moves a PENDING record to APPROVED and freezes its attachments.
func (l *Lifecycle) Approve(ctx context.Context, actor model.Actor, id string) (*model.Record, error) {
	rec, err := l.store.Mutate(ctx, id, func(r *model.Record) error {
		if err := l.gate(actor, model.OpApprove, r); err != nil {
			return err
		}
		r.Status = model.StatusApproved
		r.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.appendAudit(ctx, id, model.OpApprove, actor, "", "")

	logger.Info(ctx, "record approved", "record_id", id)
	return rec, nil
}

// Reject moves a PENDING record to REJECTED. The reason is mandatory and
// at least MinRejectionReasonLen characters.
func (l *Lifecycle) Reject(ctx context.Context, actor model.Actor, id, reason string) (*model.Record, error) {
	rec, err := l.store.Mutate(ctx, id, func(r *model.Record) error {
		if err := l.gate(actor, model.OpReject, r); err != nil {
			return err
		}
		if err := validateReason(reason); err != nil {
			return err
		}
		r.Status = model.StatusRejected
		r.RejectionReason = reason
		r.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.appendAudit(ctx, id, model.OpReject, actor, "", reason)

	logger.Info(ctx, "record rejected", "record_id", id)
	return rec, nil
}

// ForceResolve is the admin dispute override: the same transition table
// as Approve/Reject with the patient-identity check bypassed. The state
// precondition still applies, so an already-terminal record cannot be
// resolved again. The audit event names the admin and the patient the
// resolution acted on behalf of.
func (l *Lifecycle) ForceResolve(ctx context.Context, actor model.Actor, id string, outcome model.RecordStatus, reason string) (*model.Record, error) {
	if outcome != model.StatusApproved && outcome != model.StatusRejected {
		return nil, &model.ValidationError{Field: "outcome", Reason: "must be APPROVED or REJECTED"}
	}

	var patientID string
	rec, err := l.store.Mutate(ctx, id, func(r *model.Record) error {
		if err := l.policy.Authorize(actor, model.OpForceResolve, r); err != nil {
			return err
		}
		if r.Status.Terminal() {
			return &model.InvalidStateTransitionError{RecordID: r.ID, From: r.Status, Operation: model.OpForceResolve}
		}
		if outcome == model.StatusRejected {
			if err := validateReason(reason); err != nil {
				return err
			}
			r.RejectionReason = reason
		}
		patientID = r.PatientID
		r.Status = outcome
		r.UpdatedAt = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.appendAudit(ctx, id, model.OpForceResolve, actor, patientID, string(outcome))

	logger.Info(ctx, "record force-resolved",
		"record_id", id,
		"outcome", outcome,
		"on_behalf_of", patientID,
	)
	return rec, nil
}

// gate distinguishes "wrong actor" from "wrong state" on a mutating
// transition: a race loser owning the record must see
// InvalidStateTransition, never access denied, so callers can tell
// "already decided" from "not allowed".
func (l *Lifecycle) gate(actor model.Actor, op model.Operation, rec *model.Record) error {
	if l.policy.CanPerform(actor, op, rec) {
		return nil
	}
	asPending := rec.Clone()
	asPending.Status = model.StatusPending
	if l.policy.CanPerform(actor, op, asPending) {
		return &model.InvalidStateTransitionError{RecordID: rec.ID, From: rec.Status, Operation: op}
	}
	return &model.AuthorizationError{Actor: actor, Operation: op, RecordID: rec.ID}
}

func validateReason(reason string) error {
	if utf8.RuneCountInString(strings.TrimSpace(reason)) < model.MinRejectionReasonLen {
		return &model.ValidationError{
			Field:  "reason",
			Reason: "rejection reason must be at least 10 characters",
		}
	}
	return nil
}

func (l *Lifecycle) appendAudit(ctx context.Context, recordID string, op model.Operation, actor model.Actor, onBehalfOf, detail string) {
	ev := model.AuditEvent{
		ID:         uuid.New().String(),
		RecordID:   recordID,
		Operation:  op,
		ActorRole:  actor.Role,
		ActorID:    actor.ID,
		OnBehalfOf: onBehalfOf,
		Detail:     detail,
		OccurredAt: time.Now(),
	}
	if err := l.store.AppendAudit(ctx, ev); err != nil {
		logger.Error(ctx, "failed to append audit event",
			"record_id", recordID,
			"operation", op,
			"error", err,
		)
	}
}

// AuditFor returns the persisted event log for a record. Admin only.
func (l *Lifecycle) AuditFor(ctx context.Context, actor model.Actor, id string) ([]model.AuditEvent, error) {
	rec, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != model.RoleAdmin {
		return nil, &model.AuthorizationError{Actor: actor, Operation: model.OpRead, RecordID: rec.ID}
	}
	return l.store.AuditFor(ctx, id)
}
