package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra context.
var (
	// ErrRecordNotFound means the record id does not exist in the store.
	// It is deliberately distinct from AuthorizationError: absence and
	// denial must stay separate kinds inside the core. The HTTP layer may
	// choose to present both as 404.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnknownPatient / ErrUnknownHospital mean the counterparty named
	// at creation time cannot be resolved by the identity directory.
	ErrUnknownPatient  = errors.New("unknown patient")
	ErrUnknownHospital = errors.New("unknown hospital")

	// ErrAnnotationUnavailable means the AI collaborator failed. Callers
	// degrade to "no annotation"; it must never fail an enclosing
	// approve/reject.
	ErrAnnotationUnavailable = errors.New("annotation unavailable")
)

// AuthorizationError means the actor lacks rights for the operation on
// the given record.
type AuthorizationError struct {
	Actor     Actor
	Operation Operation
	RecordID  string
}

func (e *AuthorizationError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("%s %s may not %s", e.Actor.Role, e.Actor.ID, e.Operation)
	}
	return fmt.Sprintf("%s %s may not %s record %s", e.Actor.Role, e.Actor.ID, e.Operation, e.RecordID)
}

// InvalidStateTransitionError means an operation was attempted on a
// record whose current status does not permit it, including the loser of
// a double-transition race.
type InvalidStateTransitionError struct {
	RecordID  string
	From      RecordStatus
	Operation Operation
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("record %s: cannot %s from %s", e.RecordID, e.Operation, e.From)
}

// RecordFrozenError means an attachment mutation hit a non-PENDING
// record. The attachment ledger raises this independently of the
// lifecycle engine's own state check.
type RecordFrozenError struct {
	RecordID string
	Status   RecordStatus
}

func (e *RecordFrozenError) Error() string {
	return fmt.Sprintf("record %s is frozen in %s", e.RecordID, e.Status)
}

// ValidationError means malformed input, e.g. a rejection reason that is
// too short or an unknown record type.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
