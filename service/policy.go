package service

import (
	"github.com/ankitupadhyayx/medicollab-backend/model"
)

// Policy is the authorization policy: a pure function over
// (actor, operation, record). It holds no state, so repeated evaluation
// with unchanged inputs always yields the same answer.
type Policy struct{}

// NewPolicy returns the role-gated record access policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// CanPerform reports whether the actor may perform op on rec. rec is nil
// for record-independent operations (create, viewAggregate). Rules are
// evaluated in precedence order; the first match wins.
func (p *Policy) CanPerform(actor model.Actor, op model.Operation, rec *model.Record) bool {
	// Rule 1: admin reads, aggregates and force-resolves anything.
	if actor.Role == model.RoleAdmin {
		switch op {
		case model.OpRead, model.OpViewAggregate, model.OpForceResolve:
			return true
		}
		return false
	}

	// Rule 2: hospital creates records; touches only records it owns.
	if actor.Role == model.RoleHospital {
		switch op {
		case model.OpCreate, model.OpViewAggregate:
			return true
		case model.OpRead:
			return rec != nil && rec.HospitalID == actor.ID
		case model.OpAddAttachment:
			return rec != nil && rec.HospitalID == actor.ID && rec.Status == model.StatusPending
		}
		return false
	}

	// Rule 3: patient reads and decides only its own records.
	if actor.Role == model.RolePatient {
		switch op {
		case model.OpViewAggregate:
			return true
		case model.OpRead:
			return rec != nil && rec.PatientID == actor.ID
		case model.OpApprove, model.OpReject:
			return rec != nil && rec.PatientID == actor.ID && rec.Status == model.StatusPending
		}
		return false
	}

	// Rule 4: everything else is denied.
	return false
}

// Authorize returns a typed AuthorizationError on denial so callers can
// surface access-denied distinctly from not-found.
func (p *Policy) Authorize(actor model.Actor, op model.Operation, rec *model.Record) error {
	if p.CanPerform(actor, op, rec) {
		return nil
	}
	e := &model.AuthorizationError{Actor: actor, Operation: op}
	if rec != nil {
		e.RecordID = rec.ID
	}
	return e
}
