package model

import "time"

// Role is the party kind of an authenticated caller.
type Role string

const (
	RolePatient  Role = "PATIENT"
	RoleHospital Role = "HOSPITAL"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole validates a role string, e.g. from config or a JWT claim.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleHospital, RoleAdmin:
		return Role(s), nil
	}
	return "", &ValidationError{Field: "role", Reason: "unknown role: " + s}
}

// Actor is the authenticated party invoking an operation. It is policy
// input only and is never persisted on a record.
type Actor struct {
	Role Role   `json:"role"`
	ID   string `json:"id"`
}

// Operation names one of the actions the authorization policy rules on.
type Operation string

const (
	OpCreate        Operation = "create"
	OpRead          Operation = "read"
	OpAddAttachment Operation = "addAttachment"
	OpApprove       Operation = "approve"
	OpReject        Operation = "reject"
	OpForceResolve  Operation = "forceResolve"
	OpViewAggregate Operation = "viewAggregate"
)

// AuditEvent records who actually performed a lifecycle transition. The
// record's own status field cannot express "admin on behalf of patient",
// so the distinction lives here.
type AuditEvent struct {
	ID         string    `json:"id"`
	RecordID   string    `json:"record_id"`
	Operation  Operation `json:"operation"`
	ActorRole  Role      `json:"actor_role"`
	ActorID    string    `json:"actor_id"`
	OnBehalfOf string    `json:"on_behalf_of,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
