package store

import (
	"context"

	"github.com/ankitupadhyayx/medicollab-backend/model"
)

// RecordStore is the single source of truth for records and their audit
// trail. Implementations must expose records atomically per id: a reader
// sees either the pre- or post-mutation state, never a half-applied one.
//
// Mutate runs fn against a working copy of the record and commits the
// result only if fn returns nil. Implementations serialize Mutate calls
// per record id, so the precondition checks inside fn cannot race: of
// two concurrent approvals exactly one sees PENDING.
type RecordStore interface {
	Insert(ctx context.Context, rec *model.Record) error
	Get(ctx context.Context, id string) (*model.Record, error)
	List(ctx context.Context) ([]*model.Record, error)
	Mutate(ctx context.Context, id string, fn func(*model.Record) error) (*model.Record, error)

	AppendAudit(ctx context.Context, ev model.AuditEvent) error
	AuditFor(ctx context.Context, recordID string) ([]model.AuditEvent, error)
}
