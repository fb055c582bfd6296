package service

import (
	"context"

	"github.com/ankitupadhyayx/medicollab-backend/model"
	"github.com/ankitupadhyayx/medicollab-backend/store"
)

// stubDirectory resolves a fixed set of parties.
type stubDirectory struct {
	patients  map[string]bool
	hospitals map[string]bool
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		patients:  map[string]bool{"p-001": true, "p-002": true},
		hospitals: map[string]bool{"h-001": true, "h-002": true},
	}
}

func (d *stubDirectory) ResolvePatient(id string) error {
	if !d.patients[id] {
		return model.ErrUnknownPatient
	}
	return nil
}

func (d *stubDirectory) ResolveHospital(id string) error {
	if !d.hospitals[id] {
		return model.ErrUnknownHospital
	}
	return nil
}

// stubAIClient returns a canned annotation or error.
type stubAIClient struct {
	annotation *model.AIAnnotation
	err        error
	calls      int
}

func (c *stubAIClient) Summarize(_ context.Context, _ *model.Record) (*model.AIAnnotation, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.annotation, nil
}

var (
	patient  = model.Actor{Role: model.RolePatient, ID: "p-001"}
	patient2 = model.Actor{Role: model.RolePatient, ID: "p-002"}
	hospital = model.Actor{Role: model.RoleHospital, ID: "h-001"}
	admin    = model.Actor{Role: model.RoleAdmin, ID: "a-001"}
)

type fixture struct {
	store      *store.MemoryStore
	policy     *Policy
	lifecycle  *Lifecycle
	ledger     *Ledger
	aggregator *Aggregator
}

func newFixture() *fixture {
	st := store.NewMemoryStore()
	policy := NewPolicy()
	return &fixture{
		store:      st,
		policy:     policy,
		lifecycle:  NewLifecycle(st, newStubDirectory(), policy),
		ledger:     NewLedger(st, policy),
		aggregator: NewAggregator(st, policy),
	}
}

func (f *fixture) mustCreate(ctx context.Context, in CreateInput) *model.Record {
	rec, err := f.lifecycle.Create(ctx, hospital, in)
	if err != nil {
		panic(err)
	}
	return rec
}
