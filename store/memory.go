package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ankitupadhyayx/medicollab-backend/model"
)

// MemoryStore is an in-memory record store. It is the default backend;
// the postgres backend replaces it in deployments that need durability.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*model.Record
	audit   map[string][]model.AuditEvent
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*model.Record),
		audit:   make(map[string][]model.AuditEvent),
	}
}

func (s *MemoryStore) Insert(_ context.Context, rec *model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("record %s already exists", rec.ID)
	}
	s.records[rec.ID] = rec.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, model.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]*model.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.Record, 0, len(s.records))
	for _, rec := range s.records {
		result = append(result, rec.Clone())
	}
	return result, nil
}

// Mutate applies fn to a working copy under the write lock and swaps it
// in only on success, so a failing precondition leaves no partial write
// and concurrent mutations of the same record are serialized.
func (s *MemoryStore) Mutate(_ context.Context, id string, fn func(*model.Record) error) (*model.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, model.ErrRecordNotFound
	}

	working := rec.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.records[id] = working
	return working.Clone(), nil
}

func (s *MemoryStore) AppendAudit(_ context.Context, ev model.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit[ev.RecordID] = append(s.audit[ev.RecordID], ev)
	return nil
}

func (s *MemoryStore) AuditFor(_ context.Context, recordID string) ([]model.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.audit[recordID]
	result := make([]model.AuditEvent, len(events))
	copy(result, events)
	return result, nil
}

// Count returns the number of records in the store.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
