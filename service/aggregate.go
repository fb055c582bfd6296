package service

import (
	"context"
	"math"
	"sort"

	"github.com/ankitupadhyayx/medicollab-backend/model"
	"github.com/ankitupadhyayx/medicollab-backend/store"
)

// Aggregator computes read-only projections over the record store. Both
// projections are policy-filtered through the caller and recomputed on
// every call; nothing derived is cached or stored.
type Aggregator struct {
	store  store.RecordStore
	policy *Policy
}

func NewAggregator(st store.RecordStore, policy *Policy) *Aggregator {
	return &Aggregator{store: st, policy: policy}
}

// Stats summarizes the records an actor can read.
type Stats struct {
	Total                  int `json:"total"`
	Pending                int `json:"pending"`
	Approved               int `json:"approved"`
	Rejected               int `json:"rejected"`
	DistinctCounterparties int `json:"distinct_counterparties"`
	ApprovalRate           int `json:"approval_rate"`
}

// TimelineGroup is one calendar month of records, newest first.
type TimelineGroup struct {
	Month   string          `json:"month"` // YYYY-MM
	Records []*model.Record `json:"records"`
}

// RecordsFor returns the records the actor may read, newest first.
func (a *Aggregator) RecordsFor(ctx context.Context, actor model.Actor) ([]*model.Record, error) {
	records, err := a.visibleTo(ctx, actor)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// visibleTo returns the records the actor may read.
func (a *Aggregator) visibleTo(ctx context.Context, actor model.Actor) ([]*model.Record, error) {
	if err := a.policy.Authorize(actor, model.OpViewAggregate, nil); err != nil {
		return nil, err
	}

	all, err := a.store.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := make([]*model.Record, 0, len(all))
	for _, rec := range all {
		if a.policy.CanPerform(actor, model.OpRead, rec) {
			visible = append(visible, rec)
		}
	}
	return visible, nil
}

// StatsFor counts the actor's visible records by status. The
// counterparty count is distinct hospitals for a patient and distinct
// patients for a hospital or an admin. The approval rate is
// round(100*approved/total), 0 when there are no records.
func (a *Aggregator) StatsFor(ctx context.Context, actor model.Actor) (*Stats, error) {
	records, err := a.visibleTo(ctx, actor)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Total: len(records)}
	counterparties := make(map[string]struct{})
	for _, rec := range records {
		switch rec.Status {
		case model.StatusPending:
			stats.Pending++
		case model.StatusApproved:
			stats.Approved++
		case model.StatusRejected:
			stats.Rejected++
		}
		if actor.Role == model.RolePatient {
			counterparties[rec.HospitalID] = struct{}{}
		} else {
			counterparties[rec.PatientID] = struct{}{}
		}
	}
	stats.DistinctCounterparties = len(counterparties)

	if stats.Total > 0 {
		stats.ApprovalRate = int(math.Round(100 * float64(stats.Approved) / float64(stats.Total)))
	}
	return stats, nil
}

// TimelineFor groups the actor's visible records by calendar month of
// CreatedAt, each group sorted newest first, months ordered most recent
// first. The grouping key is derived on every call, never stored.
func (a *Aggregator) TimelineFor(ctx context.Context, actor model.Actor) ([]TimelineGroup, error) {
	records, err := a.visibleTo(ctx, actor)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[string][]*model.Record)
	for _, rec := range records {
		key := rec.CreatedAt.Format("2006-01")
		byMonth[key] = append(byMonth[key], rec)
	}

	groups := make([]TimelineGroup, 0, len(byMonth))
	for month, recs := range byMonth {
		sort.Slice(recs, func(i, j int) bool {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		})
		groups = append(groups, TimelineGroup{Month: month, Records: recs})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Month > groups[j].Month
	})
	return groups, nil
}
