package service

import (
	"context"
	"testing"
	"time"

	"github.com/ankitupadhyayx/medicollab-backend/model"
)

// seedRecord inserts a record directly, bypassing the lifecycle, so
// tests can shape status and timestamps freely.
func (f *fixture) seedRecord(t *testing.T, id, patientID, hospitalID string, status model.RecordStatus, createdAt time.Time) {
	t.Helper()
	rec := &model.Record{
		ID:         id,
		Title:      "record " + id,
		RecordType: model.TypeLabReport,
		PatientID:  patientID,
		HospitalID: hospitalID,
		Status:     status,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if status == model.StatusRejected {
		rec.RejectionReason = "seeded rejection reason"
	}
	if err := f.store.Insert(context.Background(), rec); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func TestStatsForPatient(t *testing.T) {
	f := newFixture()
	now := time.Now()

	// 3 approved, 2 pending, 1 rejected for p-001, across two hospitals.
	f.seedRecord(t, "r1", "p-001", "h-001", model.StatusApproved, now)
	f.seedRecord(t, "r2", "p-001", "h-001", model.StatusApproved, now)
	f.seedRecord(t, "r3", "p-001", "h-002", model.StatusApproved, now)
	f.seedRecord(t, "r4", "p-001", "h-001", model.StatusPending, now)
	f.seedRecord(t, "r5", "p-001", "h-002", model.StatusPending, now)
	f.seedRecord(t, "r6", "p-001", "h-001", model.StatusRejected, now)
	// Foreign record, must not leak into p-001's stats.
	f.seedRecord(t, "r7", "p-002", "h-001", model.StatusApproved, now)

	stats, err := f.aggregator.StatsFor(context.Background(), patient)
	if err != nil {
		t.Fatalf("StatsFor failed: %v", err)
	}

	if stats.Total != 6 {
		t.Errorf("Expected total 6, got %d", stats.Total)
	}
	if stats.Pending != 2 || stats.Approved != 3 || stats.Rejected != 1 {
		t.Errorf("Expected 2/3/1, got %d/%d/%d", stats.Pending, stats.Approved, stats.Rejected)
	}
	if stats.DistinctCounterparties != 2 {
		t.Errorf("Expected 2 distinct hospitals, got %d", stats.DistinctCounterparties)
	}
	// round(100*3/6) = 50
	if stats.ApprovalRate != 50 {
		t.Errorf("Expected approval rate 50, got %d", stats.ApprovalRate)
	}
}

func TestStatsForHospital(t *testing.T) {
	f := newFixture()
	now := time.Now()

	f.seedRecord(t, "r1", "p-001", "h-001", model.StatusApproved, now)
	f.seedRecord(t, "r2", "p-002", "h-001", model.StatusPending, now)
	f.seedRecord(t, "r3", "p-001", "h-002", model.StatusApproved, now)

	stats, err := f.aggregator.StatsFor(context.Background(), hospital)
	if err != nil {
		t.Fatalf("StatsFor failed: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Expected total 2, got %d", stats.Total)
	}
	if stats.DistinctCounterparties != 2 {
		t.Errorf("Expected 2 distinct patients, got %d", stats.DistinctCounterparties)
	}
}

func TestStatsForEmpty(t *testing.T) {
	f := newFixture()

	stats, err := f.aggregator.StatsFor(context.Background(), patient)
	if err != nil {
		t.Fatalf("StatsFor failed: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Expected total 0, got %d", stats.Total)
	}
	// No records: rate is defined as 0, never a division by zero.
	if stats.ApprovalRate != 0 {
		t.Errorf("Expected approval rate 0, got %d", stats.ApprovalRate)
	}
}

func TestStatsForAdminSeesAll(t *testing.T) {
	f := newFixture()
	now := time.Now()

	f.seedRecord(t, "r1", "p-001", "h-001", model.StatusApproved, now)
	f.seedRecord(t, "r2", "p-002", "h-002", model.StatusPending, now)

	stats, err := f.aggregator.StatsFor(context.Background(), admin)
	if err != nil {
		t.Fatalf("StatsFor failed: %v", err)
	}
	if stats.Total != 2 {
		t.Errorf("Expected admin to see 2 records, got %d", stats.Total)
	}
}

func TestTimelineFor(t *testing.T) {
	f := newFixture()

	jan10 := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	jan25 := time.Date(2026, 1, 25, 12, 0, 0, 0, time.UTC)
	mar05 := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	f.seedRecord(t, "r1", "p-001", "h-001", model.StatusApproved, jan10)
	f.seedRecord(t, "r2", "p-001", "h-001", model.StatusPending, jan25)
	f.seedRecord(t, "r3", "p-001", "h-002", model.StatusPending, mar05)
	// Foreign record in the same months, filtered out.
	f.seedRecord(t, "r4", "p-002", "h-001", model.StatusPending, mar05)

	groups, err := f.aggregator.TimelineFor(context.Background(), patient)
	if err != nil {
		t.Fatalf("TimelineFor failed: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("Expected 2 month groups, got %d", len(groups))
	}
	// Most recent month first.
	if groups[0].Month != "2026-03" || groups[1].Month != "2026-01" {
		t.Errorf("Groups out of order: %s, %s", groups[0].Month, groups[1].Month)
	}
	if len(groups[0].Records) != 1 || groups[0].Records[0].ID != "r3" {
		t.Errorf("Unexpected march group: %+v", groups[0].Records)
	}
	// Within a month, newest first.
	jan := groups[1].Records
	if len(jan) != 2 || jan[0].ID != "r2" || jan[1].ID != "r1" {
		t.Errorf("January group not sorted newest first: %+v", jan)
	}
}

func TestTimelineForEmpty(t *testing.T) {
	f := newFixture()

	groups, err := f.aggregator.TimelineFor(context.Background(), patient)
	if err != nil {
		t.Fatalf("TimelineFor failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("Expected no groups, got %d", len(groups))
	}
}
