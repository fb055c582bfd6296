package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ankitupadhyayx/medicollab-backend/model"
)

func TestLedgerAddAttachment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec := f.mustCreate(ctx, CreateInput{Title: "CBC Panel", RecordType: "LabReport", PatientID: "p-001"})

	att := model.Attachment{
		FileRef:      "records/rec-1/cbc.pdf",
		OriginalName: "cbc.pdf",
		MimeType:     "application/pdf",
		SizeBytes:    204800,
	}
	updated, err := f.ledger.AddAttachment(ctx, hospital, rec.ID, att)
	if err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}
	if len(updated.Attachments) != 1 {
		t.Fatalf("Expected 1 attachment, got %d", len(updated.Attachments))
	}
	if updated.Attachments[0].OriginalName != "cbc.pdf" {
		t.Errorf("Expected cbc.pdf, got %s", updated.Attachments[0].OriginalName)
	}
	if updated.Attachments[0].SizeBytes != 204800 {
		t.Errorf("Expected 204800 bytes, got %d", updated.Attachments[0].SizeBytes)
	}
}

func TestLedgerPreservesOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec := f.mustCreate(ctx, CreateInput{Title: "CBC Panel", RecordType: "LabReport", PatientID: "p-001"})

	for i := 0; i < 5; i++ {
		att := model.Attachment{
			FileRef:      fmt.Sprintf("ref-%d", i),
			OriginalName: fmt.Sprintf("file-%d.pdf", i),
		}
		if _, err := f.ledger.AddAttachment(ctx, hospital, rec.ID, att); err != nil {
			t.Fatalf("AddAttachment %d failed: %v", i, err)
		}
	}

	got, _ := f.store.Get(ctx, rec.ID)
	if len(got.Attachments) != 5 {
		t.Fatalf("Expected 5 attachments, got %d", len(got.Attachments))
	}
	for i, att := range got.Attachments {
		if att.FileRef != fmt.Sprintf("ref-%d", i) {
			t.Errorf("Attachment %d out of order: %s", i, att.FileRef)
		}
	}
}

func TestLedgerFrozenAfterApprove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec := f.mustCreate(ctx, CreateInput{Title: "CBC Panel", RecordType: "LabReport", PatientID: "p-001"})

	att := model.Attachment{FileRef: "ref-1", OriginalName: "cbc.pdf", SizeBytes: 204800}
	if _, err := f.ledger.AddAttachment(ctx, hospital, rec.ID, att); err != nil {
		t.Fatalf("AddAttachment failed: %v", err)
	}
	if _, err := f.lifecycle.Approve(ctx, patient, rec.ID); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// The owning hospital attaching after approval hits the frozen check.
	_, err := f.ledger.AddAttachment(ctx, hospital, rec.ID, model.Attachment{FileRef: "ref-2", OriginalName: "late.pdf"})
	var frozenErr *model.RecordFrozenError
	if !errors.As(err, &frozenErr) {
		t.Fatalf("Expected RecordFrozenError, got %v", err)
	}
	if frozenErr.Status != model.StatusApproved {
		t.Errorf("Expected frozen in APPROVED, got %s", frozenErr.Status)
	}

	got, _ := f.store.Get(ctx, rec.ID)
	if len(got.Attachments) != 1 {
		t.Errorf("Frozen record must keep exactly its pre-freeze attachments, got %d", len(got.Attachments))
	}
}

func TestLedgerFrozenAfterReject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec := f.mustCreate(ctx, CreateInput{Title: "CBC Panel", RecordType: "LabReport", PatientID: "p-001"})
	if _, err := f.lifecycle.Reject(ctx, patient, rec.ID, "Wrong patient name on file"); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	_, err := f.ledger.AddAttachment(ctx, hospital, rec.ID, model.Attachment{FileRef: "ref-1", OriginalName: "a.pdf"})
	var frozenErr *model.RecordFrozenError
	if !errors.As(err, &frozenErr) {
		t.Fatalf("Expected RecordFrozenError, got %v", err)
	}
}

func TestLedgerAuthorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec := f.mustCreate(ctx, CreateInput{Title: "CBC Panel", RecordType: "LabReport", PatientID: "p-001"})
	att := model.Attachment{FileRef: "ref-1", OriginalName: "a.pdf"}

	// Foreign hospital, the patient and the admin are all denied.
	foreign := model.Actor{Role: model.RoleHospital, ID: "h-002"}
	for _, actor := range []model.Actor{foreign, patient, admin} {
		_, err := f.ledger.AddAttachment(ctx, actor, rec.ID, att)
		var authErr *model.AuthorizationError
		if !errors.As(err, &authErr) {
			t.Errorf("%s/%s: expected AuthorizationError, got %v", actor.Role, actor.ID, err)
		}
	}
}

func TestLedgerValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	rec := f.mustCreate(ctx, CreateInput{Title: "CBC Panel", RecordType: "LabReport", PatientID: "p-001"})

	_, err := f.ledger.AddAttachment(ctx, hospital, rec.ID, model.Attachment{OriginalName: "a.pdf"})
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Errorf("Expected ValidationError for empty file_ref, got %v", err)
	}

	_, err = f.ledger.AddAttachment(ctx, hospital, "missing", model.Attachment{FileRef: "ref-1"})
	if !errors.Is(err, model.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestRecordAppendAttachmentGuard(t *testing.T) {
	// The model-level guard holds even when a caller bypasses the ledger.
	rec := approvedRecord()
	err := rec.AppendAttachment(model.Attachment{FileRef: "ref-1"}, rec.UpdatedAt)
	var frozenErr *model.RecordFrozenError
	if !errors.As(err, &frozenErr) {
		t.Fatalf("Expected RecordFrozenError, got %v", err)
	}
}
