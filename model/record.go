package model

import (
	"time"
)

// RecordStatus is the lifecycle state of a medical record.
// PENDING is the only non-terminal state; APPROVED and REJECTED are final.
type RecordStatus string

const (
	StatusPending  RecordStatus = "PENDING"
	StatusApproved RecordStatus = "APPROVED"
	StatusRejected RecordStatus = "REJECTED"
)

// Terminal reports whether no further transitions are possible.
func (s RecordStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// RecordType is the closed set of document categories a hospital can upload.
type RecordType string

const (
	TypeLabReport        RecordType = "LabReport"
	TypePrescription     RecordType = "Prescription"
	TypeImaging          RecordType = "Imaging"
	TypeDischargeSummary RecordType = "DischargeSummary"
	TypeBill             RecordType = "Bill"
	TypeOther            RecordType = "Other"
)

// ParseRecordType validates a record type supplied by a client.
func ParseRecordType(s string) (RecordType, error) {
	switch RecordType(s) {
	case TypeLabReport, TypePrescription, TypeImaging, TypeDischargeSummary, TypeBill, TypeOther:
		return RecordType(s), nil
	}
	return "", &ValidationError{Field: "record_type", Reason: "unknown record type: " + s}
}

// MinRejectionReasonLen is the minimum length of a rejection reason.
const MinRejectionReasonLen = 10

// Record represents one medical document exchanged between a hospital
// and a patient. PatientID, HospitalID and CreatedAt are immutable after
// creation; Attachments are append-only while the record is PENDING and
// frozen afterwards.
type Record struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	RecordType      RecordType    `json:"record_type"`
	PatientID       string        `json:"patient_id"`
	HospitalID      string        `json:"hospital_id"`
	Status          RecordStatus  `json:"status"`
	RejectionReason string        `json:"rejection_reason,omitempty"`
	Attachments     []Attachment  `json:"attachments"`
	Annotation      *AIAnnotation `json:"annotation,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Clone returns a deep copy so readers never share mutable state with
// the store.
func (r *Record) Clone() *Record {
	cp := *r
	if r.Attachments != nil {
		cp.Attachments = make([]Attachment, len(r.Attachments))
		copy(cp.Attachments, r.Attachments)
	}
	if r.Annotation != nil {
		a := r.Annotation.Clone()
		cp.Annotation = &a
	}
	return &cp
}

// AppendAttachment appends while the record is PENDING and bumps
// UpdatedAt. The guard lives on the model so no caller can grow a frozen
// record's attachment list, whatever path it arrived by.
func (r *Record) AppendAttachment(att Attachment, now time.Time) error {
	if r.Status != StatusPending {
		return &RecordFrozenError{RecordID: r.ID, Status: r.Status}
	}
	r.Attachments = append(r.Attachments, att)
	r.UpdatedAt = now
	return nil
}

// Attachment is metadata plus an external reference to a file bound to a
// record. The bytes themselves live in the blob store; only the object
// key travels with the record.
type Attachment struct {
	FileRef      string `json:"file_ref"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
}

// Severity grades an AI annotation.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AIAnnotation is best-effort enrichment produced by the AI collaborator.
// It never participates in the status state machine.
type AIAnnotation struct {
	Summary     string   `json:"summary"`
	KeyFindings []string `json:"key_findings,omitempty"`
	Severity    Severity `json:"severity"`
}

// Clone returns a deep copy of the annotation.
func (a AIAnnotation) Clone() AIAnnotation {
	cp := a
	if a.KeyFindings != nil {
		cp.KeyFindings = make([]string, len(a.KeyFindings))
		copy(cp.KeyFindings, a.KeyFindings)
	}
	return cp
}
