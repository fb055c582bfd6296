package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ankitupadhyayx/medicollab-backend/model"
)

// recordRow is the persisted shape of a record. Attachments and the AI
// annotation are stored as JSONB; their order and content carry no
// relational meaning of their own. UpdatedAt is managed by the lifecycle
// engine, not by GORM, because annotation writes must not bump it.
type recordRow struct {
	ID              string `gorm:"primaryKey"`
	Title           string
	Description     string
	RecordType      string
	PatientID       string `gorm:"index"`
	HospitalID      string `gorm:"index"`
	Status          string `gorm:"index"`
	RejectionReason string
	Attachments     []model.Attachment  `gorm:"serializer:json"`
	Annotation      *model.AIAnnotation `gorm:"serializer:json"`
	CreatedAt       time.Time           `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime:false"`
}

func (recordRow) TableName() string { return "records" }

type auditRow struct {
	ID         string `gorm:"primaryKey"`
	RecordID   string `gorm:"index"`
	Operation  string
	ActorRole  string
	ActorID    string
	OnBehalfOf string
	Detail     string
	OccurredAt time.Time
}

func (auditRow) TableName() string { return "audit_events" }

// PostgresStore is a durable record store backed by Postgres via GORM.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore opens the database and migrates the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.AutoMigrate(&recordRow{}, &auditRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func toRow(rec *model.Record) *recordRow {
	return &recordRow{
		ID:              rec.ID,
		Title:           rec.Title,
		Description:     rec.Description,
		RecordType:      string(rec.RecordType),
		PatientID:       rec.PatientID,
		HospitalID:      rec.HospitalID,
		Status:          string(rec.Status),
		RejectionReason: rec.RejectionReason,
		Attachments:     rec.Attachments,
		Annotation:      rec.Annotation,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func fromRow(row *recordRow) *model.Record {
	return &model.Record{
		ID:              row.ID,
		Title:           row.Title,
		Description:     row.Description,
		RecordType:      model.RecordType(row.RecordType),
		PatientID:       row.PatientID,
		HospitalID:      row.HospitalID,
		Status:          model.RecordStatus(row.Status),
		RejectionReason: row.RejectionReason,
		Attachments:     row.Attachments,
		Annotation:      row.Annotation,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func (s *PostgresStore) Insert(ctx context.Context, rec *model.Record) error {
	if err := s.db.WithContext(ctx).Create(toRow(rec)).Error; err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*model.Record, error) {
	var row recordRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return fromRow(&row), nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*model.Record, error) {
	var rows []recordRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	result := make([]*model.Record, len(rows))
	for i := range rows {
		result[i] = fromRow(&rows[i])
	}
	return result, nil
}

// Mutate loads the row under SELECT ... FOR UPDATE inside a transaction,
// applies fn and writes the result back. The row lock gives the same
// per-record serialization guarantee as the memory backend: of two
// concurrent approvals, the second observes the committed terminal state.
func (s *PostgresStore) Mutate(ctx context.Context, id string, fn func(*model.Record) error) (*model.Record, error) {
	var result *model.Record
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row recordRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock record: %w", err)
		}

		rec := fromRow(&row)
		if err := fn(rec); err != nil {
			return err
		}

		if err := tx.Model(&recordRow{}).Where("id = ?", id).
			Select("*").Updates(toRow(rec)).Error; err != nil {
			return fmt.Errorf("failed to update record: %w", err)
		}
		result = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStore) AppendAudit(ctx context.Context, ev model.AuditEvent) error {
	row := auditRow{
		ID:         ev.ID,
		RecordID:   ev.RecordID,
		Operation:  string(ev.Operation),
		ActorRole:  string(ev.ActorRole),
		ActorID:    ev.ActorID,
		OnBehalfOf: ev.OnBehalfOf,
		Detail:     ev.Detail,
		OccurredAt: ev.OccurredAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) AuditFor(ctx context.Context, recordID string) ([]model.AuditEvent, error) {
	var rows []auditRow
	err := s.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("occurred_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load audit events: %w", err)
	}

	events := make([]model.AuditEvent, len(rows))
	for i, row := range rows {
		events[i] = model.AuditEvent{
			ID:         row.ID,
			RecordID:   row.RecordID,
			Operation:  model.Operation(row.Operation),
			ActorRole:  model.Role(row.ActorRole),
			ActorID:    row.ActorID,
			OnBehalfOf: row.OnBehalfOf,
			Detail:     row.Detail,
			OccurredAt: row.OccurredAt,
		}
	}
	return events, nil
}
