package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	HistoryUpdated       = "updated"
	HistoryDeleted       = "deleted"
	HistoryStatusChanged = "status_changed"
)

// JobOrderHistory is the append-only audit trail for a job order. Rows are
// never updated or deleted; writes are best-effort and must not fail the
// request that triggered them.
type JobOrderHistory struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	JobOrderID uuid.UUID      `gorm:"type:uuid;not null;index" json:"jobOrderId"`
	Action     string         `gorm:"size:20;not null" json:"action"`
	Changes    datatypes.JSON `gorm:"type:jsonb" json:"changes"`
	Snapshot   datatypes.JSON `gorm:"type:jsonb" json:"snapshot"`
	ChangedBy  uuid.UUID      `gorm:"type:uuid;not null" json:"changedBy"`
	CreatedAt  time.Time      `gorm:"index" json:"createdAt"`
}

func (h *JobOrderHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return
}

// StatusHistory records each coarse status a job has reached, one row per
// (job, status) upserted by unique key so an idempotent re-entry of the
// same transition never duplicates the row.
type StatusHistory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobOrderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_status_history_job_status" json:"jobOrderId"`
	Status     string    `gorm:"size:20;not null;uniqueIndex:idx_status_history_job_status" json:"status"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null" json:"operatorId"`
	Latitude   *float64  `json:"latitude,omitempty"`
	Longitude  *float64  `json:"longitude,omitempty"`
	RecordedAt time.Time `gorm:"not null" json:"recordedAt"`
}

func (s *StatusHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
