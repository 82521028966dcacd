package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyLogEntry records one day of work on a multi-day job. Posting an
// entry with ContinueNextDay set is the only path that clears the job's
// workflow stamps, so the next morning starts from a clean slate.
type DailyLogEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"jobOrderId"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null" json:"operatorId"`

	LogDate JSONTime `gorm:"not null" json:"logDate"`
	Summary string   `gorm:"type:text;not null" json:"summary"`
	Hours   float64  `json:"hours"`

	ContinueNextDay bool `gorm:"not null;default:false" json:"continueNextDay"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (d *DailyLogEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
