package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Timecard is one clock-in/clock-out pair with the coordinates the device
// reported at each end. At most one open card (no ClockOutTime) may exist
// per user; the handler enforces that with a query before insert.
type Timecard struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`

	ClockInTime time.Time `gorm:"not null" json:"clockInTime"`
	ClockInLat  float64   `json:"clockInLat"`
	ClockInLng  float64   `json:"clockInLng"`

	ClockOutTime *time.Time `json:"clockOutTime,omitempty"`
	ClockOutLat  *float64   `json:"clockOutLat,omitempty"`
	ClockOutLng  *float64   `json:"clockOutLng,omitempty"`

	TotalHours *float64 `json:"totalHours,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (t *Timecard) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// Close stamps the clock-out and derives total hours, rounded to 1/100th.
func (t *Timecard) Close(at time.Time, lat, lng float64) {
	t.ClockOutTime = &at
	t.ClockOutLat = &lat
	t.ClockOutLng = &lng
	hours := math.Round(at.Sub(t.ClockInTime).Hours()*100) / 100
	t.TotalHours = &hours
}

// StandbyLog is an open-ended billable interval logged when an operator is
// on site but blocked from working. Minutes are derived when it closes.
type StandbyLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	JobOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"jobOrderId"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"operatorId"`
	Reason     string    `gorm:"size:255;not null" json:"reason"`

	StartedAt time.Time  `gorm:"not null" json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Minutes   *int       `json:"minutes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *StandbyLog) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// Close stamps the end of the interval and derives whole minutes.
func (s *StandbyLog) Close(at time.Time) {
	s.EndedAt = &at
	mins := int(math.Round(at.Sub(s.StartedAt).Minutes()))
	s.Minutes = &mins
}
