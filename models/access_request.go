package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AccessPending  = "pending"
	AccessApproved = "approved"
	AccessRejected = "rejected"
)

// AccessRequest is a public sign-up application. Approval by an admin
// creates the User in the same transaction.
type AccessRequest struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string     `gorm:"size:100;not null" json:"name"`
	Email         string     `gorm:"size:100;not null" json:"email"`
	Phone         string     `gorm:"size:15;not null" json:"phone"`
	DateOfBirth   JSONTime   `gorm:"not null" json:"dateOfBirth"`
	RequestedRole string     `gorm:"size:20;not null;default:operator" json:"requestedRole"`
	Status        string     `gorm:"size:20;not null;default:pending" json:"status"`
	ReviewedBy    *uuid.UUID `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	CreatedUserID *uuid.UUID `gorm:"type:uuid" json:"createdUserId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *AccessRequest) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}

var ErrUnderage = errors.New("applicant must be at least 18 years old")

// CheckAge verifies the applicant turns 18 on or before the given day.
// The 18th birthday itself passes; one day short fails.
func (a *AccessRequest) CheckAge(today time.Time) error {
	dob := time.Time(a.DateOfBirth)
	cutoff := time.Date(dob.Year()+18, dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(cutoff) {
		return ErrUnderage
	}
	return nil
}
